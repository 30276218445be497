// Package text splits paragraph source text into the runs a list builder
// turns into items, and locates the font files documents refer to.
package text

import (
	"strings"
	"unicode"
)

// Kind classifies a token.
type Kind uint8

const (
	Word       Kind = iota // letters and other printable characters
	Space                  // a run of white space
	Tie                    // "~", a space that must not be broken
	Hyphen                 // an explicit "-"
	SoftHyphen             // U+00AD, a place where the word may be hyphenated
)

func (k Kind) String() string {
	switch k {
	case Word:
		return "word"
	case Space:
		return "space"
	case Tie:
		return "tie"
	case Hyphen:
		return "hyphen"
	case SoftHyphen:
		return "softhyphen"
	}
	return "?"
}

// Token is one run of text.
type Token struct {
	Kind Kind
	Text string
}

const softHyphen = '\u00ad'

// Split breaks s into tokens. Runs of white space collapse into a single
// Space token and white space at the start of s is dropped.
func Split(s string) []Token {
	var (
		tokens []Token
		word   strings.Builder
	)
	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, Token{Kind: Word, Text: word.String()})
			word.Reset()
		}
	}
	push := func(k Kind, text string) {
		flush()
		if k == Space {
			if len(tokens) == 0 || tokens[len(tokens)-1].Kind == Space {
				return
			}
		}
		tokens = append(tokens, Token{Kind: k, Text: text})
	}
	for _, ch := range s {
		switch {
		case unicode.IsSpace(ch):
			push(Space, " ")
		case ch == '~':
			push(Tie, "~")
		case ch == '-':
			push(Hyphen, "-")
		case ch == softHyphen:
			push(SoftHyphen, "")
		default:
			word.WriteRune(ch)
		}
	}
	flush()
	return tokens
}

// Words returns the words of s, ignoring everything else.
func Words(s string) []string {
	var out []string
	for _, t := range Split(s) {
		if t.Kind == Word {
			out = append(out, t.Text)
		}
	}
	return out
}
