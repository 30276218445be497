package text

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrFontNotFound is returned when a font file is in none of the search
// directories.
var ErrFontNotFound = errors.New("font file not found")

// FontPath finds font files by name.
type FontPath struct {
	// Dirs are searched in order for relative names.
	Dirs []string
}

// DefaultFontPath searches dir first and then the fonts directory next to
// the running executable.
func DefaultFontPath(dir string) FontPath {
	var fp FontPath
	if dir != "" {
		fp.Dirs = append(fp.Dirs, dir)
	}
	if exe, err := os.Executable(); err == nil {
		fonts := filepath.Join(filepath.Dir(exe), "..", "fonts")
		if info, err := os.Stat(fonts); err == nil && info.IsDir() {
			fp.Dirs = append(fp.Dirs, fonts)
		}
	}
	return fp
}

// Resolve returns the path of the font file name. Absolute names are only
// checked for existence.
func (fp FontPath) Resolve(name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("%w: %s", ErrFontNotFound, name)
		}
		return name, nil
	}
	for _, dir := range fp.Dirs {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrFontNotFound, name)
}
