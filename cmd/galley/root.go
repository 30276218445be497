package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"galley/internal/config"
)

// rootOptions holds global flags and the state built from them before a
// subcommand runs.
type rootOptions struct {
	ConfigPath string
	Verbose    bool
	// Dir is where galley.yaml is looked up.
	Dir string

	viper  *viper.Viper
	config *config.Config
	logger *zap.Logger
}

func newRootCommand() *cobra.Command {
	return newRootCommandWith(&rootOptions{Dir: "."})
}

// newRootCommandWith builds the command tree around opts. A logger already
// set in opts is used as is.
func newRootCommandWith(opts *rootOptions) *cobra.Command {
	opts.viper = config.New()

	cmd := &cobra.Command{
		Use:   "galley",
		Short: "Break paragraphs into lines the way TeX does",
		Long: `galley packs horizontal and vertical lists into boxes and breaks
paragraphs into lines with the total-fit algorithm.

Settings are read from galley.yaml in the working directory (or --config),
then GALLEY_* environment variables, then flags.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logger == nil {
				zc := zap.NewProductionConfig()
				if opts.Verbose {
					zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
				}
				logger, err := zc.Build()
				if err != nil {
					return fmt.Errorf("failed to initialize logger: %w", err)
				}
				opts.logger = logger
			}
			if err := config.Read(opts.viper, opts.ConfigPath, opts.Dir); err != nil {
				return err
			}
			cfg, err := config.Decode(opts.viper)
			if err != nil {
				return err
			}
			opts.config = cfg
			if cfg.File != "" {
				opts.logger.Debug("configuration loaded", zap.String("file", cfg.File))
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "", "configuration file (default ./galley.yaml)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "log at debug level, including line breaking traces")
	pf.String("hsize", "", "line width, e.g. 300pt")
	pf.Int("tolerance", 0, "badness limit once hyphenation is allowed")
	pf.Int("pretolerance", 0, "badness limit of the first pass; negative skips it")
	pf.Int("looseness", 0, "lines to add to (or remove from) the optimum")
	pf.String("emergency-stretch", "", "extra stretch of the emergency pass")
	pf.StringSlice("font-dir", nil, "directories searched for font files")
	pf.Int("workers", 0, "paragraphs broken at once (0 for no limit)")
	for key, flag := range map[string]string{
		config.KeyHSize:            "hsize",
		config.KeyTolerance:        "tolerance",
		config.KeyPretolerance:     "pretolerance",
		config.KeyLooseness:        "looseness",
		config.KeyEmergencyStretch: "emergency-stretch",
		config.KeyFontDirs:         "font-dir",
		config.KeyWorkers:          "workers",
	} {
		_ = opts.viper.BindPFlag(key, pf.Lookup(flag))
	}

	cmd.AddCommand(newBreakCommand(opts))
	cmd.AddCommand(newHPackCommand(opts))
	cmd.AddCommand(newRenderCommand(opts))
	cmd.AddCommand(newVersionCommand())
	return cmd
}
