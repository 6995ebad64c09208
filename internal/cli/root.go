// Package cli implements the recall command line.
package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var errNoUser = errors.New("--user is required")

type rootFlags struct {
	configPath string
	seedPath   string
	logLevel   string
}

// NewRootCommand builds the recall command tree. Components are assembled in
// PersistentPreRunE, so every subcommand sees the same config, logger and
// seeded store.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}
	a := &app{}

	root := &cobra.Command{
		Use:   "recall",
		Short: "Per-user productivity memory",
		Long: `recall stores structured productivity summaries per user, ranks them
against free-text queries with TF-IDF cosine similarity, and reports coarse
trends over the most recent summaries.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Logging, flags.logLevel, cmd.ErrOrStderr())
			built, err := buildApp(cfg, logger, flags.seedPath)
			if err != nil {
				return err
			}
			*a = *built
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to YAML config (default ./config.yaml or ~/.config/recall/config.yaml)")
	root.PersistentFlags().StringVar(&flags.seedPath, "seed", "", "YAML file of summaries to load at start-up")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newQueryCommand(a),
		newTrendsCommand(a),
		newRememberCommand(a),
		newServeCommand(a),
		newTUICommand(a),
	)
	return root
}

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}
