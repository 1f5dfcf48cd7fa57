package main

import (
	"github.com/spf13/cobra"
)

// #region root

type rootOptions struct {
	configPath string
	logLevel   string
	dbPath     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "situation",
		Short: "Classify narrative situations and map them to catalog records",
		Long: `situation classifies a free-text description of a life situation into one
of four archetypes and maps it to one of 64 reference records with a line
position and templated guidance.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", envOr("SITUATION_CONFIG", "situation.yaml"), "Path to YAML config (missing file uses defaults)")
	f.StringVar(&opts.logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	f.StringVar(&opts.dbPath, "db", "", "Override the configured SQLite database path")

	cmd.AddCommand(
		newAnalyzeCmd(opts),
		newServeCmd(opts),
		newCalibrateCmd(opts),
		newCatalogCmd(opts),
		newInspectCmd(opts),
	)
	return cmd
}

// #endregion root
