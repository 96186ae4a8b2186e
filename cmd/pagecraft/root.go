package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/pagecraft/internal/config"
	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/spf13/cobra"
)

// app holds what PersistentPreRunE prepared for the subcommands.
var app struct {
	cfg    *config.Config
	logger *slog.Logger
}

var rootCmd = &cobra.Command{
	Use:   "pagecraft",
	Short: "pagecraft edits, migrates and renders page builder documents",
	Long: `pagecraft keeps the component tree of a visual page builder.
It migrates saved documents to the current schema, imports generated
subtrees, renders documents to HTML, and serves them over HTTP or MCP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
		}
		if cmd.Flags().Changed("log-format") {
			cfg.Log.Format, _ = cmd.Flags().GetString("log-format")
		}
		level, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			return err
		}
		app.cfg = cfg
		app.logger = logging.NewWithOptions(logging.Options{
			Level:  level,
			Format: cfg.Log.Format,
			Writer: cmd.ErrOrStderr(),
		})
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a pagecraft YAML config file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
}
