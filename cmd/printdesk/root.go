package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/printdesk/internal/config"
	"github.com/aretw0/printdesk/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "printdesk",
	Short: "printdesk prints labels and reports for inventory items",
	Long: `printdesk renders label and report templates against inventory items,
hands labels to printer plugins and keeps track of the generated files.

Run "printdesk serve" to start the print API, or use the client commands
against a running server.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a printdesk.yaml configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
}

// loadConfig reads the configuration, binding the flags of cmd that map to
// configuration keys.
func loadConfig(cmd *cobra.Command, keys map[string]string) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	opts := []config.Option{
		config.WithFile(path),
		config.WithFlag("log.level", cmd.Flags().Lookup("log-level")),
	}
	for key, flag := range keys {
		opts = append(opts, config.WithFlag(key, cmd.Flags().Lookup(flag)))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.FromConfig(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return config.Config{}, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}
