package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove outputs older than the retention period",
	Long: `Runs one output cleanup pass against the configured output store. Only
persistent stores (redis) hold outputs between runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd, map[string]string{
			"outputs.retention": "retention",
		})
		if err != nil {
			return err
		}
		a, err := buildApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		removed, err := a.engine.Cleanup(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d outputs\n", removed)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the builtin label and report templates",
	Long:  `Stores every builtin template whose name is not taken yet in the configured template store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd, map[string]string{
			"storage.driver": "storage",
			"storage.path":   "db",
		})
		if err != nil {
			return err
		}
		a, err := buildApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		created, err := a.engine.SeedDefaults(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %d templates\n", created)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().Duration("retention", 0, "Override the retention period, e.g. 48h")

	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().String("storage", "memory", "Template storage driver (memory, sqlite, loam)")
	seedCmd.Flags().String("db", "printdesk.db", "Path of the sqlite database")
}
