package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/printdesk"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of printdesk",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "printdesk version %s\n", strings.TrimSpace(printdesk.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
