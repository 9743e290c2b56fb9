package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/printdesk/internal/presentation/tui"
	"github.com/aretw0/printdesk/pkg/domain"
	"github.com/aretw0/printdesk/pkg/trigger"
)

var printCmd = &cobra.Command{
	Use:   "print [labels|reports]",
	Short: "Print labels or reports for a selection of items",
	Long: `Opens the print dialog of a running server for the given items and submits
one print request. Without --template the available print fields are listed.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"labels", "reports"},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := domain.ParseKind(strings.TrimSuffix(args[0], "s"))
		if err != nil {
			return err
		}
		cfg, logger, err := loadConfig(cmd, clientKeys)
		if err != nil {
			return err
		}

		rawItems, _ := cmd.Flags().GetStringSlice("items")
		items, err := parseIDs(rawItems)
		if err != nil {
			return err
		}
		modelType, _ := cmd.Flags().GetString("model-type")
		template, _ := cmd.Flags().GetInt64("template")
		plugin, _ := cmd.Flags().GetString("plugin")
		rawOpts, _ := cmd.Flags().GetStringArray("option")
		options, err := parseOptions(rawOpts)
		if err != nil {
			return err
		}
		open, _ := cmd.Flags().GetBool("open")

		t := trigger.New(newClient(cfg), trigger.Options{
			Items:         items,
			ModelType:     domain.ModelType(modelType),
			EnableLabels:  kind == domain.KindLabel,
			EnableReports: kind == domain.KindReport,
			Host:          cfg.Client.Host,
		},
			trigger.WithNotifier(tui.NewNotifier(cmd.ErrOrStderr())),
			trigger.WithOpener(tui.NewOpener(cmd.OutOrStdout(), open)),
			trigger.WithLogger(logger),
		)

		dialog, err := t.Open(cmd.Context(), kind)
		if err != nil {
			return err
		}
		defer dialog.Close()
		if plugin != "" {
			dialog.SelectPlugin(cmd.Context(), plugin)
		}

		if template == 0 {
			printFields(cmd, dialog.Fields())
			return nil
		}

		out, err := dialog.Submit(cmd.Context(), template, options)
		if err != nil {
			return err
		}
		if !out.Complete {
			return fmt.Errorf("output %d did not complete", out.ID)
		}
		return nil
	},
}

func printFields(cmd *cobra.Command, set domain.FieldSet) {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	w := cmd.OutOrStdout()
	for _, name := range names {
		f := set[name]
		if f.Hidden {
			fmt.Fprintf(w, "%-16s %-10s = %v (fixed)\n", name, f.Type, f.Value)
			continue
		}
		req := ""
		if f.Required {
			req = " (required)"
		}
		fmt.Fprintf(w, "%-16s %-10s %s%s\n", name, f.Type, f.HelpText, req)
	}
}

func init() {
	rootCmd.AddCommand(printCmd)
	addClientFlags(printCmd)
	printCmd.Flags().StringSlice("items", nil, "Item ids to print (comma separated or repeated)")
	printCmd.Flags().String("model-type", "part", "Model type of the items")
	printCmd.Flags().Int64("template", 0, "Template id")
	printCmd.Flags().String("plugin", "", "Label plugin key")
	printCmd.Flags().StringArray("option", nil, "Plugin option as key=value (repeatable)")
	printCmd.Flags().Bool("open", false, "Open the generated file")
}
