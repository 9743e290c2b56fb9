package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/printdesk/pkg/client"
	"github.com/aretw0/printdesk/pkg/domain"
)

var templatesCmd = &cobra.Command{
	Use:   "templates [labels|reports]",
	Short: "List the templates of a running server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := domain.ParseKind(strings.TrimSuffix(args[0], "s"))
		if err != nil {
			return err
		}
		cfg, _, err := loadConfig(cmd, clientKeys)
		if err != nil {
			return err
		}

		rawItems, _ := cmd.Flags().GetStringSlice("items")
		items, err := parseIDs(rawItems)
		if err != nil {
			return err
		}
		modelType, _ := cmd.Flags().GetString("model-type")
		search, _ := cmd.Flags().GetString("search")
		q := client.TemplateQuery{
			ModelType: domain.ModelType(modelType),
			Items:     items,
			Search:    search,
		}
		if cmd.Flags().Changed("enabled") {
			enabled, _ := cmd.Flags().GetBool("enabled")
			q.Enabled = &enabled
		}

		list, err := newClient(cfg).Templates(cmd.Context(), kind, q)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tMODEL\tENABLED\tREVISION")
		for _, t := range list {
			fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%d\n", t.ID, t.Name, t.ModelType, t.Enabled, t.Revision)
		}
		return w.Flush()
	},
}

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List the plugins of a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd, clientKeys)
		if err != nil {
			return err
		}
		mixin, _ := cmd.Flags().GetString("mixin")
		var active *bool
		if cmd.Flags().Changed("active") {
			a, _ := cmd.Flags().GetBool("active")
			active = &a
		}

		list, err := newClient(cfg).Plugins(cmd.Context(), mixin, active)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tNAME\tACTIVE\tMIXINS")
		for _, p := range list {
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", p.Key, p.Name, p.Active, strings.Join(p.Mixins, ","))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
	addClientFlags(templatesCmd)
	templatesCmd.Flags().String("model-type", "", "Only templates for this model type")
	templatesCmd.Flags().StringSlice("items", nil, "Only templates accepting these items")
	templatesCmd.Flags().Bool("enabled", true, "Filter on the enabled flag")
	templatesCmd.Flags().String("search", "", "Search names and descriptions")

	rootCmd.AddCommand(pluginsCmd)
	addClientFlags(pluginsCmd)
	pluginsCmd.Flags().String("mixin", "", "Only plugins with this mixin, e.g. labels")
	pluginsCmd.Flags().Bool("active", true, "Filter on the active flag")
}
