package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/printdesk"
	"github.com/aretw0/printdesk/internal/presentation/tui"
	"github.com/aretw0/printdesk/pkg/client"
	"github.com/aretw0/printdesk/pkg/spotlight"
)

var spotlightCmd = &cobra.Command{
	Use:   "spotlight [query]",
	Short: "Open the quick-action palette",
	Long: `Opens the quick-action palette. With a query the best matching action runs
directly instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd, clientKeys)
		if err != nil {
			return err
		}
		staff, _ := cmd.Flags().GetBool("staff")
		open, _ := cmd.Flags().GetBool("open")

		out := cmd.OutOrStdout()
		opener := tui.NewOpener(out, open)
		show := markdownPrinter(out)
		c := newClient(cfg)

		actions := spotlight.Actions(staff, spotlight.Handlers{
			Navigate: func(path string) {
				if err := opener.Open(cfg.Client.Host + path); err != nil {
					logger.Warn("Failed to open page", "path", path, "err", err)
				}
			},
			OpenURL: func(url string) {
				if err := opener.Open(url); err != nil {
					logger.Warn("Failed to open url", "url", url, "err", err)
				}
			},
			ShowAbout:       func() { show(tui.AboutMarkdown(printdesk.Version)) },
			ShowLicenseInfo: func() { show(tui.LicenseMarkdown()) },
			ShowServerInfo: func() {
				info, err := serverInfo(cmd.Context(), c)
				if err != nil {
					logger.Warn("Failed to load server information", "err", err)
					return
				}
				show(tui.ServerInfoMarkdown(info))
			},
			OpenNavigation: func() {
				var sb strings.Builder
				sb.WriteString("# Navigation\n\n")
				for _, p := range []string{"/home", "/dashboard", "/part/", "/stock/", "/manufacturing/", "/settings/"} {
					fmt.Fprintf(&sb, "- %s%s\n", cfg.Client.Host, p)
				}
				show(sb.String())
			},
		})

		if len(args) == 1 {
			matches := spotlight.Search(actions, args[0])
			if len(matches) == 0 {
				return fmt.Errorf("no action matches %q", args[0])
			}
			matches[0].OnClick()
			return nil
		}
		return tui.RunPalette(actions)
	},
}

func markdownPrinter(w io.Writer) func(string) {
	render := tui.NewRenderer()
	return func(markdown string) {
		text, err := render(markdown)
		if err != nil {
			text = markdown
		}
		fmt.Fprint(w, text)
	}
}

func serverInfo(ctx context.Context, c *client.Client) (tui.ServerInfo, error) {
	info, err := c.Info(ctx)
	if err != nil {
		return tui.ServerInfo{}, err
	}
	active := true
	plugins, err := c.Plugins(ctx, "", &active)
	if err != nil {
		return tui.ServerInfo{}, err
	}
	si := tui.ServerInfo{
		Server:     c.BaseURL(),
		App:        info.App,
		Version:    info.Version,
		APIVersion: info.APIVersion,
	}
	for _, p := range plugins {
		si.Plugins = append(si.Plugins, p.Name)
	}
	return si, nil
}

func init() {
	rootCmd.AddCommand(spotlightCmd)
	addClientFlags(spotlightCmd)
	spotlightCmd.Flags().Bool("staff", false, "Include the staff-only actions")
	spotlightCmd.Flags().Bool("open", false, "Launch pages in the desktop browser")
}
