package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// It falls back to the raw markdown when no renderer can be built.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// ServerInfo is shown by the server information dialog.
type ServerInfo struct {
	Server     string
	App        string
	Version    string
	APIVersion string
	Plugins    []string
}

// AboutMarkdown is the content of the about dialog.
func AboutMarkdown(version string) string {
	return fmt.Sprintf(`# About printdesk

printdesk prints labels and reports for inventory items.

| | |
|---|---|
| Version | %s |
| Documentation | https://docs.inventree.org |
`, strings.TrimSpace(version))
}

// ServerInfoMarkdown is the content of the server information dialog.
func ServerInfoMarkdown(info ServerInfo) string {
	var sb strings.Builder
	sb.WriteString("# Server Information\n\n")
	sb.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Server | %s |\n", info.Server)
	fmt.Fprintf(&sb, "| Application | %s |\n", info.App)
	fmt.Fprintf(&sb, "| Version | %s |\n", info.Version)
	fmt.Fprintf(&sb, "| API version | %s |\n", info.APIVersion)
	if len(info.Plugins) > 0 {
		sb.WriteString("\n## Active plugins\n\n")
		for _, p := range info.Plugins {
			fmt.Fprintf(&sb, "- %s\n", p)
		}
	}
	return sb.String()
}

// LicenseMarkdown lists the licenses of the main dependencies.
func LicenseMarkdown() string {
	return `# License Information

| Package | License |
|---|---|
| github.com/spf13/cobra | Apache-2.0 |
| github.com/spf13/viper | MIT |
| github.com/go-chi/chi | MIT |
| github.com/charmbracelet/bubbletea | MIT |
| github.com/prometheus/client_golang | Apache-2.0 |
| github.com/redis/go-redis | BSD-2-Clause |
| github.com/go-rod/rod | MIT |
`
}
