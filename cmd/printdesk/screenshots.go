package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/printdesk/internal/config"
	"github.com/aretw0/printdesk/internal/screenshot"
)

var screenshotsCmd = &cobra.Command{
	Use:   "screenshots",
	Short: "Capture documentation screenshots of the web UI",
	Long: `Logs into the web UI with a headless browser and walks a scripted tour,
saving one image per named step below the output directory. The build order
tour runs unless --script names a YAML script.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd, map[string]string{
			"screenshots.base_url": "base-url",
			"screenshots.out_dir":  "out",
			"screenshots.headless": "headless",
		})
		if err != nil {
			return err
		}
		sc := cfg.Screenshots

		script := screenshot.BuildScript()
		if path, _ := cmd.Flags().GetString("script"); path != "" {
			loaded, err := screenshot.LoadScript(path)
			if err != nil {
				return err
			}
			script = *loaded
		}

		browser, err := screenshot.NewRodBrowser(sc.Headless)
		if err != nil {
			return err
		}
		defer browser.Close()

		driver := newScreenshotDriver(browser, sc, logger)

		if sc.Username != "" {
			if _, err := driver.Run(cmd.Context(), screenshot.LoginScript(sc.Username, sc.Password)); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
		}

		written, err := driver.Run(cmd.Context(), script)
		for _, path := range written {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		return err
	},
}

func newScreenshotDriver(b screenshot.Browser, sc config.ScreenshotsConfig, logger *slog.Logger) *screenshot.Driver {
	return screenshot.NewDriver(b,
		screenshot.WithBaseURL(sc.BaseURL),
		screenshot.WithOutDir(sc.OutDir),
		screenshot.WithTimeout(sc.Timeout),
		screenshot.WithLogger(logger),
	)
}

func init() {
	rootCmd.AddCommand(screenshotsCmd)
	screenshotsCmd.Flags().String("base-url", "http://localhost:8080", "URL of the web UI")
	screenshotsCmd.Flags().String("out", "screenshots", "Directory the images are written below")
	screenshotsCmd.Flags().Bool("headless", true, "Run the browser without a window")
	screenshotsCmd.Flags().String("script", "", "YAML tour to run instead of the build order tour")
}
