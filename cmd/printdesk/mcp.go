package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/printdesk/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the print engine as an MCP server, so agents can list templates,
print labels and reports and look up outputs as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd, map[string]string{
			"mcp.transport": "transport",
			"mcp.port":      "port",
		})
		if err != nil {
			return err
		}

		a, err := buildApp(cfg, logger)
		if err != nil {
			return fmt.Errorf("error initializing printdesk: %w", err)
		}
		defer a.Close()
		if cfg.Storage.Seed {
			if _, err := a.engine.SeedDefaults(cmd.Context()); err != nil {
				return err
			}
		}

		srv := mcp.NewServer(a.engine, mcp.WithLogger(logger))

		switch cfg.MCP.Transport {
		case "stdio":
			logger.Info("Starting printdesk MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			logger.Info("Starting printdesk MCP server (SSE)", "port", cfg.MCP.Port)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.ServeSSE(ctx, cfg.MCP.Port); err != nil {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", cfg.MCP.Transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
