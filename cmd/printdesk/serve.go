package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/printdesk"
	"github.com/aretw0/printdesk/internal/presentation/tui"
	apihttp "github.com/aretw0/printdesk/pkg/adapters/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the print API server",
	Long: `Starts the print API over HTTP together with the output janitor, which
removes generated files once they are older than the retention period.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd, map[string]string{
			"server.addr":    "addr",
			"storage.driver": "storage",
			"storage.seed":   "seed",
			"media.dir":      "media",
		})
		if err != nil {
			return err
		}

		a, err := buildApp(cfg, logger)
		if err != nil {
			return fmt.Errorf("error initializing printdesk: %w", err)
		}
		defer a.Close()
		eng := a.engine

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.Storage.Seed {
			if _, err := eng.SeedDefaults(ctx); err != nil {
				return err
			}
		}

		handler := apihttp.NewHandler(eng,
			apihttp.WithLogger(logger),
			apihttp.WithStreams(a.streams),
			apihttp.WithMetrics(a.metrics.Handler()),
			apihttp.WithMediaDir(cfg.Media.Dir, cfg.Media.URLPrefix),
			apihttp.WithCORSOrigins(cfg.Server.CORSOrigins...),
		)
		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		tui.PrintBanner(cmd.OutOrStdout())
		fmt.Fprintf(cmd.OutOrStdout(), "Starting printdesk %s on %s\n", strings.TrimSpace(printdesk.Version), srv.Addr)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			return eng.RunJanitor(gctx)
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("Shutting down", "timeout", cfg.Server.ShutdownTimeout)

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "err", err)
				_ = srv.Close()
			}
			if err := eng.Close(shutdownCtx); err != nil {
				logger.Warn("Print jobs still running at shutdown", "err", err)
			}
			return nil
		})

		if err := g.Wait(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "printdesk server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().String("storage", "memory", "Template storage driver (memory, sqlite, loam)")
	serveCmd.Flags().Bool("seed", true, "Create the builtin templates on start")
	serveCmd.Flags().String("media", "media", "Directory generated files are written to")
}
