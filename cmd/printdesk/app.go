package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/printdesk"
	"github.com/aretw0/printdesk/internal/config"
	"github.com/aretw0/printdesk/internal/metrics"
	"github.com/aretw0/printdesk/internal/plugins"
	apihttp "github.com/aretw0/printdesk/pkg/adapters/http"
	"github.com/aretw0/printdesk/pkg/adapters/loam"
	"github.com/aretw0/printdesk/pkg/adapters/memory"
	"github.com/aretw0/printdesk/pkg/adapters/process"
	"github.com/aretw0/printdesk/pkg/adapters/redis"
	"github.com/aretw0/printdesk/pkg/adapters/sqlite"
	"github.com/aretw0/printdesk/pkg/ports"
)

// app is an engine built from configuration together with the resources
// that have to be released when the command ends.
type app struct {
	engine  *printdesk.Engine
	streams *apihttp.StreamManager
	metrics *metrics.Recorder
	closers []io.Closer
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	return errors.Join(errs...)
}

// buildApp wires the stores, renderer, plugins and hooks selected by cfg.
func buildApp(cfg config.Config, logger *slog.Logger) (*app, error) {
	a := &app{
		streams: apihttp.NewStreamManager(logger),
		metrics: metrics.New(prometheus.NewRegistry()),
	}

	opts := []printdesk.Option{
		printdesk.WithLogger(logger),
		printdesk.WithMediaPrefix(cfg.Media.URLPrefix),
		printdesk.WithBaseURL(cfg.Server.BaseURL),
		printdesk.WithDefaultPageSize(cfg.Render.PageSize),
		printdesk.WithDefaultPlugin(cfg.Label.DefaultPlugin),
		printdesk.WithReportDebug(cfg.Report.Debug),
		printdesk.WithLogErrors(cfg.Report.LogErrors),
		printdesk.WithRetention(cfg.Outputs.Retention),
		printdesk.WithCleanupInterval(cfg.Outputs.CleanupInterval),
		printdesk.WithPluginSetting(plugins.KeyInvenTreeLabel, plugins.SettingDebug, cfg.Label.Debug),
		printdesk.WithLifecycleHooks(a.metrics.Hooks()),
		printdesk.WithLifecycleHooks(a.streams.Hooks()),
	}

	storeOpts, err := a.templateStore(cfg.Storage)
	if err != nil {
		a.Close()
		return nil, err
	}
	opts = append(opts, storeOpts...)

	if cfg.Fixtures.Items != "" {
		items, err := memory.LoadItems(cfg.Fixtures.Items)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to load item fixtures: %w", err)
		}
		opts = append(opts, printdesk.WithItemSource(items))
	}

	if cfg.Redis.Addr != "" {
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix+"output:"),
			redis.WithTTL(cfg.Redis.TTL),
		)
		a.closers = append(a.closers, store)
		opts = append(opts,
			printdesk.WithOutputStore(store),
			printdesk.WithLocker(redis.NewLocker(store.Client(), cfg.Redis.Prefix+"lock:")),
		)
		logger.Debug("Using redis output store", "addr", cfg.Redis.Addr)
	}

	renderer, err := newRenderer(cfg.Render, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	opts = append(opts, printdesk.WithRenderer(renderer))

	if cfg.Label.SampleDir != "" {
		opts = append(opts, printdesk.WithPlugin(plugins.NewSampleLabelPrinter(plugins.WithDir(cfg.Label.SampleDir)), true))
	}

	eng, err := printdesk.New(cfg.Media.Dir, opts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.engine = eng
	return a, nil
}

func (a *app) templateStore(cfg config.StorageConfig) ([]printdesk.Option, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "memory":
		return nil, nil
	case "sqlite":
		store, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open template database: %w", err)
		}
		a.closers = append(a.closers, store)
		return []printdesk.Option{
			printdesk.WithTemplateStore(store),
			printdesk.WithItemSource(store),
		}, nil
	case "loam":
		if cfg.TemplatesDir == "" {
			return nil, errors.New("storage.templates_dir is required for the loam driver")
		}
		store, err := loam.New(cfg.TemplatesDir)
		if err != nil {
			return nil, err
		}
		return []printdesk.Option{printdesk.WithTemplateStore(store)}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func newRenderer(cfg config.RenderConfig, logger *slog.Logger) (ports.Renderer, error) {
	opts := []process.Option{
		process.WithLogger(logger),
		process.WithTempDir(cfg.TempDir),
		process.WithCommand(cfg.Command, cfg.Args...),
	}
	if cfg.ConfigFile != "" {
		profiles, err := process.LoadRenderers(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		profile, ok := profiles[cfg.Profile]
		if !ok {
			return nil, fmt.Errorf("renderer profile %q not found in %s", cfg.Profile, cfg.ConfigFile)
		}
		opts = append(opts, process.WithConfig(profile))
	}
	return timeoutRenderer{next: process.NewRenderer(opts...), timeout: cfg.Timeout}, nil
}

// timeoutRenderer bounds every conversion by timeout.
type timeoutRenderer struct {
	next    ports.Renderer
	timeout time.Duration
}

func (r timeoutRenderer) RenderPDF(ctx context.Context, pages [][]byte, opts ports.PageOptions) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.next.RenderPDF(ctx, pages, opts)
}
