package printdesk

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/printdesk/internal/logging"
	"github.com/aretw0/printdesk/internal/plugins"
	"github.com/aretw0/printdesk/internal/printing"
	"github.com/aretw0/printdesk/internal/render"
	"github.com/aretw0/printdesk/pkg/adapters/media"
	"github.com/aretw0/printdesk/pkg/adapters/memory"
	"github.com/aretw0/printdesk/pkg/adapters/process"
	"github.com/aretw0/printdesk/pkg/domain"
	"github.com/aretw0/printdesk/pkg/outputs"
	"github.com/aretw0/printdesk/pkg/ports"
)

// TemplateFilter narrows a template listing. See Engine.Templates.
type TemplateFilter = printing.TemplateFilter

// Plugin contracts, re-exported for hosts that register their own plugins.
type (
	Plugin       = plugins.Plugin
	LabelPrinter = plugins.LabelPrinter
	LabelJob     = plugins.LabelJob
	LabelResult  = plugins.LabelResult
	ReportHook   = plugins.ReportHook
)

type pluginEntry struct {
	plugin Plugin
	active bool
}

type pluginSetting struct {
	key, name string
	value     any
}

// Engine is the high-level entry point of the library.
// It wires the stores, the renderer and the plugins into the print service.
type Engine struct {
	*printing.Service

	templates   ports.TemplateStore
	items       ports.ItemSource
	outputStore ports.OutputStore
	media       ports.MediaStore
	renderer    ports.Renderer
	locker      ports.DistributedLocker
	logger      *slog.Logger
	hooks       domain.LifecycleHooks

	plugins     []pluginEntry
	settings    []pluginSetting
	renderOpts  []render.Option
	serviceOpts []printing.Option
	mediaPrefix string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithTemplateStore sets where templates (and snippets, when supported) are kept.
func WithTemplateStore(s ports.TemplateStore) Option {
	return func(e *Engine) { e.templates = s }
}

// WithSnippetStore overrides the snippet store.
func WithSnippetStore(s ports.SnippetStore) Option {
	return func(e *Engine) { e.serviceOpts = append(e.serviceOpts, printing.WithSnippets(s)) }
}

// WithItemSource sets where printable items are looked up.
func WithItemSource(s ports.ItemSource) Option {
	return func(e *Engine) { e.items = s }
}

// WithOutputStore sets where data outputs are recorded.
func WithOutputStore(s ports.OutputStore) Option {
	return func(e *Engine) { e.outputStore = s }
}

// WithMediaStore injects a media store, bypassing the media directory.
func WithMediaStore(s ports.MediaStore) Option {
	return func(e *Engine) { e.media = s }
}

// WithMediaPrefix sets the URL prefix generated files are served under (default "/media/").
func WithMediaPrefix(prefix string) Option {
	return func(e *Engine) {
		e.mediaPrefix = prefix
		e.renderOpts = append(e.renderOpts, render.WithMediaPrefix(prefix))
	}
}

// WithRenderer sets the HTML to PDF renderer (default: wkhtmltopdf on PATH).
func WithRenderer(r ports.Renderer) Option {
	return func(e *Engine) { e.renderer = r }
}

// WithLocker guards output cleanup with a distributed lock.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) { e.locker = l }
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithLifecycleHooks registers observability hooks.
// Registering hooks more than once chains them in order.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) { e.hooks = e.hooks.Chain(hooks) }
}

// WithPlugin registers a plugin next to the builtin ones.
func WithPlugin(p Plugin, active bool) Option {
	return func(e *Engine) { e.plugins = append(e.plugins, pluginEntry{plugin: p, active: active}) }
}

// WithPluginSetting stores a plugin setting, e.g. DEBUG for the builtin label printer.
func WithPluginSetting(key, name string, value any) Option {
	return func(e *Engine) { e.settings = append(e.settings, pluginSetting{key: key, name: name, value: value}) }
}

// WithDefaultPlugin sets the label plugin used when a request names none.
func WithDefaultPlugin(key string) Option {
	return func(e *Engine) { e.serviceOpts = append(e.serviceOpts, printing.WithDefaultPlugin(key)) }
}

// WithReportDebug renders reports to HTML instead of PDF.
func WithReportDebug(debug bool) Option {
	return func(e *Engine) { e.serviceOpts = append(e.serviceOpts, printing.WithReportDebug(debug)) }
}

// WithLogErrors logs report failures at error level.
func WithLogErrors(enabled bool) Option {
	return func(e *Engine) { e.serviceOpts = append(e.serviceOpts, printing.WithLogErrors(enabled)) }
}

// WithRetention sets how long outputs are kept (default 5 days).
func WithRetention(d time.Duration) Option {
	return func(e *Engine) { e.serviceOpts = append(e.serviceOpts, printing.WithRetention(d)) }
}

// WithCleanupInterval sets how often the janitor runs (default daily).
func WithCleanupInterval(d time.Duration) Option {
	return func(e *Engine) { e.serviceOpts = append(e.serviceOpts, printing.WithCleanupInterval(d)) }
}

// WithBaseURL sets the site URL exposed to templates.
func WithBaseURL(u string) Option {
	return func(e *Engine) { e.renderOpts = append(e.renderOpts, render.WithBaseURL(u)) }
}

// WithDefaultPageSize sets the page size of reports that do not choose one.
func WithDefaultPageSize(size string) Option {
	return func(e *Engine) { e.renderOpts = append(e.renderOpts, render.WithDefaultPageSize(size)) }
}

// New initializes a new Engine.
// Generated files are written below mediaDir unless WithMediaStore is given, in
// which case mediaDir may be empty. Stores default to in-memory implementations.
func New(mediaDir string, opts ...Option) (*Engine, error) {
	eng := &Engine{mediaPrefix: "/media/"}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.media == nil {
		if mediaDir == "" {
			return nil, fmt.Errorf("mediaDir is required when no media store is provided")
		}
		store, err := media.New(mediaDir, eng.mediaPrefix)
		if err != nil {
			return nil, err
		}
		eng.media = store
	}
	if eng.templates == nil {
		eng.templates = memory.NewTemplateStore()
	}
	if eng.items == nil {
		eng.items = memory.NewItemSource()
	}
	if eng.outputStore == nil {
		eng.outputStore = memory.NewOutputStore()
	}
	if eng.renderer == nil {
		eng.renderer = process.NewRenderer(process.WithLogger(eng.logger))
	}

	registry := plugins.NewRegistry()
	registry.Register(plugins.NewInvenTreeLabel(), true)
	for _, p := range eng.plugins {
		registry.Register(p.plugin, p.active)
	}
	for _, s := range eng.settings {
		if err := registry.SetSetting(s.key, s.name, s.value); err != nil {
			return nil, err
		}
	}

	managerOpts := []outputs.Option{outputs.WithLogger(eng.logger)}
	if eng.locker != nil {
		managerOpts = append(managerOpts, outputs.WithLocker(eng.locker))
	}

	serviceOpts := []printing.Option{
		printing.WithRenderer(eng.renderer),
		printing.WithRegistry(registry),
		printing.WithEngine(render.New(eng.renderOpts...)),
		printing.WithLogger(eng.logger),
		printing.WithLifecycleHooks(eng.hooks),
	}
	eng.Service = printing.New(
		eng.templates,
		eng.items,
		outputs.NewManager(eng.outputStore, managerOpts...),
		eng.media,
		append(serviceOpts, eng.serviceOpts...)...,
	)
	return eng, nil
}

// Media returns the store generated files and assets are written to.
func (e *Engine) Media() ports.MediaStore {
	return e.media
}

// Watch returns a channel that signals when a template changes.
// Returns error if the template store does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := e.templates.(ports.TemplateWatcher); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current template store does not support watching")
}
