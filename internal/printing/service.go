// Package printing implements the label and report print workflow: template
// selection, print field discovery, validation, rendering, plugin dispatch and
// the lifecycle of the resulting data outputs.
package printing

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/printdesk/internal/logging"
	"github.com/aretw0/printdesk/internal/plugins"
	"github.com/aretw0/printdesk/internal/render"
	"github.com/aretw0/printdesk/pkg/domain"
	"github.com/aretw0/printdesk/pkg/outputs"
	"github.com/aretw0/printdesk/pkg/ports"
)

// DefaultRetention is how long generated outputs are kept.
const DefaultRetention = 5 * 24 * time.Hour

// DefaultCleanupInterval is how often the janitor prunes old outputs.
const DefaultCleanupInterval = 24 * time.Hour

// AssetDir is the media directory uploaded report assets are stored in.
const AssetDir = "report/assets"

// ErrNoRenderer is returned when a PDF is requested but no renderer is configured.
var ErrNoRenderer = errors.New("no PDF renderer configured")

// Service is the print workflow.
type Service struct {
	templates ports.TemplateStore
	snippets  ports.SnippetStore
	items     ports.ItemSource
	outputs   *outputs.Manager
	media     ports.MediaStore
	renderer  ports.Renderer
	engine    *render.Engine
	registry  *plugins.Registry
	hooks     domain.LifecycleHooks
	logger    *slog.Logger

	defaultPlugin   string
	reportDebug     bool
	logErrors       bool
	retention       time.Duration
	cleanupInterval time.Duration
	now             func() time.Time

	wg sync.WaitGroup
}

// Option configures the Service.
type Option func(*Service)

// WithSnippets sets the snippet store. Defaults to the template store when it
// also stores snippets.
func WithSnippets(s ports.SnippetStore) Option {
	return func(svc *Service) { svc.snippets = s }
}

// WithRenderer sets the HTML to PDF renderer.
func WithRenderer(r ports.Renderer) Option {
	return func(svc *Service) { svc.renderer = r }
}

// WithEngine sets the template engine.
func WithEngine(e *render.Engine) Option {
	return func(svc *Service) { svc.engine = e }
}

// WithRegistry sets the plugin registry.
func WithRegistry(r *plugins.Registry) Option {
	return func(svc *Service) { svc.registry = r }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(svc *Service) { svc.hooks = h }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(svc *Service) { svc.logger = l }
}

// WithDefaultPlugin sets the label plugin used when a request names none.
func WithDefaultPlugin(key string) Option {
	return func(svc *Service) {
		if key != "" {
			svc.defaultPlugin = key
		}
	}
}

// WithReportDebug makes reports render to concatenated HTML instead of PDF.
func WithReportDebug(debug bool) Option {
	return func(svc *Service) { svc.reportDebug = debug }
}

// WithLogErrors logs report failures at error level.
func WithLogErrors(enabled bool) Option {
	return func(svc *Service) { svc.logErrors = enabled }
}

// WithRetention sets how long outputs are kept before Cleanup removes them.
func WithRetention(d time.Duration) Option {
	return func(svc *Service) {
		if d > 0 {
			svc.retention = d
		}
	}
}

// WithCleanupInterval sets the janitor period.
func WithCleanupInterval(d time.Duration) Option {
	return func(svc *Service) {
		if d > 0 {
			svc.cleanupInterval = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

// New creates the print service.
func New(templates ports.TemplateStore, items ports.ItemSource, outs *outputs.Manager, media ports.MediaStore, opts ...Option) *Service {
	s := &Service{
		templates:       templates,
		items:           items,
		outputs:         outs,
		media:           media,
		logger:          logging.NewNop(),
		defaultPlugin:   plugins.KeyInvenTreeLabel,
		retention:       DefaultRetention,
		cleanupInterval: DefaultCleanupInterval,
		now:             time.Now,
	}
	if sn, ok := templates.(ports.SnippetStore); ok {
		s.snippets = sn
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = render.New()
	}
	if s.registry == nil {
		s.registry = plugins.NewRegistry()
		s.registry.Register(plugins.NewInvenTreeLabel(), true)
	}
	return s
}

// Registry returns the plugin registry.
func (s *Service) Registry() *plugins.Registry { return s.registry }

// DefaultPlugin returns the key of the default label plugin.
func (s *Service) DefaultPlugin() string { return s.defaultPlugin }

// Plugins lists plugins, optionally narrowed to a mixin and an active state.
func (s *Service) Plugins(mixin string, active *bool) []domain.PluginInfo {
	return s.registry.WithMixin(mixin, active)
}

// Output returns one data output.
func (s *Service) Output(ctx context.Context, id int64) (*domain.DataOutput, error) {
	return s.outputs.Get(ctx, id)
}

// Outputs lists data outputs, newest first.
func (s *Service) Outputs(ctx context.Context) ([]domain.DataOutput, error) {
	return s.outputs.List(ctx)
}

// Wait blocks until every background print job has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Close waits for background jobs, giving up when ctx is done.
func (s *Service) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) emitStart(ctx context.Context, e *domain.PrintEvent) {
	if s.hooks.OnPrintStart != nil {
		e.Timestamp = s.now()
		e.Type = domain.EventPrintStart
		s.hooks.OnPrintStart(ctx, e)
	}
}

func (s *Service) emitComplete(ctx context.Context, e *domain.PrintEvent) {
	if s.hooks.OnPrintComplete != nil {
		e.Timestamp = s.now()
		e.Type = domain.EventPrintComplete
		s.hooks.OnPrintComplete(ctx, e)
	}
}

func (s *Service) emitError(ctx context.Context, e *domain.PrintEvent) {
	if s.hooks.OnPrintError != nil {
		e.Timestamp = s.now()
		e.Type = domain.EventPrintError
		s.hooks.OnPrintError(ctx, e)
	}
}
