// Package http exposes the print service as a JSON API with a server-sent
// event stream of data-output progress.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/printdesk"
	"github.com/aretw0/printdesk/internal/logging"
	"github.com/aretw0/printdesk/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Engine defines the print operations served over HTTP.
type Engine interface {
	Templates(ctx context.Context, kind domain.TemplateKind, f printdesk.TemplateFilter) ([]domain.Template, error)
	Template(ctx context.Context, kind domain.TemplateKind, id int64) (*domain.Template, error)
	CreateTemplate(ctx context.Context, t *domain.Template) error
	UpdateTemplate(ctx context.Context, t *domain.Template) error
	DeleteTemplate(ctx context.Context, kind domain.TemplateKind, id int64) error

	Fields(ctx context.Context, kind domain.TemplateKind, pluginKey string) (domain.FieldSet, error)
	PrintLabels(ctx context.Context, user domain.User, req domain.PrintRequest) (*domain.DataOutput, error)
	PrintReports(ctx context.Context, user domain.User, req domain.PrintRequest) (*domain.DataOutput, error)

	Output(ctx context.Context, id int64) (*domain.DataOutput, error)
	Outputs(ctx context.Context) ([]domain.DataOutput, error)
	Plugins(mixin string, active *bool) []domain.PluginInfo

	Snippets(ctx context.Context) ([]domain.Snippet, error)
	CreateSnippet(ctx context.Context, s *domain.Snippet) error
	DeleteSnippet(ctx context.Context, id int64) error
	Assets(ctx context.Context) ([]domain.Asset, error)
	UploadAsset(ctx context.Context, name string, data []byte) (string, error)

	Watch(ctx context.Context) (<-chan string, error)
}

// Server serves the API for an Engine.
type Server struct {
	Engine  Engine
	Streams *StreamManager

	logger      *slog.Logger
	metrics     http.Handler
	mediaRoot   string
	mediaPrefix string
	origins     []string
}

// Option configures the handler.
type Option func(*Server)

// WithStreams shares a StreamManager, typically one whose Hooks feed the engine.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) { s.Streams = sm }
}

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithMediaDir serves the files below root under the URL prefix.
func WithMediaDir(root, prefix string) Option {
	return func(s *Server) {
		s.mediaRoot = root
		s.mediaPrefix = prefix
	}
}

// WithCORSOrigins restricts cross-origin access. Empty or "*" allows any origin.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	server := &Server{
		Engine: engine,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.Streams == nil {
		server.Streams = NewStreamManager(server.logger)
	}

	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	r.Use(withTrace)
	r.Use(enableCORS(server.origins))
	r.Use(middleware.Recoverer)
	r.Use(withRequestLog(server.logger))
	r.Use(withUser)

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(RawSpec())
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/events", server.SubscribeEvents)
		r.Get("/plugins", server.ListPlugins)
		r.Get("/data-output", server.ListOutputs)
		r.Get("/data-output/{id}", server.GetOutput)

		r.Route("/{kind}", func(r chi.Router) {
			r.Use(withKind)

			r.Get("/template", server.ListTemplates)
			r.Post("/template", server.CreateTemplate)
			r.Get("/template/{id}", server.GetTemplate)
			r.Put("/template/{id}", server.UpdateTemplate)
			r.Delete("/template/{id}", server.DeleteTemplate)

			r.Options("/print", server.PrintFields)
			r.Post("/print", server.Print)

			r.Group(func(r chi.Router) {
				r.Use(reportOnly)
				r.Get("/snippet", server.ListSnippets)
				r.Post("/snippet", server.CreateSnippet)
				r.Delete("/snippet/{id}", server.DeleteSnippet)
				r.Get("/asset", server.ListAssets)
				r.Post("/asset", server.UploadAsset)
			})
		})
	})

	if server.metrics != nil {
		r.Handle("/metrics", server.metrics)
	}
	if server.mediaRoot != "" {
		prefix := "/" + strings.Trim(server.mediaPrefix, "/") + "/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(server.mediaRoot))))
	}
	return r
}

type kindKey struct{}

func withKind(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		kind, err := domain.ParseKind(chi.URLParam(r, "kind"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, detail("Not found."))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), kindKey{}, kind)))
	})
}

func reportOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if kindOf(r) != domain.KindReport {
			writeJSON(w, http.StatusNotFound, detail("Not found."))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func kindOf(r *http.Request) domain.TemplateKind {
	k, _ := r.Context().Value(kindKey{}).(domain.TemplateKind)
	return k
}
