// Package mcp exposes the print service to MCP clients.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/printdesk"
	"github.com/aretw0/printdesk/internal/logging"
	"github.com/aretw0/printdesk/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// Engine defines the print operations exposed as tools.
type Engine interface {
	Templates(ctx context.Context, kind domain.TemplateKind, f printdesk.TemplateFilter) ([]domain.Template, error)
	PrintLabels(ctx context.Context, user domain.User, req domain.PrintRequest) (*domain.DataOutput, error)
	PrintReports(ctx context.Context, user domain.User, req domain.PrintRequest) (*domain.DataOutput, error)
	Output(ctx context.Context, id int64) (*domain.DataOutput, error)
	Plugins(mixin string, active *bool) []domain.PluginInfo
}

// ListTemplatesArgs are the arguments of the list_templates tool.
type ListTemplatesArgs struct {
	Kind      string  `json:"kind"`
	ModelType string  `json:"model_type,omitempty"`
	Items     []int64 `json:"items,omitempty"`
}

// TemplateList is the result of list_templates.
type TemplateList struct {
	Templates []domain.Template `json:"templates" jsonschema_description:"Enabled templates matching the query"`
}

// PrintArgs are the arguments of the print tools.
type PrintArgs struct {
	Template int64          `json:"template"`
	Items    []int64        `json:"items"`
	Plugin   string         `json:"plugin,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

// OutputArgs are the arguments of get_output.
type OutputArgs struct {
	ID int64 `json:"id"`
}

// Server wraps the print Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	user      domain.User
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithUser sets the user prints are recorded for (default "mcp").
func WithUser(u domain.User) Option {
	return func(s *Server) { s.user = u }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		user:      domain.User{Username: "mcp"},
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("printdesk-mcp", strings.TrimSpace(printdesk.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List the enabled label or report templates, optionally only those usable for the given items."),
		mcp.WithString("kind", mcp.Required(), mcp.Enum(string(domain.KindLabel), string(domain.KindReport))),
		mcp.WithString("model_type", mcp.Description("Model type of the items, e.g. part or stockitem")),
		mcp.WithArray("items", mcp.Description("Item ids the template must accept"), mcp.Items(map[string]any{"type": "integer"})),
		mcp.WithOutputSchema[TemplateList](),
	), mcp.NewStructuredToolHandler(s.handleListTemplates))

	printParams := []mcp.ToolOption{
		mcp.WithNumber("template", mcp.Required(), mcp.Description("Template id")),
		mcp.WithArray("items", mcp.Required(), mcp.Description("Item ids to print"), mcp.Items(map[string]any{"type": "integer"})),
		mcp.WithOutputSchema[domain.DataOutput](),
	}

	labelParams := append([]mcp.ToolOption{
		mcp.WithDescription("Print labels for items. The result is the data output; its output field is the generated file."),
		mcp.WithString("plugin", mcp.Description("Label plugin key (default plugin when omitted)")),
		mcp.WithObject("options", mcp.Description("Plugin printing options")),
	}, printParams...)
	s.mcpServer.AddTool(mcp.NewTool("print_labels", labelParams...), mcp.NewStructuredToolHandler(s.handlePrintLabels))

	reportParams := append([]mcp.ToolOption{
		mcp.WithDescription("Generate a report for items, merged into one document."),
	}, printParams...)
	s.mcpServer.AddTool(mcp.NewTool("print_reports", reportParams...), mcp.NewStructuredToolHandler(s.handlePrintReports))

	s.mcpServer.AddTool(mcp.NewTool("get_output",
		mcp.WithDescription("Get the state of a data output."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Data output id")),
		mcp.WithOutputSchema[domain.DataOutput](),
	), mcp.NewStructuredToolHandler(s.handleGetOutput))
}

func (s *Server) handleListTemplates(ctx context.Context, request mcp.CallToolRequest, args ListTemplatesArgs) (TemplateList, error) {
	kind, err := domain.ParseKind(args.Kind)
	if err != nil {
		return TemplateList{}, err
	}
	enabled := true
	f := printdesk.TemplateFilter{Items: args.Items, Enabled: &enabled}
	if args.ModelType != "" {
		if f.ModelType, err = domain.ParseModelType(args.ModelType); err != nil {
			return TemplateList{}, err
		}
	}
	list, err := s.engine.Templates(ctx, kind, f)
	if err != nil {
		return TemplateList{}, fmt.Errorf("list templates failed: %w", err)
	}
	if list == nil {
		list = []domain.Template{}
	}
	return TemplateList{Templates: list}, nil
}

func (s *Server) handlePrintLabels(ctx context.Context, request mcp.CallToolRequest, args PrintArgs) (domain.DataOutput, error) {
	return s.print(ctx, domain.KindLabel, args)
}

func (s *Server) handlePrintReports(ctx context.Context, request mcp.CallToolRequest, args PrintArgs) (domain.DataOutput, error) {
	return s.print(ctx, domain.KindReport, args)
}

func (s *Server) print(ctx context.Context, kind domain.TemplateKind, args PrintArgs) (domain.DataOutput, error) {
	req := domain.PrintRequest{
		Template: args.Template,
		Items:    args.Items,
		Plugin:   args.Plugin,
		Options:  args.Options,
	}
	if req.Items == nil {
		req.Items = []int64{}
	}

	var (
		out *domain.DataOutput
		err error
	)
	if kind == domain.KindLabel {
		out, err = s.engine.PrintLabels(ctx, s.user, req)
	} else {
		out, err = s.engine.PrintReports(ctx, s.user, req)
	}
	if err != nil {
		s.logger.Warn("MCP print failed", "kind", kind, "template", args.Template, "err", err)
		return domain.DataOutput{}, fmt.Errorf("print failed: %w", err)
	}
	return *out, nil
}

func (s *Server) handleGetOutput(ctx context.Context, request mcp.CallToolRequest, args OutputArgs) (domain.DataOutput, error) {
	out, err := s.engine.Output(ctx, args.ID)
	if err != nil {
		return domain.DataOutput{}, err
	}
	return *out, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("printdesk://plugins", "Installed print plugins",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.engine.Plugins("", nil))
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "printdesk://plugins",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
