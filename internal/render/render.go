// Package render builds template contexts and executes label and report templates.
package render

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"path"
	"regexp"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/aretw0/printdesk/pkg/domain"
)

// Engine renders templates into HTML pages.
type Engine struct {
	baseURL     string
	mediaPrefix string
	pageSize    string
	now         func() time.Time
}

// Option configures the engine.
type Option func(*Engine)

// WithBaseURL sets the site URL exposed to templates as base_url.
func WithBaseURL(u string) Option {
	return func(e *Engine) { e.baseURL = strings.TrimSuffix(u, "/") }
}

// WithMediaPrefix sets the URL prefix used by the asset helper.
func WithMediaPrefix(prefix string) Option {
	return func(e *Engine) {
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		e.mediaPrefix = prefix
	}
}

// WithDefaultPageSize sets the page size of reports that do not set one.
func WithDefaultPageSize(size string) Option {
	return func(e *Engine) { e.pageSize = size }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates a render engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		mediaPrefix: "/media/",
		pageSize:    domain.DefaultPageSize,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PageSize returns the configured default page size.
func (e *Engine) PageSize() string { return e.pageSize }

// BaseContext returns the context shared by every item of a print request.
func (e *Engine) BaseContext(tmpl domain.Template, user domain.User) map[string]any {
	now := e.now()
	ctx := map[string]any{
		"base_url":             e.baseURL,
		"date":                 now.Format("2006-01-02"),
		"datetime":             now.Format(time.RFC3339),
		"template_name":        tmpl.Name,
		"template_description": tmpl.Description,
		"template_revision":    tmpl.Revision,
		"user":                 user.Username,
	}
	switch tmpl.Kind {
	case domain.KindReport:
		ctx["page_size"] = tmpl.ReportSize(e.pageSize)
		ctx["landscape"] = tmpl.Landscape
	case domain.KindLabel:
		ctx["width"] = tmpl.Width
		ctx["height"] = tmpl.Height
	}
	return ctx
}

// ItemContext merges the item's own context over base. base is not modified.
func (e *Engine) ItemContext(base map[string]any, item domain.Item) map[string]any {
	ctx := make(map[string]any, len(base)+len(item.Fields)+4)
	for k, v := range base {
		ctx[k] = v
	}
	for k, v := range item.Context() {
		ctx[k] = v
	}
	return ctx
}

func (e *Engine) funcs() htmltemplate.FuncMap {
	return htmltemplate.FuncMap{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"default": func(fallback, v any) any {
			if v == nil || v == "" {
				return fallback
			}
			return v
		},
		"asset": func(name string) string {
			return e.mediaPrefix + "report/assets/" + path.Base(name)
		},
		"join": strings.Join,
	}
}

// Compile parses a template body together with the snippets it may include.
func (e *Engine) Compile(tmpl domain.Template, snippets []domain.Snippet) (*htmltemplate.Template, error) {
	if strings.TrimSpace(tmpl.Template) == "" {
		return nil, &domain.TemplateMissingError{Name: tmpl.Name}
	}

	root := htmltemplate.New(tmpl.Name).Funcs(e.funcs()).Option("missingkey=zero")
	for _, sn := range snippets {
		if _, err := root.New(sn.Name).Parse(sn.Content); err != nil {
			return nil, fmt.Errorf("%w: %v", &domain.TemplateMissingError{Name: sn.Name}, err)
		}
	}
	if _, err := root.Parse(tmpl.Template); err != nil {
		return nil, fmt.Errorf("%w: %v", &domain.TemplateMissingError{Name: tmpl.Name}, err)
	}
	return root, nil
}

// Render executes a compiled template against data.
func (e *Engine) Render(ctx context.Context, t *htmltemplate.Template, data map[string]any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		if name := missingTemplate(err); name != "" {
			return nil, &domain.TemplateMissingError{Name: name}
		}
		return nil, fmt.Errorf("failed to render %s: %w", t.Name(), err)
	}
	return buf.Bytes(), nil
}

var missingRe = regexp.MustCompile(`(?:no such template "([^"]+)"|template "?([^" ]+)"? not defined)`)

func missingTemplate(err error) string {
	m := missingRe.FindStringSubmatch(err.Error())
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

var unsafeFilename = strings.NewReplacer("/", "_", "\\", "_", "\x00", "")

// Filename renders a filename pattern and forces the extension ext (".pdf" or ".html").
func (e *Engine) Filename(pattern string, data map[string]any, ext string) (string, error) {
	t, err := texttemplate.New("filename").Option("missingkey=zero").Parse(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid filename pattern: %w", err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("invalid filename pattern: %w", err)
	}

	name := strings.TrimSpace(unsafeFilename.Replace(buf.String()))
	name = strings.ReplaceAll(name, "<no value>", "")
	for _, known := range []string{".pdf", ".html"} {
		if strings.HasSuffix(strings.ToLower(name), known) {
			name = name[:len(name)-len(known)]
			break
		}
	}
	if name == "" {
		name = "output"
	}
	return name + ext, nil
}
