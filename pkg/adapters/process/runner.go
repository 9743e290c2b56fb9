// Package process renders PDF documents by running wkhtmltopdf (or a compatible
// converter) as a child process.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aretw0/printdesk/pkg/ports"
)

// ErrNoOutput is returned when the converter exits cleanly without writing a document.
var ErrNoOutput = errors.New("wkhtmltopdf produced no output")

// Renderer implements ports.Renderer on top of an external converter.
type Renderer struct {
	command string
	args    []string
	env     map[string]string
	tempDir string
	logger  *slog.Logger
}

// Option configures the renderer.
type Option func(*Renderer)

// WithConfig applies a loaded renderer configuration.
func WithConfig(cfg ProcessConfig) Option {
	return func(r *Renderer) {
		if cfg.Command != "" {
			r.command = cfg.Command
		}
		r.args = append([]string(nil), cfg.Args...)
		r.env = cfg.Environment
	}
}

// WithCommand overrides the converter binary.
func WithCommand(command string, args ...string) Option {
	return func(r *Renderer) {
		r.command = command
		r.args = args
	}
}

// WithTempDir sets the parent directory for per-render scratch directories.
func WithTempDir(dir string) Option {
	return func(r *Renderer) {
		r.tempDir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// NewRenderer creates a renderer invoking "wkhtmltopdf" unless configured otherwise.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		command: "wkhtmltopdf",
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RenderPDF writes every page to a scratch directory and converts them in a single
// run, so the result is one merged document.
func (r *Renderer) RenderPDF(ctx context.Context, pages [][]byte, opts ports.PageOptions) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("nothing to render")
	}

	tmpdir, err := os.MkdirTemp(r.tempDir, "printdesk")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpdir)

	inputs := make([]string, 0, len(pages))
	for i, page := range pages {
		path := filepath.Join(tmpdir, fmt.Sprintf("page-%04d.html", i))
		if err := os.WriteFile(path, page, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write page %d: %w", i, err)
		}
		inputs = append(inputs, path)
	}

	args := append([]string(nil), r.args...)
	args = append(args, LayoutArgs(opts)...)
	args = append(args, "--quiet", "--enable-local-file-access")
	args = append(args, inputs...)
	args = append(args, "-")

	cmd := exec.CommandContext(ctx, r.command, args...)
	cmd.Dir = tmpdir
	cmd.WaitDelay = 2 * time.Second
	cmd.Env = cmd.Environ()
	for k, v := range r.env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("running converter", "command", r.command, "pages", len(pages))

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("wkhtmltopdf failed: %w, stderr: %s", err, stderr.String())
		}
		return nil, fmt.Errorf("wkhtmltopdf failed: %w", err)
	}

	if stdout.Len() == 0 {
		return nil, ErrNoOutput
	}

	r.logger.Debug("converter finished", "bytes", stdout.Len())
	return stdout.Bytes(), nil
}

// LayoutArgs converts page options into converter flags. Explicit label
// dimensions win over the named page size.
func LayoutArgs(opts ports.PageOptions) []string {
	if opts.Width > 0 && opts.Height > 0 {
		return []string{
			"--page-width", mm(opts.Width),
			"--page-height", mm(opts.Height),
			"--margin-top", "0",
			"--margin-bottom", "0",
			"--margin-left", "0",
			"--margin-right", "0",
		}
	}

	size := opts.PageSize
	if size == "" {
		size = "A4"
	}
	args := []string{"--page-size", size}
	if opts.Landscape {
		args = append(args, "--orientation", "Landscape")
	}
	return args
}

func mm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "mm"
}
