package screenshot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/printdesk/internal/logging"
)

// DefaultTimeout bounds every wait of a step.
const DefaultTimeout = 30 * time.Second

// Browser is the automation backend of the driver.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, selector string) error
	ClickText(ctx context.Context, text string) error
	Fill(ctx context.Context, selector, value string) error
	WaitText(ctx context.Context, text string) error
	WaitSelector(ctx context.Context, selector string) error
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// Driver runs scripts against a browser.
type Driver struct {
	browser Browser
	baseURL string
	outDir  string
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures the Driver.
type Option func(*Driver)

// WithBaseURL resolves navigate targets starting with "/".
func WithBaseURL(u string) Option {
	return func(d *Driver) { d.baseURL = strings.TrimRight(u, "/") }
}

// WithOutDir sets the image directory (default "screenshots").
func WithOutDir(dir string) Option {
	return func(d *Driver) { d.outDir = dir }
}

// WithTimeout sets the per-step timeout.
func WithTimeout(t time.Duration) Option {
	return func(d *Driver) {
		if t > 0 {
			d.timeout = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// NewDriver creates a driver on browser.
func NewDriver(b Browser, opts ...Option) *Driver {
	d := &Driver{
		browser: b,
		outDir:  "screenshots",
		timeout: DefaultTimeout,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run executes the steps of script in order and returns the images written.
// The first failing step aborts the run; images of earlier steps are kept.
func (d *Driver) Run(ctx context.Context, script Script) ([]string, error) {
	if err := script.Validate(); err != nil {
		return nil, err
	}

	var written []string
	for i, st := range script.Steps {
		path, err := d.step(ctx, script.Category, st)
		if err != nil {
			label := st.Name
			if label == "" {
				label = string(st.Action.Type)
			}
			d.logger.Error("Screenshot step failed", "category", script.Category, "step", i+1, "name", label, "err", err)
			return written, fmt.Errorf("%s step %d (%s): %w", script.Category, i+1, label, err)
		}
		if path != "" {
			written = append(written, path)
			d.logger.Info("Screenshot saved", "path", path)
		}
	}
	return written, nil
}

func (d *Driver) step(ctx context.Context, category string, st Step) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var err error
	switch st.Action.Type {
	case ActionNavigate:
		err = d.browser.Navigate(ctx, d.resolve(st.Action.Target))
	case ActionClick:
		err = d.browser.Click(ctx, st.Action.Target)
	case ActionClickText:
		err = d.browser.ClickText(ctx, st.Action.Target)
	case ActionFill:
		err = d.browser.Fill(ctx, st.Action.Target, st.Action.Value)
	}
	if err != nil {
		return "", fmt.Errorf("%s %q: %w", st.Action.Type, st.Action.Target, err)
	}

	if st.WaitText != "" {
		if err := d.browser.WaitText(ctx, st.WaitText); err != nil {
			return "", fmt.Errorf("waiting for text %q: %w", st.WaitText, err)
		}
	}
	if st.WaitSelector != "" {
		if err := d.browser.WaitSelector(ctx, st.WaitSelector); err != nil {
			return "", fmt.Errorf("waiting for %s: %w", st.WaitSelector, err)
		}
	}

	if st.Name == "" {
		return "", nil
	}
	img, err := d.browser.Screenshot(ctx)
	if err != nil {
		return "", fmt.Errorf("capture: %w", err)
	}
	path := imagePath(d.outDir, category, st.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (d *Driver) resolve(target string) string {
	if strings.HasPrefix(target, "/") {
		return d.baseURL + target
	}
	return target
}

func imagePath(outDir, category, name string) string {
	return filepath.Join(outDir, category, category+"_"+name+".png")
}
