package process

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/printdesk/pkg/ports"
)

// catPages stands in for wkhtmltopdf: it concatenates every existing input file to stdout.
const catPages = `for a in "$@"; do if [ -f "$a" ]; then cat "$a"; fi; done`

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("renderer tests use sh")
	}
}

func TestRenderer_MergesPagesInOneRun(t *testing.T) {
	requireShell(t)
	r := NewRenderer(WithCommand("sh", "-c", catPages, "fake-wkhtmltopdf"))

	out, err := r.RenderPDF(context.Background(), [][]byte{[]byte("<p>one</p>"), []byte("<p>two</p>")}, ports.PageOptions{})
	require.NoError(t, err)
	assert.Equal(t, "<p>one</p><p>two</p>", string(out))
}

func TestRenderer_EmptyOutputFails(t *testing.T) {
	requireShell(t)
	r := NewRenderer(WithCommand("sh", "-c", "true", "fake"))

	_, err := r.RenderPDF(context.Background(), [][]byte{[]byte("x")}, ports.PageOptions{})
	assert.ErrorIs(t, err, ErrNoOutput)
}

func TestRenderer_FailureIncludesStderr(t *testing.T) {
	requireShell(t)
	r := NewRenderer(WithCommand("sh", "-c", "echo broken >&2; exit 3", "fake"))

	_, err := r.RenderPDF(context.Background(), [][]byte{[]byte("x")}, ports.PageOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestRenderer_HonoursCancellation(t *testing.T) {
	requireShell(t)
	r := NewRenderer(WithCommand("sh", "-c", "exec sleep 5", "fake"))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.RenderPDF(ctx, [][]byte{[]byte("x")}, ports.PageOptions{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestRenderer_NoPages(t *testing.T) {
	_, err := NewRenderer().RenderPDF(context.Background(), nil, ports.PageOptions{})
	assert.Error(t, err)
}

func TestLayoutArgs(t *testing.T) {
	assert.Equal(t, []string{"--page-size", "A4"}, LayoutArgs(ports.PageOptions{}))
	assert.Equal(t, []string{"--page-size", "Letter", "--orientation", "Landscape"},
		LayoutArgs(ports.PageOptions{PageSize: "Letter", Landscape: true}))

	args := LayoutArgs(ports.PageOptions{PageSize: "A4", Width: 62, Height: 29.5})
	assert.Equal(t, []string{"--page-width", "62mm", "--page-height", "29.5mm"}, args[:4])
}

func TestLoadRenderers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "renderers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
renderers:
  - name: wkhtmltopdf
    command: /usr/local/bin/wkhtmltopdf
    args: ["--dpi", "300"]
    env:
      QT_QPA_PLATFORM: offscreen
  - name: incomplete
`), 0o644))

	cfgs, err := LoadRenderers(path)
	require.NoError(t, err)
	require.Len(t, cfgs, 1)
	assert.Equal(t, []string{"--dpi", "300"}, cfgs["wkhtmltopdf"].Args)

	missing, err := LoadRenderers(filepath.Join(dir, "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, missing)

	r := NewRenderer(WithConfig(cfgs["wkhtmltopdf"]))
	assert.Equal(t, "/usr/local/bin/wkhtmltopdf", r.command)
	assert.Equal(t, "offscreen", r.env["QT_QPA_PLATFORM"])
}
