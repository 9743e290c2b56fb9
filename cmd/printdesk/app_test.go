package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/printdesk"
	"github.com/aretw0/printdesk/internal/config"
	"github.com/aretw0/printdesk/internal/logging"
	"github.com/aretw0/printdesk/internal/screenshot"
	"github.com/aretw0/printdesk/internal/testutils"
	"github.com/aretw0/printdesk/pkg/domain"
)

func loadTestConfig(t *testing.T, yaml string) config.Config {
	t.Helper()
	cfg, err := config.Load(config.WithFile(testutils.WriteFile(t, "printdesk.yaml", yaml)))
	require.NoError(t, err)
	cfg.Media.Dir = t.TempDir()
	return cfg
}

func TestBuildApp_Memory(t *testing.T) {
	fixtures := testutils.WriteFile(t, "items.yaml", "part:\n  - id: 1\n    name: Resistor\n")

	cfg := loadTestConfig(t, "storage:\n  driver: memory\nfixtures:\n  items: "+fixtures+"\n")
	a, err := buildApp(cfg, logging.NewNop())
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	created, err := a.engine.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Positive(t, created)

	labels, err := a.engine.Templates(ctx, domain.KindLabel, printdesk.TemplateFilter{})
	require.NoError(t, err)
	assert.NotEmpty(t, labels)

	var keys []string
	for _, p := range a.engine.Plugins("", nil) {
		keys = append(keys, p.Key)
	}
	assert.Contains(t, keys, "inventreelabel")
	assert.NotContains(t, keys, "samplelabelprinter")
}

func TestBuildApp_SamplePlugin(t *testing.T) {
	cfg := loadTestConfig(t, "label:\n  sample_dir: "+t.TempDir()+"\n")
	a, err := buildApp(cfg, logging.NewNop())
	require.NoError(t, err)
	defer a.Close()

	active := true
	var keys []string
	for _, p := range a.engine.Plugins("labels", &active) {
		keys = append(keys, p.Key)
	}
	assert.Contains(t, keys, "samplelabelprinter")
}

func TestBuildApp_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := loadTestConfig(t, "redis:\n  addr: "+mr.Addr()+"\n")

	a, err := buildApp(cfg, logging.NewNop())
	require.NoError(t, err)
	defer a.Close()

	removed, err := a.engine.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)

	outs, err := a.engine.Outputs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, outs)
}

func TestBuildApp_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown driver", "storage:\n  driver: mongo\n", `unknown storage driver "mongo"`},
		{"loam without dir", "storage:\n  driver: loam\n", "templates_dir is required"},
		{"missing profile", "render:\n  config_file: /nonexistent/renderers.yaml\n  profile: a4\n", `renderer profile "a4" not found`},
		{"missing fixtures", "fixtures:\n  items: /nonexistent/items.yaml\n", "failed to load item fixtures"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadTestConfig(t, tt.yaml)
			_, err := buildApp(cfg, logging.NewNop())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"1,2", " 3 ", ""})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	_, err = parseIDs([]string{"1,x"})
	assert.EqualError(t, err, `invalid id "x"`)
}

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{"copies=2", "cut=true", "printer=Zebra 1", "note="})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"copies":  2,
		"cut":     true,
		"printer": "Zebra 1",
		"note":    "",
	}, opts)

	_, err = parseOptions([]string{"oops"})
	assert.Error(t, err)

	opts, err = parseOptions(nil)
	require.NoError(t, err)
	assert.Nil(t, opts)
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "printdesk version "+strings.TrimSpace(printdesk.Version))
}

type stubBrowser struct{ visited []string }

func (b *stubBrowser) Navigate(_ context.Context, url string) error {
	b.visited = append(b.visited, url)
	return nil
}
func (b *stubBrowser) Click(context.Context, string) error         { return nil }
func (b *stubBrowser) ClickText(context.Context, string) error     { return nil }
func (b *stubBrowser) Fill(context.Context, string, string) error  { return nil }
func (b *stubBrowser) WaitText(context.Context, string) error      { return nil }
func (b *stubBrowser) WaitSelector(context.Context, string) error  { return nil }
func (b *stubBrowser) Screenshot(context.Context) ([]byte, error) { return []byte("png"), nil }
func (b *stubBrowser) Close() error                                { return nil }

func TestScreenshotDriver_DefaultPaths(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "screenshots", cfg.Screenshots.OutDir)
	assert.Equal(t, screenshot.DefaultTimeout, cfg.Screenshots.Timeout)

	b := &stubBrowser{}
	written, err := newScreenshotDriver(b, cfg.Screenshots, logging.NewNop()).Run(context.Background(), screenshot.BuildScript())
	require.NoError(t, err)
	require.NotEmpty(t, written)
	assert.Equal(t, filepath.Join("screenshots", "build", "build_index.png"), written[0])
	assert.FileExists(t, written[0])
	assert.Equal(t, "http://localhost:8080/web/manufacturing/index/buildorders", b.visited[0])
}
