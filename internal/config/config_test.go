package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PRINTDESK_CONFIG", "")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "memory", c.Storage.Driver)
	assert.Equal(t, "inventreelabel", c.Label.DefaultPlugin)
	assert.Equal(t, 5*24*time.Hour, c.Outputs.Retention)
	assert.Equal(t, 24*time.Hour, c.Outputs.CleanupInterval)
	assert.Equal(t, "/media/", c.Media.URLPrefix)
	assert.Equal(t, "A4", c.Render.PageSize)
	assert.True(t, c.Screenshots.Headless)
	assert.False(t, c.Report.Debug)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "printdesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
report:
  debug: true
  log_errors: true
outputs:
  retention: 48h
storage:
  driver: sqlite
`), 0o644))

	t.Setenv("PRINTDESK_STORAGE_DRIVER", "loam")
	t.Setenv("PRINTDESK_REDIS_ADDR", "localhost:6379")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("addr", "", "")
	require.NoError(t, flags.Parse([]string{"--addr", ":7000"}))

	c, err := Load(WithFile(path), WithFlag("server.addr", flags.Lookup("addr")))
	require.NoError(t, err)
	assert.Equal(t, ":7000", c.Server.Addr)
	assert.True(t, c.Report.Debug)
	assert.True(t, c.Report.LogErrors)
	assert.Equal(t, 48*time.Hour, c.Outputs.Retention)
	assert.Equal(t, "loam", c.Storage.Driver)
	assert.Equal(t, "localhost:6379", c.Redis.Addr)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(WithFile(filepath.Join(t.TempDir(), "nope.yaml")))
	assert.Error(t, err)
}
