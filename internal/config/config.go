// Package config loads printdesk settings from defaults, an optional YAML file and
// PRINTDESK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PRINTDESK_SERVER_ADDR.
const EnvPrefix = "PRINTDESK"

// Config holds application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Media       MediaConfig       `mapstructure:"media"`
	Render      RenderConfig      `mapstructure:"render"`
	Report      ReportConfig      `mapstructure:"report"`
	Label       LabelConfig       `mapstructure:"label"`
	Outputs     OutputsConfig     `mapstructure:"outputs"`
	Fixtures    FixturesConfig    `mapstructure:"fixtures"`
	Client      ClientConfig      `mapstructure:"client"`
	Screenshots ScreenshotsConfig `mapstructure:"screenshots"`
	MCP         MCPConfig         `mapstructure:"mcp"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	BaseURL         string        `mapstructure:"base_url"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StorageConfig selects the template store.
type StorageConfig struct {
	// Driver is one of memory, sqlite or loam.
	Driver string `mapstructure:"driver"`
	// Path is the sqlite database file.
	Path string `mapstructure:"path"`
	// TemplatesDir is the loam template library.
	TemplatesDir string `mapstructure:"templates_dir"`
	// Seed creates the builtin templates on start.
	Seed bool `mapstructure:"seed"`
}

// RedisConfig enables the redis output store and cleanup lock when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// MediaConfig holds where generated files live and how they are served.
type MediaConfig struct {
	Dir       string `mapstructure:"dir"`
	URLPrefix string `mapstructure:"url_prefix"`
}

// RenderConfig configures the wkhtmltopdf renderer.
type RenderConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
	// ConfigFile is a renderers file (YAML or JSON) with named profiles.
	ConfigFile string        `mapstructure:"config_file"`
	Profile    string        `mapstructure:"profile"`
	PageSize   string        `mapstructure:"page_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
	TempDir    string        `mapstructure:"temp_dir"`
}

// ReportConfig holds the report printing switches.
type ReportConfig struct {
	Debug     bool `mapstructure:"debug"`
	LogErrors bool `mapstructure:"log_errors"`
}

// LabelConfig holds the label printing settings.
type LabelConfig struct {
	DefaultPlugin string `mapstructure:"default_plugin"`
	Debug         bool   `mapstructure:"debug"`
	// SampleDir enables the sample printer, writing its labels there.
	SampleDir string `mapstructure:"sample_dir"`
}

// OutputsConfig controls output retention.
type OutputsConfig struct {
	Retention       time.Duration `mapstructure:"retention"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// FixturesConfig points to item fixtures for the memory item source.
type FixturesConfig struct {
	Items string `mapstructure:"items"`
}

// ClientConfig is used by the commands that talk to a running server.
type ClientConfig struct {
	Host    string        `mapstructure:"host"`
	User    string        `mapstructure:"user"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ScreenshotsConfig configures the documentation screenshot driver.
type ScreenshotsConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	OutDir   string        `mapstructure:"out_dir"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Headless bool          `mapstructure:"headless"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
}

// MCPConfig configures the MCP server.
type MCPConfig struct {
	Transport string `mapstructure:"transport"`
	Port      int    `mapstructure:"port"`
}

// Option customises Load.
type Option func(*loader)

type loader struct {
	path  string
	flags map[string]*pflag.Flag
}

// WithFile reads the given YAML file. It takes precedence over PRINTDESK_CONFIG.
func WithFile(path string) Option {
	return func(l *loader) { l.path = path }
}

// WithFlag binds a command line flag to a configuration key. Flags that were
// set on the command line override every other source.
func WithFlag(key string, flag *pflag.Flag) Option {
	return func(l *loader) {
		if flag != nil {
			l.flags[key] = flag
		}
	}
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.path", "printdesk.db")
	v.SetDefault("storage.templates_dir", "")
	v.SetDefault("storage.seed", true)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "printdesk:")
	v.SetDefault("redis.ttl", 0)
	v.SetDefault("media.dir", "media")
	v.SetDefault("media.url_prefix", "/media/")
	v.SetDefault("render.command", "wkhtmltopdf")
	v.SetDefault("render.args", []string{})
	v.SetDefault("render.config_file", "")
	v.SetDefault("render.profile", "")
	v.SetDefault("render.page_size", "A4")
	v.SetDefault("render.timeout", 60*time.Second)
	v.SetDefault("render.temp_dir", "")
	v.SetDefault("report.debug", false)
	v.SetDefault("report.log_errors", false)
	v.SetDefault("label.default_plugin", "inventreelabel")
	v.SetDefault("label.debug", false)
	v.SetDefault("label.sample_dir", "")
	v.SetDefault("outputs.retention", 5*24*time.Hour)
	v.SetDefault("outputs.cleanup_interval", 24*time.Hour)
	v.SetDefault("fixtures.items", "")
	v.SetDefault("client.host", "http://localhost:8080")
	v.SetDefault("client.user", "")
	v.SetDefault("client.timeout", 30*time.Second)
	v.SetDefault("screenshots.base_url", "http://localhost:8080")
	v.SetDefault("screenshots.out_dir", "screenshots")
	v.SetDefault("screenshots.timeout", 30*time.Second)
	v.SetDefault("screenshots.headless", true)
	v.SetDefault("screenshots.username", "")
	v.SetDefault("screenshots.password", "")
	v.SetDefault("mcp.transport", "stdio")
	v.SetDefault("mcp.port", 8081)
}

// Load reads configuration from defaults, file, env and flags, in increasing
// order of precedence. Env var overrides use prefix PRINTDESK_.
func Load(opts ...Option) (Config, error) {
	l := &loader{flags: make(map[string]*pflag.Flag)}
	for _, opt := range opts {
		opt(l)
	}

	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")

	path := l.path
	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("printdesk")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range l.flags {
		if err := v.BindPFlag(key, flag); err != nil {
			return Config{}, fmt.Errorf("bind flag %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// an explicit file must exist, the implicit ./printdesk.yaml may not
		if l.path != "" || os.Getenv(EnvPrefix+"_CONFIG") != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
