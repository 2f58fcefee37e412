// Package config provides configuration types and defaults for regform.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/zjrosen/regform/internal/client"
	"github.com/zjrosen/regform/internal/log"
	"github.com/zjrosen/regform/internal/tracing"
)

// Config holds all configuration options for regform.
type Config struct {
	Endpoint string        `mapstructure:"endpoint" yaml:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`

	Debug    bool   `mapstructure:"debug" yaml:"debug"`
	LogPath  string `mapstructure:"log_path" yaml:"log_path"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	Theme   ThemeConfig    `mapstructure:"theme" yaml:"theme"`
	Tracing tracing.Config `mapstructure:"tracing" yaml:"tracing"`
	Server  ServerConfig   `mapstructure:"server" yaml:"server"`
}

// ThemeConfig holds theme customization options. Empty colors keep the
// built-in palette.
type ThemeConfig struct {
	// Mode forces light or dark mode. If empty, uses terminal detection.
	// Valid values: "light", "dark", ""
	Mode string `mapstructure:"mode" yaml:"mode"`

	Accent  string `mapstructure:"accent" yaml:"accent,omitempty"`
	Muted   string `mapstructure:"muted" yaml:"muted,omitempty"`
	Error   string `mapstructure:"error" yaml:"error,omitempty"`
	Success string `mapstructure:"success" yaml:"success,omitempty"`
}

// ServerConfig configures the mock registration endpoint (regform serve).
type ServerConfig struct {
	Addr           string        `mapstructure:"addr" yaml:"addr"`
	TakenUsernames []string      `mapstructure:"taken_usernames" yaml:"taken_usernames"`
	Latency        time.Duration `mapstructure:"latency" yaml:"latency"`
	RememberFor    time.Duration `mapstructure:"remember_for" yaml:"remember_for"`
	AllowedOrigins []string      `mapstructure:"allowed_origins" yaml:"allowed_origins,omitempty"`
}

// DefaultTracesFilePath returns ~/.config/regform/traces/traces.jsonl, or ""
// when the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "regform", "traces", "traces.jsonl")
}

// Defaults returns the default configuration.
func Defaults() Config {
	tr := tracing.DefaultConfig()
	tr.FilePath = DefaultTracesFilePath()

	return Config{
		Endpoint: client.DefaultEndpoint,
		Timeout:  client.DefaultTimeout,
		LogPath:  "debug.log",
		LogLevel: "debug",
		Tracing:  tr,
		Server: ServerConfig{
			Addr:           ":9009",
			TakenUsernames: []string{},
		},
	}
}

var hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks the configuration for values regform cannot run with.
func Validate(cfg Config) error {
	if err := ValidateEndpoint(cfg.Endpoint); err != nil {
		return err
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	if err := ValidateTheme(cfg.Theme); err != nil {
		return err
	}
	if err := ValidateTracing(cfg.Tracing); err != nil {
		return err
	}
	if cfg.Server.Latency < 0 {
		return fmt.Errorf("server.latency must not be negative")
	}
	if cfg.Server.RememberFor < 0 {
		return fmt.Errorf("server.remember_for must not be negative")
	}
	return nil
}

// ValidateEndpoint requires an absolute http or https URL.
func ValidateEndpoint(endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("endpoint %q has no host", endpoint)
	}
	return nil
}

// ValidateTheme checks the theme mode and color values.
func ValidateTheme(theme ThemeConfig) error {
	switch theme.Mode {
	case "", "light", "dark":
	default:
		return fmt.Errorf("theme.mode must be \"light\", \"dark\" or empty, got %q", theme.Mode)
	}
	for name, value := range map[string]string{
		"accent":  theme.Accent,
		"muted":   theme.Muted,
		"error":   theme.Error,
		"success": theme.Success,
	} {
		if value != "" && !hexColorRe.MatchString(value) {
			return fmt.Errorf("theme.%s: invalid hex color %q", name, value)
		}
	}
	return nil
}

// ValidateTracing checks the tracing exporter settings.
func ValidateTracing(tr tracing.Config) error {
	if !tracing.ValidExporter(tr.Exporter) {
		return fmt.Errorf("tracing.exporter: unsupported exporter %q", tr.Exporter)
	}
	if tr.Enabled && tr.Exporter == tracing.ExporterFile && tr.FilePath == "" {
		return fmt.Errorf("tracing.file_path is required for the file exporter")
	}
	if tr.SampleRate < 0 || tr.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be between 0 and 1, got %v", tr.SampleRate)
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# regform configuration

# Registration endpoint the form posts to.
# Use "regform serve" and http://localhost:9009/registration for a local mock.
endpoint: ` + client.DefaultEndpoint + `

# Request timeout for a single submission.
timeout: 10s

# Debug logging (also enabled by --debug or REGFORM_DEBUG=1)
debug: false
log_path: debug.log
log_level: debug   # debug, info, warn, error

# Theme overrides (hex colors). Leave empty to keep the defaults.
theme:
  mode: ""        # "light", "dark" or "" for terminal detection
  # accent: "#54A0FF"
  # muted: "#696969"
  # error: "#FF8787"
  # success: "#73F59F"

# OpenTelemetry tracing of submissions
tracing:
  enabled: false
  exporter: file   # none, file, stdout, otlp
  # file_path: ~/.config/regform/traces/traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0
  service_name: regform

# Mock registration endpoint (regform serve)
server:
  addr: ":9009"
  latency: 0s
  taken_usernames: []
  remember_for: 0s   # reject repeat usernames for this long, 0s keeps no state
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
