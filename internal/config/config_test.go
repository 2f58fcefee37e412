package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/regform/internal/client"
	"github.com/zjrosen/regform/internal/tracing"
)

// loadConfigFromYAML writes yaml to a temp file and loads it through viper
// with the registered defaults.
func loadConfigFromYAML(t *testing.T, yaml string) (Config, error) {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0o644))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())

	return Load(v)
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	require.Equal(t, client.DefaultEndpoint, cfg.Endpoint)
	require.Equal(t, 10*time.Second, cfg.Timeout)
	require.False(t, cfg.Debug)
	require.Equal(t, "debug.log", cfg.LogPath)
	require.False(t, cfg.Tracing.Enabled)
	require.Equal(t, ":9009", cfg.Server.Addr)
	require.NoError(t, Validate(cfg))
}

func TestLoad_DefaultTemplate(t *testing.T) {
	cfg, err := loadConfigFromYAML(t, DefaultConfigTemplate())
	require.NoError(t, err)

	require.Equal(t, client.DefaultEndpoint, cfg.Endpoint)
	require.Equal(t, 10*time.Second, cfg.Timeout)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, tracing.ExporterFile, cfg.Tracing.Exporter)
	require.Equal(t, ":9009", cfg.Server.Addr)
	require.Empty(t, cfg.Server.TakenUsernames)
	require.Equal(t, time.Duration(0), cfg.Server.Latency)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := loadConfigFromYAML(t, `
endpoint: http://localhost:9009/registration
timeout: 250ms
debug: true
theme:
  mode: dark
  accent: "#FF0000"
server:
  latency: 1s
  remember_for: 10m
  taken_usernames: [foo, bar]
`)
	require.NoError(t, err)

	require.Equal(t, "http://localhost:9009/registration", cfg.Endpoint)
	require.Equal(t, 250*time.Millisecond, cfg.Timeout)
	require.True(t, cfg.Debug)
	require.Equal(t, "dark", cfg.Theme.Mode)
	require.Equal(t, "#FF0000", cfg.Theme.Accent)
	require.Equal(t, time.Second, cfg.Server.Latency)
	require.Equal(t, 10*time.Minute, cfg.Server.RememberFor)
	require.Equal(t, []string{"foo", "bar"}, cfg.Server.TakenUsernames)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("REGFORM_ENDPOINT", "http://127.0.0.1:8080/registration")

	cfg, err := loadConfigFromYAML(t, "debug: false\n")
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8080/registration", cfg.Endpoint)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := loadConfigFromYAML(t, "endpoint: ftp://example.com/registration\n")
	require.Error(t, err)
	require.Contains(t, err.Error(), "http or https")
}

func TestValidateEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr string
	}{
		{name: "https", in: "https://example.com/registration"},
		{name: "http localhost", in: "http://localhost:9009/registration"},
		{name: "empty", in: "", wantErr: "endpoint is required"},
		{name: "no scheme", in: "example.com/registration", wantErr: "http or https"},
		{name: "no host", in: "http:///registration", wantErr: "has no host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEndpoint(tt.in)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_Timeout(t *testing.T) {
	cfg := Defaults()
	cfg.Timeout = 0
	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "timeout must be positive")
}

func TestValidateTheme(t *testing.T) {
	require.NoError(t, ValidateTheme(ThemeConfig{}))
	require.NoError(t, ValidateTheme(ThemeConfig{Mode: "light", Accent: "#abc", Error: "#FF8787"}))

	err := ValidateTheme(ThemeConfig{Mode: "sepia"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "theme.mode")

	err = ValidateTheme(ThemeConfig{Success: "green"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "theme.success")
}

func TestValidateTracing(t *testing.T) {
	require.NoError(t, ValidateTracing(tracing.DefaultConfig()))

	err := ValidateTracing(tracing.Config{Exporter: "zipkin"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported exporter")

	err = ValidateTracing(tracing.Config{Enabled: true, Exporter: tracing.ExporterFile})
	require.Error(t, err)
	require.Contains(t, err.Error(), "file_path is required")

	err = ValidateTracing(tracing.Config{Exporter: tracing.ExporterNone, SampleRate: 2})
	require.Error(t, err)
	require.Contains(t, err.Error(), "sample_rate")
}

func TestValidate_NegativeLatency(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Latency = -time.Second
	require.Error(t, Validate(cfg))
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".regform", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))
}
