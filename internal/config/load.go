package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. REGFORM_ENDPOINT.
const EnvPrefix = "REGFORM"

// SetDefaults registers Defaults() on v and enables environment overrides.
// Nested keys map to env names with underscores: tracing.enabled reads
// REGFORM_TRACING_ENABLED.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("endpoint", d.Endpoint)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("log_path", d.LogPath)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("theme.mode", d.Theme.Mode)
	v.SetDefault("theme.accent", d.Theme.Accent)
	v.SetDefault("theme.muted", d.Theme.Muted)
	v.SetDefault("theme.error", d.Theme.Error)
	v.SetDefault("theme.success", d.Theme.Success)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.taken_usernames", d.Server.TakenUsernames)
	v.SetDefault("server.latency", d.Server.Latency)
	v.SetDefault("server.remember_for", d.Server.RememberFor)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
