package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSaveEndpoint_CreatesNewFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	err := SaveEndpoint(configPath, "http://localhost:9009/registration")
	require.NoError(t, err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, "endpoint: http://localhost:9009/registration\n", string(data))
}

func TestSaveEndpoint_PreservesOtherConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(configPath))

	err := SaveEndpoint(configPath, "http://localhost:9009/registration")
	require.NoError(t, err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "endpoint: http://localhost:9009/registration")
	assert.Contains(t, content, "# regform configuration")
	assert.Contains(t, content, "timeout: 10s")
	assert.Contains(t, content, "exporter: file")

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9009/registration", cfg.Endpoint)
}

func TestSaveEndpoint_AppendsMissingKey(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("debug: true\n"), 0o644))

	require.NoError(t, SaveEndpoint(configPath, "https://example.com/registration"))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, "debug: true\nendpoint: https://example.com/registration\n", string(data))
}

func TestSaveEndpoint_RejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	err := SaveEndpoint(configPath, "not a url")
	require.Error(t, err)

	_, statErr := os.Stat(configPath)
	assert.True(t, os.IsNotExist(statErr), "invalid endpoint must not create the file")
}

func TestSaveEndpoint_NonMappingDocument(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("- a\n- b\n"), 0o644))

	err := SaveEndpoint(configPath, "https://example.com/registration")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a mapping")
}

func TestSaveEndpoint_AtomicWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, SaveEndpoint(configPath, "https://example.com/registration"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".regform.yaml.tmp."), "temp file left behind: %s", e.Name())
	}
}

func TestMarshal(t *testing.T) {
	cfg := Defaults()
	cfg.Timeout = 1500 * time.Millisecond
	cfg.Server.TakenUsernames = []string{"foo"}

	data, err := Marshal(cfg)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, yaml.Unmarshal(data, &out))
	assert.Equal(t, cfg.Endpoint, out["endpoint"])
	assert.Equal(t, "1.5s", out["timeout"])

	server, ok := out["server"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "0s", server["latency"])
	assert.Equal(t, []any{"foo"}, server["taken_usernames"])

	tr, ok := out["tracing"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "file", tr["exporter"])
}
