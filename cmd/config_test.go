package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/regform/internal/config"
	"github.com/zjrosen/regform/internal/tracing"
)

func TestWriteConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".regform", "config.yaml")
	var out bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&out)

	require.NoError(t, writeConfigFile(c, path, false))
	require.Contains(t, out.String(), "wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, config.DefaultConfigTemplate(), string(data))

	err = writeConfigFile(c, path, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")

	require.NoError(t, os.WriteFile(path, []byte("endpoint: x\n"), 0o644))
	require.NoError(t, writeConfigFile(c, path, true))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, config.DefaultConfigTemplate(), string(data))
}

func TestConfigPath_PrefersFlag(t *testing.T) {
	old := cfgFile
	t.Cleanup(func() { cfgFile = old })

	cfgFile = "/tmp/explicit.yaml"
	require.Equal(t, "/tmp/explicit.yaml", configPath())
}

func TestNewServer_AddrFlagOverridesConfig(t *testing.T) {
	oldCfg, oldAddr := cfg, serveAddr
	t.Cleanup(func() { cfg, serveAddr = oldCfg, oldAddr })

	cfg = config.Defaults()
	serveAddr = "127.0.0.1:0"

	srv := newServer(tracing.Noop())
	require.NotNil(t, srv)
	require.Equal(t, "127.0.0.1:0", cfg.Server.Addr)
}
