package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestLoadConfigMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
rows: 3
workers: 2
format: json
server_address: 0.0.0.0:9000
max_body_bytes: 1024
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.NotNil(t, cfg.Rows)
	assert.Equal(t, 3, *cfg.Rows)
	require.NotNil(t, cfg.Workers)
	assert.Equal(t, 2, *cfg.Workers)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "0.0.0.0:9000", cfg.ServerAddress)
	require.NotNil(t, cfg.MaxBodyBytes)
	assert.Equal(t, int64(1024), *cfg.MaxBodyBytes)
	assert.Nil(t, cfg.StoreLimit)
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rows: [1, 2\n"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigPathPrecedence(t *testing.T) {
	t.Setenv(envConfigPath, "/env/config.yaml")
	assert.Equal(t, "/flag/config.yaml", configPath(" /flag/config.yaml "))
	assert.Equal(t, "/env/config.yaml", configPath(""))

	t.Setenv(envConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	t.Setenv("HOME", "/home/test")
	assert.Equal(t, filepath.Join("/xdg", "npyload", "config.yaml"), configPath(""))
}

func TestLoggingConfigOnlyAppliesWhenFlagUnset(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("log_level: verbose\n"), 0o644))

	run := func(args ...string) error {
		app := newApp()
		app.Writer = io.Discard
		app.ErrWriter = io.Discard
		app.ExitErrHandler = func(context.Context, *cli.Command, error) {}
		return app.Run(context.Background(), append([]string{"npyload", "--config", cfg}, args...))
	}

	err := run("version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verbose")

	assert.NoError(t, run("--log-level", "warn", "version"))
}
