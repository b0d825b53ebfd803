package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pavodb.yaml")
	yaml := []byte(`
app_name: pavodb-test
storage:
  data_dir: /tmp/pavo
  page_size: 4096
pool:
  capacity: 16
  debug: true
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "pavodb-test", cfg.AppName)
	require.Equal(t, "/tmp/pavo", cfg.Storage.DataDir)
	require.Equal(t, 4096, cfg.Storage.PageSize)
	require.Equal(t, 16, cfg.Pool.Capacity)
	require.True(t, cfg.Pool.Debug)
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pavodb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app_name: bare\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "bare", cfg.AppName)
	require.Equal(t, "./data", cfg.Storage.DataDir)
	require.Equal(t, 8192, cfg.Storage.PageSize)
	require.Equal(t, 128, cfg.Pool.Capacity)
	require.False(t, cfg.Pool.Debug)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
