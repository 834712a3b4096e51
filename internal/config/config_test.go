package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PRICEBOOK_REGISTRY_URL", "PRICEBOOK_DB_PATH", "PRICEBOOK_LOG_LEVEL", "PRICEBOOK_SERVER_ADDR"} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/", cfg.Registry.BaseURL)
	require.Equal(t, 3*time.Second, cfg.Registry.Timeout())
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, 10, cfg.UI.PreviewRows)
}

func TestLoadJSONWithPartialFields(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"registry":{"base_url":"https://registry.example.com/api","timeout_ms":1500}}`), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	require.Equal(t, "https://registry.example.com/api/", cfg.Registry.BaseURL)
	require.Equal(t, 1500*time.Millisecond, cfg.Registry.Timeout())
	require.Equal(t, float64(4), cfg.Registry.RatePerSec)
	require.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
registry:
  base_url: http://10.0.0.5:9000/
  retries: 0
store:
  path: /tmp/pb.db
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	require.Equal(t, "http://10.0.0.5:9000/", cfg.Registry.BaseURL)
	require.Equal(t, 0, cfg.Registry.Retries)
	require.Equal(t, "/tmp/pb.db", cfg.Store.Path)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"store":{"path":"/from/file.db"}}`), 0o644))

	t.Setenv("PRICEBOOK_DB_PATH", "/from/env.db")
	t.Setenv("PRICEBOOK_REGISTRY_URL", "http://env-registry")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	require.Equal(t, "/from/env.db", cfg.Store.Path)
	require.Equal(t, "http://env-registry/", cfg.Registry.BaseURL)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	_, err := LoadFrom(path)
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "saved.yaml")
	t.Setenv("PRICEBOOK_CONFIG", path)

	cfg := DefaultConfig()
	cfg.Server.Addr = "127.0.0.1:9999"
	require.NoError(t, cfg.Save())

	loaded, err := Load()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9999", loaded.Server.Addr)
}
