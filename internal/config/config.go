package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the persistent application configuration.
type Config struct {
	Registry RegistryConfig `json:"registry" yaml:"registry"`
	Store    StoreConfig    `json:"store" yaml:"store"`
	Server   ServerConfig   `json:"server" yaml:"server"`
	Log      LogConfig      `json:"log" yaml:"log"`
	UI       UIConfig       `json:"ui" yaml:"ui"`
}

// RegistryConfig describes the remote catalogue the search pipeline talks to.
type RegistryConfig struct {
	BaseURL    string  `json:"base_url" yaml:"base_url"`
	TimeoutMs  int     `json:"timeout_ms" yaml:"timeout_ms"`
	RatePerSec float64 `json:"rate_per_sec" yaml:"rate_per_sec"`
	Retries    int     `json:"retries" yaml:"retries"`
}

// Timeout returns the per-request timeout.
func (r RegistryConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutMs) * time.Millisecond
}

// StoreConfig locates the SQLite database holding the ingested collection.
type StoreConfig struct {
	Path string `json:"path" yaml:"path"`
}

// ServerConfig is used by `pb serve`, the local registry.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// UIConfig holds TUI preferences.
type UIConfig struct {
	PreviewRows int  `json:"preview_rows" yaml:"preview_rows"` // ingested rows shown in the ingest panel
	ShowDebug   bool `json:"show_debug" yaml:"show_debug"`     // open with the event overlay visible
}

// DataDir returns ~/.pricebook.
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".pricebook")
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Registry: RegistryConfig{
			BaseURL:    "http://localhost:8080/",
			TimeoutMs:  3000,
			RatePerSec: 4,
			Retries:    2,
		},
		Store: StoreConfig{
			Path: filepath.Join(DataDir(), "pricebook.db"),
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level: "info",
		},
		UI: UIConfig{
			PreviewRows: 10,
		},
	}
}

// ConfigPath returns the config file location: $PRICEBOOK_CONFIG if set,
// otherwise ~/.pricebook/config.json.
func ConfigPath() string {
	if p := os.Getenv("PRICEBOOK_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(DataDir(), "config.json")
}

// Load reads the config file (JSON, or YAML for .yaml/.yml paths), layers
// environment overrides on top, and fills zero values with defaults.
// A missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom is Load with an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnv()
	cfg.fillDefaults()
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PRICEBOOK_REGISTRY_URL"); v != "" {
		c.Registry.BaseURL = v
	}
	if v := os.Getenv("PRICEBOOK_DB_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("PRICEBOOK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PRICEBOOK_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// fillDefaults replaces values a partial config file zeroed out.
func (c *Config) fillDefaults() {
	d := DefaultConfig()
	if c.Registry.BaseURL == "" {
		c.Registry.BaseURL = d.Registry.BaseURL
	}
	if !strings.HasSuffix(c.Registry.BaseURL, "/") {
		c.Registry.BaseURL += "/"
	}
	if c.Registry.TimeoutMs <= 0 {
		c.Registry.TimeoutMs = d.Registry.TimeoutMs
	}
	if c.Registry.RatePerSec <= 0 {
		c.Registry.RatePerSec = d.Registry.RatePerSec
	}
	if c.Registry.Retries < 0 {
		c.Registry.Retries = 0
	}
	if c.Store.Path == "" {
		c.Store.Path = d.Store.Path
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.UI.PreviewRows <= 0 {
		c.UI.PreviewRows = d.UI.PreviewRows
	}
}

// Save writes the config as indented JSON to ConfigPath.
func (c *Config) Save() error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
