package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abelbrown/herbal/internal/catalog"
)

// Config is the persistent application configuration
type Config struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Store   StoreConfig   `yaml:"store"`
	Capture CaptureConfig `yaml:"capture"`
	UI      UIConfig      `yaml:"ui"`
	API     APIConfig     `yaml:"api"`

	// User pins the signed-in user, overriding the stored login.
	User string `yaml:"user,omitempty"`
}

// CatalogConfig says where plant records come from
type CatalogConfig struct {
	Source  string           `yaml:"source"` // path, http(s):// or s3:// URL; empty = built-in
	Timeout time.Duration    `yaml:"timeout"`
	S3      catalog.S3Config `yaml:"s3"`
}

// StoreConfig selects the key-value backend
type StoreConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "postgres"
	Path   string `yaml:"path"`   // sqlite file
	DSN    string `yaml:"dsn,omitempty"`
}

// CaptureConfig configures voice input
type CaptureConfig struct {
	Command string        `yaml:"command"` // speech-to-text program printing the transcript
	Timeout time.Duration `yaml:"timeout"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	DefaultMode  string `yaml:"default_mode"` // "disease" or "plant"
	CardDiseases int    `yaml:"card_diseases"`
	Dark         bool   `yaml:"dark"` // theme until one is saved
}

// APIConfig holds HTTP API settings
type APIConfig struct {
	Addr string `yaml:"addr"`
}

// Dir returns herbal's state directory.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".herbal")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Timeout: 30 * time.Second,
		},
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   filepath.Join(Dir(), "herbal.db"),
		},
		Capture: CaptureConfig{
			Timeout: 15 * time.Second,
		},
		UI: UIConfig{
			DefaultMode:  "disease",
			CardDiseases: 4,
		},
		API: APIConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads the config file, or returns defaults when there is none.
// Environment overrides are applied either way.
func Load() (*Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.AutoPopulateFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600) // may hold a database DSN
}

// AutoPopulateFromEnv applies HERBAL_* environment overrides
func (c *Config) AutoPopulateFromEnv() {
	if v := os.Getenv("HERBAL_CATALOG"); v != "" {
		c.Catalog.Source = v
	}
	if v := os.Getenv("HERBAL_DB"); v != "" {
		c.Store.Driver = "sqlite"
		c.Store.Path = v
	}
	if v := os.Getenv("HERBAL_POSTGRES_DSN"); v != "" {
		c.Store.Driver = "postgres"
		c.Store.DSN = v
	}
	if v := os.Getenv("HERBAL_USER"); v != "" {
		c.User = v
	}
	if v := os.Getenv("HERBAL_CAPTURE_CMD"); v != "" {
		c.Capture.Command = v
	}
}

// Validate rejects settings the rest of herbal cannot act on.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Store.Driver) {
	case "", "sqlite":
		c.Store.Driver = "sqlite"
	case "postgres", "pgx":
		c.Store.Driver = "postgres"
		if c.Store.DSN == "" {
			return fmt.Errorf("store: postgres driver needs a dsn")
		}
	default:
		return fmt.Errorf("store: unknown driver %q", c.Store.Driver)
	}

	switch strings.ToLower(c.UI.DefaultMode) {
	case "", "disease":
		c.UI.DefaultMode = "disease"
	case "plant":
		c.UI.DefaultMode = "plant"
	default:
		return fmt.Errorf("ui: unknown default_mode %q", c.UI.DefaultMode)
	}

	if c.UI.CardDiseases <= 0 {
		c.UI.CardDiseases = 4
	}
	if c.Catalog.Timeout < 0 || c.Capture.Timeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}
