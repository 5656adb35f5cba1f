// Package config provides configuration loading and management for
// ontograph.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ontograph/ontograph/catalog"
)

// Config represents the complete ontograph configuration.
type Config struct {
	Cache   CacheConfig   `yaml:"cache"`
	Catalog CatalogConfig `yaml:"catalog"`
	HTTP    HTTPConfig    `yaml:"http"`
	Server  ServerConfig  `yaml:"server"`
	Query   QueryConfig   `yaml:"query"`
}

// CacheConfig configures the on-disk download cache.
type CacheConfig struct {
	// Dir is the cache directory (default: <user cache dir>/ontograph)
	Dir string `yaml:"dir"`
}

// CatalogConfig configures the ontology registry source.
type CatalogConfig struct {
	// RegistryURL is where the OBO Foundry registry is fetched from
	RegistryURL string `yaml:"registry_url"`
}

// HTTPConfig configures outbound downloads.
type HTTPConfig struct {
	// Timeout is the maximum time for one download
	Timeout time.Duration `yaml:"timeout"`
}

// ServerConfig configures the query HTTP server.
type ServerConfig struct {
	// Addr is the listen address for the serve command
	Addr string `yaml:"addr"`
	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// QueryConfig configures per-call query defaults.
type QueryConfig struct {
	// MaxTrajectories caps trajectory enumeration (0 = package default,
	// negative = unlimited)
	MaxTrajectories int `yaml:"max_trajectories"`
	// MaxTrajectorySteps caps trajectory traversal steps
	MaxTrajectorySteps int `yaml:"max_trajectory_steps"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Dir: defaultCacheDir(),
		},
		Catalog: CatalogConfig{
			RegistryURL: catalog.DefaultRegistryURL,
		},
		HTTP: HTTPConfig{
			Timeout: 5 * time.Minute,
		},
		Server: ServerConfig{
			Addr:            "localhost:8780",
			ShutdownTimeout: 10 * time.Second,
		},
		Query: QueryConfig{
			MaxTrajectories:    0, // package default
			MaxTrajectorySteps: 0,
		},
	}
}

func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ".ontograph-cache"
	}
	return filepath.Join(base, "ontograph")
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Cache.Dir == "" {
		return fmt.Errorf("cache.dir is required")
	}
	if c.Catalog.RegistryURL == "" {
		return fmt.Errorf("catalog.registry_url is required")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}

// Merge overlays non-zero fields of other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Cache.Dir != "" {
		c.Cache.Dir = other.Cache.Dir
	}
	if other.Catalog.RegistryURL != "" {
		c.Catalog.RegistryURL = other.Catalog.RegistryURL
	}
	if other.HTTP.Timeout != 0 {
		c.HTTP.Timeout = other.HTTP.Timeout
	}
	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.ShutdownTimeout != 0 {
		c.Server.ShutdownTimeout = other.Server.ShutdownTimeout
	}
	if other.Query.MaxTrajectories != 0 {
		c.Query.MaxTrajectories = other.Query.MaxTrajectories
	}
	if other.Query.MaxTrajectorySteps != 0 {
		c.Query.MaxTrajectorySteps = other.Query.MaxTrajectorySteps
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
