// Package config loads mip's optional TOML configuration file.
//
// The file lives at ~/.mip/config.toml. Every field has a sensible default,
// so a missing file is not an error. Command-line flags override config
// values, which override defaults.
//
// Example:
//
//	index_url = "https://packages.example.com/index.json"
//	packages_dir = "/opt/matlab-packages"
//
//	[cache]
//	backend = "redis"
//	ttl_minutes = 30
//
//	[cache.redis]
//	addr = "localhost:6379"
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mip-org/mip/pkg/errors"
)

// DefaultIndexURL is the public mip package index.
const DefaultIndexURL = "https://mip-org.github.io/mip-core/index.json"

// DefaultCacheTTL is how long a fetched index stays fresh.
const DefaultCacheTTL = 15 * time.Minute

// Config holds all user-tunable settings.
type Config struct {
	IndexURL    string      `toml:"index_url"`
	PackagesDir string      `toml:"packages_dir"`
	Cache       CacheConfig `toml:"cache"`
}

// CacheConfig selects and configures the response cache backend.
type CacheConfig struct {
	Backend    string      `toml:"backend"` // "file" (default), "redis", "none"
	Dir        string      `toml:"dir"`     // file backend directory
	TTLMinutes int         `toml:"ttl_minutes"`
	Redis      RedisConfig `toml:"redis"`
}

// RedisConfig holds redis backend connection settings.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// TTL returns the configured cache TTL, falling back to DefaultCacheTTL.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLMinutes > 0 {
		return time.Duration(c.TTLMinutes) * time.Minute
	}
	return DefaultCacheTTL
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		IndexURL: DefaultIndexURL,
		Cache:    CacheConfig{Backend: "file"},
	}
}

// Path returns the config file location (~/.mip/config.toml).
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".mip", "config.toml"), nil
}

// Load reads the config file at path, applying defaults for unset fields.
// A missing file returns the defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if cfg.IndexURL == "" {
		cfg.IndexURL = DefaultIndexURL
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "file"
	}
	return cfg, nil
}
