// Package config loads the application configuration from a TOML file with
// environment overrides. Configuration is read once at startup and treated
// as immutable afterwards.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/leafvessel/carecard/pkg/errors"
	"github.com/leafvessel/carecard/pkg/plant"
)

// appName names the directories used for config, data and cache files.
const appName = "carecard"

// Config is the full application configuration.
type Config struct {
	API    APIConfig    `toml:"api"`
	Paths  PathsConfig  `toml:"paths"`
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Limits LimitsConfig `toml:"limits"`
}

// APIConfig configures the remote care data service.
type APIConfig struct {
	// Key is the Anthropic API key. The ANTHROPIC_API_KEY environment
	// variable always wins over the file value.
	Key string `toml:"key"`

	// Model overrides the default model when non-empty.
	Model string `toml:"model"`

	MaxRetries       int `toml:"max_retries"`
	BaseDelaySeconds int `toml:"base_delay_seconds"`
	TimeoutSeconds   int `toml:"timeout_seconds"`
}

// BaseDelay returns the initial retry backoff.
func (a APIConfig) BaseDelay() time.Duration {
	return time.Duration(a.BaseDelaySeconds) * time.Second
}

// Timeout returns the per-request timeout.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// PathsConfig configures file locations.
type PathsConfig struct {
	// OutputDir is the root directory for generated cards.
	OutputDir string `toml:"output_dir"`

	// Template is the card back PDF merged as page two. Optional.
	Template string `toml:"template"`

	// Logo is the image drawn in the reserved card region. Optional.
	Logo string `toml:"logo"`

	// Database is the SQLite file path.
	Database string `toml:"database"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	// Backend is "sqlite" (default) or "mongo".
	Backend string `toml:"backend"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// CacheConfig selects the remote response cache backend.
type CacheConfig struct {
	// Backend is "file" (default), "redis", or "none".
	Backend string `toml:"backend"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// LimitsConfig overrides per-field maximum lengths in runes. Zero keeps the
// built-in limit for that field.
type LimitsConfig struct {
	Description int `toml:"description"`
	Light       int `toml:"light"`
	Water       int `toml:"water"`
	Feeding     int `toml:"feeding"`
	Temperature int `toml:"temperature"`
	Humidity    int `toml:"humidity"`
	Toxicity    int `toml:"toxicity"`
}

// FieldLimits builds the effective field limit policy: the defaults with any
// configured overrides applied. The same value must back both the store
// write path and the render path so stored and rendered text never drift.
func (c *Config) FieldLimits() plant.Limits {
	limits := plant.DefaultLimits()
	overrides := map[string]int{
		plant.FieldDescription: c.Limits.Description,
		plant.FieldLight:       c.Limits.Light,
		plant.FieldWater:       c.Limits.Water,
		plant.FieldFeeding:     c.Limits.Feeding,
		plant.FieldTemperature: c.Limits.Temperature,
		plant.FieldHumidity:    c.Limits.Humidity,
		plant.FieldToxicity:    c.Limits.Toxicity,
	}
	for name, max := range overrides {
		if max > 0 {
			limits[name] = max
		}
	}
	return limits
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			MaxRetries:       3,
			BaseDelaySeconds: 2,
			TimeoutSeconds:   30,
		},
		Paths: PathsConfig{
			OutputDir: "cards",
			Database:  filepath.Join(dataDir(), "plants.db"),
		},
		Store:  StoreConfig{Backend: "sqlite"},
		Cache:  CacheConfig{Backend: "file", RedisAddr: "localhost:6379"},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads the configuration file at path, layered over the defaults. A
// missing file is not an error; the defaults apply. The ANTHROPIC_API_KEY
// environment variable overrides the file's API key either way.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults only.
		case err != nil:
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config file")
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config file")
			}
		}
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.API.Key = key
	}
	return cfg, nil
}

// DefaultPath returns the standard config file location
// (~/.config/carecard/config.toml, honoring XDG_CONFIG_HOME).
func DefaultPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", appName+".toml")
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// CacheDir returns the response cache directory, honoring XDG_CACHE_HOME.
func CacheDir() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+appName+"-cache")
	}
	return filepath.Join(home, ".cache", appName)
}

// dataDir returns the data directory, honoring XDG_DATA_HOME.
func dataDir() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", appName)
}
