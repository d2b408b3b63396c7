package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the mediadex API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Cache    CacheConfig    `yaml:"cache"`
	Search   SearchConfig   `yaml:"search"`
	Catalogs CatalogsConfig `yaml:"catalogs"`
	Debounce DebounceConfig `yaml:"debounce"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // memory, redis (default: memory)
	TTLSec           int      `yaml:"ttl_sec"`
	Capacity         int      `yaml:"capacity"`
	SweepIntervalSec int      `yaml:"sweep_interval_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
	Addrs            []string `yaml:"addrs"` // redis driver only
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
}

// SearchConfig holds result list and fan-out settings.
type SearchConfig struct {
	DefaultLimit  int            `yaml:"default_limit"`
	MaxLimit      int            `yaml:"max_limit"`
	MaxPerCatalog int            `yaml:"max_per_catalog"`
	PrefixSize    int            `yaml:"prefix_size"`
	CatalogQuota  int            `yaml:"catalog_quota"`
	DeadlinesMs   map[string]int `yaml:"deadlines_ms"` // per catalog tag
}

// DebounceConfig holds the keystroke debounce delay tiers.
type DebounceConfig struct {
	ShortMs  int `yaml:"short_ms"`  // queries of 1-2 chars
	MediumMs int `yaml:"medium_ms"` // 3-4 chars
	LongMs   int `yaml:"long_ms"`   // 5+ chars
}

// CatalogsConfig holds the per-catalog upstream settings.
type CatalogsConfig struct {
	Film  CatalogConfig `yaml:"film"`
	Book  CatalogConfig `yaml:"book"`
	Game  CatalogConfig `yaml:"game"`
	Music CatalogConfig `yaml:"music"`
}

// CatalogConfig holds one upstream catalog API's settings.
type CatalogConfig struct {
	BaseURL      string  `yaml:"base_url"`
	APIKey       string  `yaml:"api_key"`
	ImageBaseURL string  `yaml:"image_base_url"`
	TimeoutSec   int     `yaml:"timeout_sec"`
	RateLimitRPS float64 `yaml:"rate_limit_rps"` // 0 = unlimited
	Disabled     bool    `yaml:"disabled"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "memory"
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 600
	}
	if c.Cache.Capacity <= 0 {
		c.Cache.Capacity = 1000
	}
	if c.Cache.SweepIntervalSec <= 0 {
		c.Cache.SweepIntervalSec = 300
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "mediadex:search:"
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 20
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = 50
	}
	if c.Search.MaxPerCatalog <= 0 {
		c.Search.MaxPerCatalog = 25
	}
	if c.Search.PrefixSize <= 0 {
		c.Search.PrefixSize = 12
	}
	if c.Search.CatalogQuota <= 0 {
		c.Search.CatalogQuota = 3
	}
	if c.Debounce.ShortMs <= 0 {
		c.Debounce.ShortMs = 500
	}
	if c.Debounce.MediumMs <= 0 {
		c.Debounce.MediumMs = 300
	}
	if c.Debounce.LongMs <= 0 {
		c.Debounce.LongMs = 200
	}
	for _, cc := range []*CatalogConfig{
		&c.Catalogs.Film, &c.Catalogs.Book, &c.Catalogs.Game, &c.Catalogs.Music,
	} {
		if cc.TimeoutSec <= 0 {
			cc.TimeoutSec = 5
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.driver must be \"memory\" or \"redis\", got %q", c.Cache.Driver)
	}
	if c.Cache.Driver == "redis" && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required for the redis driver")
	}
	if c.Search.MaxLimit < c.Search.DefaultLimit {
		return fmt.Errorf("search.max_limit %d is below search.default_limit %d",
			c.Search.MaxLimit, c.Search.DefaultLimit)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
