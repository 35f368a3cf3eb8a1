package config

import (
	"fmt"
	"os"
	"time"

	"github.com/JaimeStill/directive/pkg/auth"
	"github.com/JaimeStill/directive/pkg/cache"
	"github.com/JaimeStill/directive/pkg/database"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvDirectiveEnv             = "DIRECTIVE_ENV"
	EnvDirectiveShutdownTimeout = "DIRECTIVE_SHUTDOWN_TIMEOUT"
	EnvDirectiveVersion         = "DIRECTIVE_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "DIRECTIVE_DB_HOST",
	Port:            "DIRECTIVE_DB_PORT",
	Name:            "DIRECTIVE_DB_NAME",
	User:            "DIRECTIVE_DB_USER",
	Password:        "DIRECTIVE_DB_PASSWORD",
	SSLMode:         "DIRECTIVE_DB_SSL_MODE",
	MaxOpenConns:    "DIRECTIVE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "DIRECTIVE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "DIRECTIVE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "DIRECTIVE_DB_CONN_TIMEOUT",
}

var cacheEnv = &cache.Env{
	Addr:        "DIRECTIVE_CACHE_ADDR",
	Password:    "DIRECTIVE_CACHE_PASSWORD",
	DB:          "DIRECTIVE_CACHE_DB",
	KeyPrefix:   "DIRECTIVE_CACHE_KEY_PREFIX",
	DialTimeout: "DIRECTIVE_CACHE_DIAL_TIMEOUT",
}

var authEnv = &auth.Env{
	Enabled:    "DIRECTIVE_AUTH_ENABLED",
	IssuerURL:  "DIRECTIVE_AUTH_ISSUER_URL",
	JWKSURL:    "DIRECTIVE_AUTH_JWKS_URL",
	ClientID:   "DIRECTIVE_AUTH_CLIENT_ID",
	Algorithms: "DIRECTIVE_AUTH_ALGORITHMS",
	UserHeader: "DIRECTIVE_AUTH_USER_HEADER",
}

// Config is the root configuration for the Directive service.
type Config struct {
	Server          ServerConfig       `toml:"server"`
	Database        database.Config    `toml:"database"`
	Cache           cache.Config       `toml:"cache"`
	Auth            auth.Config        `toml:"auth"`
	API             APIConfig          `toml:"api"`
	Instructions    InstructionsConfig `toml:"instructions"`
	ShutdownTimeout string             `toml:"shutdown_timeout"`
	Version         string             `toml:"version"`
}

// Env returns the DIRECTIVE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvDirectiveEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Cache.Merge(&overlay.Cache)
	c.Auth.Merge(&overlay.Auth)
	c.API.Merge(&overlay.API)
	c.Instructions.Merge(&overlay.Instructions)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Cache.Finalize(cacheEnv); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Instructions.Finalize(); err != nil {
		return fmt.Errorf("instructions: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvDirectiveShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvDirectiveVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvDirectiveEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
