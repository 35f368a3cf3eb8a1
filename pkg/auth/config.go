package auth

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds bearer-token verification settings.
// When Enabled is false, the caller's identity is read from UserHeader,
// which is only suitable for local development behind a trusted proxy.
type Config struct {
	Enabled    bool     `toml:"enabled"`
	IssuerURL  string   `toml:"issuer_url"`
	JWKSURL    string   `toml:"jwks_url"`
	ClientID   string   `toml:"client_id"`
	Algorithms []string `toml:"algorithms"`
	UserHeader string   `toml:"user_header"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Enabled    string
	IssuerURL  string
	JWKSURL    string
	ClientID   string
	Algorithms string
	UserHeader string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites fields from overlay. Enabled always applies; string and
// slice fields only apply when set.
func (c *Config) Merge(overlay *Config) {
	c.Enabled = overlay.Enabled

	if overlay.IssuerURL != "" {
		c.IssuerURL = overlay.IssuerURL
	}
	if overlay.JWKSURL != "" {
		c.JWKSURL = overlay.JWKSURL
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
	if overlay.Algorithms != nil {
		c.Algorithms = overlay.Algorithms
	}
	if overlay.UserHeader != "" {
		c.UserHeader = overlay.UserHeader
	}
}

func (c *Config) loadDefaults() {
	if len(c.Algorithms) == 0 {
		c.Algorithms = []string{"RS256"}
	}
	if c.UserHeader == "" {
		c.UserHeader = "X-User-ID"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Enabled != "" {
		if v := os.Getenv(env.Enabled); v != "" {
			if enabled, err := strconv.ParseBool(v); err == nil {
				c.Enabled = enabled
			}
		}
	}
	if env.IssuerURL != "" {
		if v := os.Getenv(env.IssuerURL); v != "" {
			c.IssuerURL = v
		}
	}
	if env.JWKSURL != "" {
		if v := os.Getenv(env.JWKSURL); v != "" {
			c.JWKSURL = v
		}
	}
	if env.ClientID != "" {
		if v := os.Getenv(env.ClientID); v != "" {
			c.ClientID = v
		}
	}
	if env.Algorithms != "" {
		if v := os.Getenv(env.Algorithms); v != "" {
			algs := strings.Split(v, ",")
			c.Algorithms = make([]string, 0, len(algs))
			for _, alg := range algs {
				if trimmed := strings.TrimSpace(alg); trimmed != "" {
					c.Algorithms = append(c.Algorithms, trimmed)
				}
			}
		}
	}
	if env.UserHeader != "" {
		if v := os.Getenv(env.UserHeader); v != "" {
			c.UserHeader = v
		}
	}
}

func (c *Config) validate() error {
	if !c.Enabled {
		return nil
	}
	if c.IssuerURL == "" {
		return fmt.Errorf("issuer_url required when auth is enabled")
	}
	if c.JWKSURL == "" {
		return fmt.Errorf("jwks_url required when auth is enabled")
	}
	if c.ClientID == "" {
		return fmt.Errorf("client_id required when auth is enabled")
	}
	return nil
}
