package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/directive/pkg/formatting"
	"github.com/JaimeStill/directive/pkg/middleware"
	"github.com/JaimeStill/directive/pkg/openapi"
	"github.com/JaimeStill/directive/pkg/pagination"
)

const defaultMaxBodySize = 1024 * 1024

var corsEnv = &middleware.CORSEnv{
	Enabled:          "DIRECTIVE_CORS_ENABLED",
	Origins:          "DIRECTIVE_CORS_ORIGINS",
	AllowedMethods:   "DIRECTIVE_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "DIRECTIVE_CORS_ALLOWED_HEADERS",
	AllowCredentials: "DIRECTIVE_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "DIRECTIVE_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "DIRECTIVE_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "DIRECTIVE_PAGINATION_MAX_PAGE_SIZE",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "DIRECTIVE_OPENAPI_TITLE",
	Description: "DIRECTIVE_OPENAPI_DESCRIPTION",
}

var rateLimitEnv = &middleware.RateLimitEnv{
	Enabled:           "DIRECTIVE_RATE_LIMIT_ENABLED",
	RequestsPerSecond: "DIRECTIVE_RATE_LIMIT_REQUESTS_PER_SECOND",
	Burst:             "DIRECTIVE_RATE_LIMIT_BURST",
}

// APIConfig holds API routing, request limits, CORS, OpenAPI metadata,
// pagination, and rate limit settings.
type APIConfig struct {
	BasePath    string                     `toml:"base_path"`
	MaxBodySize string                     `toml:"max_body_size"`
	CORS        middleware.CORSConfig      `toml:"cors"`
	OpenAPI     openapi.Config             `toml:"openapi"`
	Pagination  pagination.Config          `toml:"pagination"`
	RateLimit   middleware.RateLimitConfig `toml:"rate_limit"`
}

// MaxBodySizeBytes returns MaxBodySize in bytes, falling back to 1MB when
// the value cannot be parsed.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return defaultMaxBodySize
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.RateLimit.Finalize(rateLimitEnv); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}

	c.CORS.Merge(&overlay.CORS)
	c.OpenAPI.Merge(&overlay.OpenAPI)
	c.Pagination.Merge(&overlay.Pagination)
	c.RateLimit.Merge(&overlay.RateLimit)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("DIRECTIVE_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("DIRECTIVE_API_MAX_BODY_SIZE"); v != "" {
		c.MaxBodySize = v
	}
}
