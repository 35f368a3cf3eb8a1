package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvInstructionsMaxTextLength    = "DIRECTIVE_INSTRUCTIONS_MAX_TEXT_LENGTH"
	EnvInstructionsMaxEnabled       = "DIRECTIVE_INSTRUCTIONS_MAX_ENABLED"
	EnvInstructionsLexiconPath      = "DIRECTIVE_INSTRUCTIONS_LEXICON_PATH"
	EnvInstructionsLexiconWatch     = "DIRECTIVE_INSTRUCTIONS_LEXICON_WATCH"
	EnvInstructionsUsageTimeout     = "DIRECTIVE_INSTRUCTIONS_USAGE_TIMEOUT"
	EnvInstructionsUsageConcurrency = "DIRECTIVE_INSTRUCTIONS_USAGE_CONCURRENCY"
)

// InstructionsConfig holds standing instruction limits, the contradiction
// lexicon source, and usage recorder bounds.
type InstructionsConfig struct {
	MaxTextLength    int    `toml:"max_text_length"`
	MaxEnabled       int    `toml:"max_enabled"`
	LexiconPath      string `toml:"lexicon_path"`
	LexiconWatch     bool   `toml:"lexicon_watch"`
	UsageTimeout     string `toml:"usage_timeout"`
	UsageConcurrency int    `toml:"usage_concurrency"`
}

// UsageTimeoutDuration returns UsageTimeout as a time.Duration.
func (c *InstructionsConfig) UsageTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.UsageTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *InstructionsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites fields from overlay. LexiconWatch always applies; other
// fields only apply when non-zero.
func (c *InstructionsConfig) Merge(overlay *InstructionsConfig) {
	c.LexiconWatch = overlay.LexiconWatch

	if overlay.MaxTextLength != 0 {
		c.MaxTextLength = overlay.MaxTextLength
	}
	if overlay.MaxEnabled != 0 {
		c.MaxEnabled = overlay.MaxEnabled
	}
	if overlay.LexiconPath != "" {
		c.LexiconPath = overlay.LexiconPath
	}
	if overlay.UsageTimeout != "" {
		c.UsageTimeout = overlay.UsageTimeout
	}
	if overlay.UsageConcurrency != 0 {
		c.UsageConcurrency = overlay.UsageConcurrency
	}
}

func (c *InstructionsConfig) loadDefaults() {
	if c.MaxTextLength == 0 {
		c.MaxTextLength = 500
	}
	if c.MaxEnabled == 0 {
		c.MaxEnabled = 50
	}
	if c.UsageTimeout == "" {
		c.UsageTimeout = "5s"
	}
	if c.UsageConcurrency == 0 {
		c.UsageConcurrency = 16
	}
}

func (c *InstructionsConfig) loadEnv() {
	if v := os.Getenv(EnvInstructionsMaxTextLength); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxTextLength = n
		}
	}
	if v := os.Getenv(EnvInstructionsMaxEnabled); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxEnabled = n
		}
	}
	if v := os.Getenv(EnvInstructionsLexiconPath); v != "" {
		c.LexiconPath = v
	}
	if v := os.Getenv(EnvInstructionsLexiconWatch); v != "" {
		if watch, err := strconv.ParseBool(v); err == nil {
			c.LexiconWatch = watch
		}
	}
	if v := os.Getenv(EnvInstructionsUsageTimeout); v != "" {
		c.UsageTimeout = v
	}
	if v := os.Getenv(EnvInstructionsUsageConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.UsageConcurrency = n
		}
	}
}

func (c *InstructionsConfig) validate() error {
	if c.MaxTextLength < 1 {
		return fmt.Errorf("max_text_length must be positive")
	}
	if c.MaxEnabled < 1 {
		return fmt.Errorf("max_enabled must be positive")
	}
	if _, err := time.ParseDuration(c.UsageTimeout); err != nil {
		return fmt.Errorf("invalid usage_timeout: %w", err)
	}
	if c.UsageConcurrency < 1 {
		return fmt.Errorf("usage_concurrency must be positive")
	}
	if c.LexiconWatch && c.LexiconPath == "" {
		return fmt.Errorf("lexicon_watch requires lexicon_path")
	}
	return nil
}
