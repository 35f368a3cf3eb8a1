// Package instructions implements the standing instruction domain.
// It provides types, data access, and HTTP handlers for the persistent
// per-user directives that are evaluated on every conversation turn.
package instructions

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ContextHints narrows when an instruction applies. Every field is optional
// and an absent field places no constraint on relevance.
type ContextHints struct {
	Topics        []string `json:"topics,omitempty"`
	AgentModes    []string `json:"agent_modes,omitempty"`
	MinConfidence *float64 `json:"min_confidence,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	ExcludeTopics []string `json:"exclude_topics,omitempty"`
}

// Instruction is a persistent behavioral directive owned by a single user.
type Instruction struct {
	ID           uuid.UUID     `json:"id"`
	UserID       string        `json:"user_id"`
	Text         string        `json:"text"`
	Priority     int           `json:"priority"`
	Category     Category      `json:"category"`
	Enabled      bool          `json:"enabled"`
	ContextHints *ContextHints `json:"context_hints"`
	UsageCount   int           `json:"usage_count"`
	LastUsedAt   *time.Time    `json:"last_used_at"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	// HintsErr holds the decode failure of a stored context_hints value.
	// The record is still returned so one bad row does not fail a load.
	HintsErr error `json:"-"`
}

// CreateCommand carries the data needed to create a standing instruction.
// A zero Priority defaults to 5 and a nil Enabled defaults to true.
type CreateCommand struct {
	Text         string        `json:"text"`
	Priority     int           `json:"priority"`
	Category     Category      `json:"category"`
	Enabled      *bool         `json:"enabled"`
	ContextHints *ContextHints `json:"context_hints"`
}

// UpdateCommand carries the full replacement state of a standing instruction.
type UpdateCommand struct {
	Text         string        `json:"text"`
	Priority     int           `json:"priority"`
	Category     Category      `json:"category"`
	Enabled      bool          `json:"enabled"`
	ContextHints *ContextHints `json:"context_hints"`
}

// BulkCommand enables or disables a set of instructions in one operation.
type BulkCommand struct {
	IDs     []uuid.UUID `json:"ids"`
	Enabled bool        `json:"enabled"`
}

// BulkResult reports how many instructions a bulk operation changed.
type BulkResult struct {
	Updated int `json:"updated"`
}

// Limits bounds instruction content and the number of enabled instructions
// a single user may hold.
type Limits struct {
	MaxTextLength int
	MaxEnabled    int
}

const defaultPriority = 5

func (c *CreateCommand) normalize() {
	c.Text = strings.TrimSpace(c.Text)
	if c.Priority == 0 {
		c.Priority = defaultPriority
	}
	if c.Enabled == nil {
		enabled := true
		c.Enabled = &enabled
	}
}

func (c *UpdateCommand) normalize() {
	c.Text = strings.TrimSpace(c.Text)
}

func validate(text string, priority int, category Category, hints *ContextHints, limits Limits) error {
	n := utf8.RuneCountInString(text)
	if n == 0 || n > limits.MaxTextLength {
		return ErrInvalidText
	}
	if priority < 1 || priority > 10 {
		return ErrInvalidPriority
	}
	if !category.Valid() {
		return ErrInvalidCategory
	}
	if hints != nil && hints.MinConfidence != nil {
		if c := *hints.MinConfidence; c < 0 || c > 1 {
			return ErrInvalidHints
		}
	}
	return nil
}
