package instructions

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/JaimeStill/directive/pkg/query"
	"github.com/JaimeStill/directive/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "standing_instructions", "si").
	Project("id", "ID").
	Project("user_id", "UserID").
	Project("text", "Text").
	Project("priority", "Priority").
	Project("category", "Category").
	Project("enabled", "Enabled").
	Project("context_hints", "ContextHints").
	Project("usage_count", "UsageCount").
	Project("last_used_at", "LastUsedAt").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

const returning = `RETURNING id, user_id, text, priority, category, enabled,
		context_hints, usage_count, last_used_at, created_at, updated_at`

var defaultSort = []query.SortField{
	{Field: "Priority", Descending: true},
	{Field: "CreatedAt"},
}

// activeSort orders the evaluation load: priority, then usage, then age.
var activeSort = []query.SortField{
	{Field: "Priority", Descending: true},
	{Field: "UsageCount", Descending: true},
	{Field: "CreatedAt"},
}

// Filters contains optional filtering criteria for instruction queries.
// Nil fields are ignored. Category and Enabled use exact matching.
// Text uses case-insensitive contains matching.
type Filters struct {
	Category *Category `json:"category,omitempty"`
	Enabled  *bool     `json:"enabled,omitempty"`
	Text     *string   `json:"text,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Category", f.Category).
		WhereEquals("Enabled", f.Enabled).
		WhereContains("Text", f.Text)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if c := values.Get("category"); c != "" {
		category := Category(c)
		f.Category = &category
	}

	if e := values.Get("enabled"); e != "" {
		if v, err := strconv.ParseBool(e); err == nil {
			f.Enabled = &v
		}
	}

	if t := values.Get("text"); t != "" {
		f.Text = &t
	}

	return f
}

func encodeHints(h *ContextHints) ([]byte, error) {
	if h == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("marshal context_hints: %w", err)
	}
	return data, nil
}

func scanInstruction(s repository.Scanner) (Instruction, error) {
	var (
		inst  Instruction
		hints []byte
	)
	err := s.Scan(
		&inst.ID,
		&inst.UserID,
		&inst.Text,
		&inst.Priority,
		&inst.Category,
		&inst.Enabled,
		&hints,
		&inst.UsageCount,
		&inst.LastUsedAt,
		&inst.CreatedAt,
		&inst.UpdatedAt,
	)
	if err != nil {
		return inst, err
	}

	if len(hints) > 0 && string(hints) != "null" {
		var h ContextHints
		if err := json.Unmarshal(hints, &h); err != nil {
			inst.HintsErr = fmt.Errorf("decode context_hints: %w", err)
		} else {
			inst.ContextHints = &h
		}
	}

	return inst, nil
}
