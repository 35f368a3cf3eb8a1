package instructions

import (
	"encoding/json"
	"slices"
)

// Category groups standing instructions by the kind of behavior they steer.
// Security and workflow instructions are gated on matching context flags.
type Category string

// Valid instruction categories.
const (
	CategoryBehavior      Category = "behavior"
	CategoryCommunication Category = "communication"
	CategoryDecision      Category = "decision"
	CategorySecurity      Category = "security"
	CategoryWorkflow      Category = "workflow"
)

var categories = []Category{
	CategoryBehavior,
	CategoryCommunication,
	CategoryDecision,
	CategorySecurity,
	CategoryWorkflow,
}

// Categories returns the list of valid instruction categories.
func Categories() []Category {
	return categories
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return slices.Contains(categories, c)
}

// UnmarshalJSON validates that the decoded string is a known category value.
func (c *Category) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v := Category(raw)
	if !v.Valid() {
		return ErrInvalidCategory
	}
	*c = v
	return nil
}

// ParseCategory validates a string as a known instruction category.
// Returns ErrInvalidCategory if the value is not recognized.
func ParseCategory(s string) (Category, error) {
	v := Category(s)
	if !v.Valid() {
		return "", ErrInvalidCategory
	}
	return v, nil
}
