package lexicon

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a table from a YAML file. An empty path or a missing file
// yields the default table.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}

	t, err := loadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return t, err
}

func loadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	return Parse(data)
}

// Parse decodes, normalizes, and validates a YAML table.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}

	t.Normalize()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}
