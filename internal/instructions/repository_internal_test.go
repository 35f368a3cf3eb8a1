package instructions

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeRow struct {
	values []any
}

func (r fakeRow) Scan(dest ...any) error {
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

func rowWithHints(hints []byte) fakeRow {
	now := time.Now()
	return fakeRow{values: []any{
		uuid.New(),
		"user-1",
		"Be brief",
		5,
		CategoryCommunication,
		true,
		hints,
		3,
		&now,
		now,
		now,
	}}
}

func TestScanInstructionHints(t *testing.T) {
	t.Run("decodes hints", func(t *testing.T) {
		inst, err := scanInstruction(rowWithHints([]byte(`{"topics":["billing"],"min_confidence":0.5}`)))
		if err != nil {
			t.Fatalf("scan: %v", err)
		}
		if inst.HintsErr != nil {
			t.Fatalf("HintsErr = %v, want nil", inst.HintsErr)
		}
		if inst.ContextHints == nil || len(inst.ContextHints.Topics) != 1 {
			t.Fatalf("ContextHints = %+v, want one topic", inst.ContextHints)
		}
		if inst.ContextHints.MinConfidence == nil || *inst.ContextHints.MinConfidence != 0.5 {
			t.Errorf("MinConfidence = %v, want 0.5", inst.ContextHints.MinConfidence)
		}
	})

	t.Run("null hints mean no constraint", func(t *testing.T) {
		for _, raw := range [][]byte{nil, []byte("null")} {
			inst, err := scanInstruction(rowWithHints(raw))
			if err != nil {
				t.Fatalf("scan: %v", err)
			}
			if inst.ContextHints != nil || inst.HintsErr != nil {
				t.Errorf("raw %q: hints = %+v, err = %v", raw, inst.ContextHints, inst.HintsErr)
			}
		}
	})

	t.Run("undecodable hints keep the record", func(t *testing.T) {
		inst, err := scanInstruction(rowWithHints([]byte(`{"topics":"billing"}`)))
		if err != nil {
			t.Fatalf("scan should not fail on bad hints: %v", err)
		}
		if inst.HintsErr == nil {
			t.Fatal("HintsErr = nil, want decode error")
		}
		if inst.ContextHints != nil {
			t.Errorf("ContextHints = %+v, want nil", inst.ContextHints)
		}
		if inst.Text != "Be brief" {
			t.Errorf("Text = %q, want record fields intact", inst.Text)
		}
	})
}

func TestValidate(t *testing.T) {
	limits := Limits{MaxTextLength: 10, MaxEnabled: 50}
	half := 0.5
	over := 1.5

	tests := []struct {
		name     string
		text     string
		priority int
		category Category
		hints    *ContextHints
		want     error
	}{
		{"valid", "Be brief", 5, CategoryBehavior, nil, nil},
		{"valid hints", "Be brief", 10, CategorySecurity, &ContextHints{MinConfidence: &half}, nil},
		{"empty text", "", 5, CategoryBehavior, nil, ErrInvalidText},
		{"text too long", strings.Repeat("a", 11), 5, CategoryBehavior, nil, ErrInvalidText},
		{"multibyte text counts runes", strings.Repeat("é", 10), 5, CategoryBehavior, nil, nil},
		{"priority low", "x", 0, CategoryBehavior, nil, ErrInvalidPriority},
		{"priority high", "x", 11, CategoryBehavior, nil, ErrInvalidPriority},
		{"unknown category", "x", 5, Category("other"), nil, ErrInvalidCategory},
		{"confidence out of range", "x", 5, CategoryBehavior, &ContextHints{MinConfidence: &over}, ErrInvalidHints},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(tt.text, tt.priority, tt.category, tt.hints, limits)
			if !errors.Is(err, tt.want) {
				t.Errorf("validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreateCommandNormalize(t *testing.T) {
	cmd := CreateCommand{Text: "  Be brief  ", Category: CategoryBehavior}
	cmd.normalize()

	if cmd.Text != "Be brief" {
		t.Errorf("Text = %q, want trimmed", cmd.Text)
	}
	if cmd.Priority != defaultPriority {
		t.Errorf("Priority = %d, want %d", cmd.Priority, defaultPriority)
	}
	if cmd.Enabled == nil || !*cmd.Enabled {
		t.Errorf("Enabled = %v, want true", cmd.Enabled)
	}

	disabled := false
	cmd = CreateCommand{Text: "x", Priority: 2, Enabled: &disabled}
	cmd.normalize()
	if cmd.Priority != 2 || *cmd.Enabled {
		t.Errorf("explicit values overwritten: %+v", cmd)
	}
}

func TestEncodeHints(t *testing.T) {
	data, err := encodeHints(nil)
	if err != nil || string(data) != "{}" {
		t.Errorf("encodeHints(nil) = (%s, %v), want {}", data, err)
	}

	data, err = encodeHints(&ContextHints{Keywords: []string{"deploy"}})
	if err != nil {
		t.Fatalf("encodeHints: %v", err)
	}
	if string(data) != `{"keywords":["deploy"]}` {
		t.Errorf("encodeHints = %s", data)
	}
}
