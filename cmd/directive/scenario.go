package main

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/JaimeStill/directive/internal/evaluation"
	"github.com/JaimeStill/directive/internal/instructions"
)

// scenarioNamespace derives stable instruction ids from scenario labels.
var scenarioNamespace = uuid.MustParse("6f1c2b7e-3d4a-4c55-9a8e-2f0b7d1e9c33")

var (
	errNoInstructions = errors.New("scenario has no instructions")
	errDuplicateLabel = errors.New("duplicate instruction id")
	errUnknownLabel   = errors.New("expectation references unknown instruction id")
)

// Scenario is one offline evaluation case.
type Scenario struct {
	Name         string                `yaml:"name"`
	Now          *time.Time            `yaml:"now"`
	Context      evaluation.Context    `yaml:"context"`
	Instructions []scenarioInstruction `yaml:"instructions"`
	Expect       expectation           `yaml:"expect"`
}

type scenarioInstruction struct {
	ID         string         `yaml:"id"`
	Text       string         `yaml:"text"`
	Priority   int            `yaml:"priority"`
	Category   string         `yaml:"category"`
	Enabled    *bool          `yaml:"enabled"`
	UsageCount int            `yaml:"usage_count"`
	LastUsedAt *time.Time     `yaml:"last_used_at"`
	Hints      *scenarioHints `yaml:"context_hints"`
}

type scenarioHints struct {
	Topics        []string `yaml:"topics"`
	AgentModes    []string `yaml:"agent_modes"`
	MinConfidence *float64 `yaml:"min_confidence"`
	Keywords      []string `yaml:"keywords"`
	ExcludeTopics []string `yaml:"exclude_topics"`
}

// expectation lists what the engine should produce. Active is the ordered
// list of instruction labels; a nil list is not checked.
type expectation struct {
	Active    []string          `yaml:"active"`
	Conflicts []string          `yaml:"conflicts"`
	Reasons   map[string]string `yaml:"reasons"`
}

// Report is the outcome of one scenario.
type Report struct {
	File     string   `json:"file"`
	Name     string   `json:"name"`
	Passed   bool     `json:"passed"`
	Failures []string `json:"failures,omitempty"`
	Active   []string `json:"active"`
	Conflict []string `json:"conflicts"`
}

func loadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	if len(s.Instructions) == 0 {
		return nil, fmt.Errorf("%s: %w", path, errNoInstructions)
	}
	return &s, nil
}

// build converts the scenario's instructions into engine input and returns
// the id to label mapping used for reporting.
func (s *Scenario) build() ([]instructions.Instruction, map[uuid.UUID]string, error) {
	insts := make([]instructions.Instruction, 0, len(s.Instructions))
	labels := make(map[uuid.UUID]string, len(s.Instructions))

	for i, si := range s.Instructions {
		label := si.ID
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}

		category, err := instructions.ParseCategory(si.Category)
		if err != nil {
			return nil, nil, fmt.Errorf("instruction %s: %w", label, err)
		}

		id := uuid.NewSHA1(scenarioNamespace, []byte(label))
		if _, ok := labels[id]; ok {
			return nil, nil, fmt.Errorf("%w: %s", errDuplicateLabel, label)
		}
		labels[id] = label

		priority := si.Priority
		if priority == 0 {
			priority = 5
		}
		enabled := si.Enabled == nil || *si.Enabled

		inst := instructions.Instruction{
			ID:         id,
			UserID:     "scenario",
			Text:       si.Text,
			Priority:   priority,
			Category:   category,
			Enabled:    enabled,
			UsageCount: si.UsageCount,
			LastUsedAt: si.LastUsedAt,
		}
		if h := si.Hints; h != nil {
			inst.ContextHints = &instructions.ContextHints{
				Topics:        h.Topics,
				AgentModes:    h.AgentModes,
				MinConfidence: h.MinConfidence,
				Keywords:      h.Keywords,
				ExcludeTopics: h.ExcludeTopics,
			}
		}
		insts = append(insts, inst)
	}

	known := make(map[string]bool, len(labels))
	for _, l := range labels {
		known[l] = true
	}
	for _, label := range s.Expect.Active {
		if !known[label] {
			return nil, nil, fmt.Errorf("%w: %s", errUnknownLabel, label)
		}
	}
	for label := range s.Expect.Reasons {
		if !known[label] {
			return nil, nil, fmt.Errorf("%w: %s", errUnknownLabel, label)
		}
	}

	return insts, labels, nil
}

// run evaluates the scenario and compares the result with its expectations.
func (s *Scenario) run(engine *evaluation.Engine, file string, now time.Time) (Report, error) {
	insts, labels, err := s.build()
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", file, err)
	}
	if s.Now != nil {
		now = *s.Now
	}

	result := engine.Evaluate(insts, s.Context, now)

	report := Report{
		File:     file,
		Name:     s.Name,
		Active:   make([]string, 0, len(result.ActiveInstructions)),
		Conflict: make([]string, 0, len(result.Conflicts)),
	}
	reasons := make(map[string]string, len(result.ActiveInstructions))
	for _, a := range result.ActiveInstructions {
		label := labels[a.Instruction.ID]
		report.Active = append(report.Active, label)
		reasons[label] = a.ApplicationReason
	}
	for _, c := range result.Conflicts {
		report.Conflict = append(report.Conflict, string(c.ConflictType))
	}

	if want := s.Expect.Active; want != nil && !slices.Equal(want, report.Active) {
		report.Failures = append(report.Failures, fmt.Sprintf(
			"active = [%s], want [%s]",
			strings.Join(report.Active, ", "), strings.Join(want, ", "),
		))
	}
	if want := s.Expect.Conflicts; want != nil {
		got := slices.Sorted(slices.Values(report.Conflict))
		if !slices.Equal(slices.Sorted(slices.Values(want)), got) {
			report.Failures = append(report.Failures, fmt.Sprintf(
				"conflicts = [%s], want [%s]",
				strings.Join(report.Conflict, ", "), strings.Join(want, ", "),
			))
		}
	}
	for _, label := range slices.Sorted(maps.Keys(s.Expect.Reasons)) {
		want := s.Expect.Reasons[label]
		got, ok := reasons[label]
		switch {
		case !ok:
			report.Failures = append(report.Failures, fmt.Sprintf("reason for %s: instruction not active", label))
		case !strings.Contains(got, want):
			report.Failures = append(report.Failures, fmt.Sprintf("reason for %s = %q, want it to contain %q", label, got, want))
		}
	}

	report.Passed = len(report.Failures) == 0
	return report, nil
}
