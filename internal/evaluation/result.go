package evaluation

import (
	"github.com/google/uuid"

	"github.com/JaimeStill/directive/internal/instructions"
)

// ConflictType names the rule that flagged an instruction pair.
type ConflictType string

const (
	ConflictDirectContradiction ConflictType = "direct_contradiction"
	ConflictPriority            ConflictType = "priority_conflict"
	ConflictSecurityWorkflow    ConflictType = "security_workflow_conflict"
)

// Severity ranks how disruptive a conflict is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Active is an instruction that applies to the current turn.
type Active struct {
	Instruction       instructions.Instruction `json:"instruction"`
	RelevanceScore    float64                  `json:"relevance_score"`
	ApplicationReason string                   `json:"application_reason"`
}

// InstructionRef identifies one side of a conflict.
type InstructionRef struct {
	ID       uuid.UUID             `json:"id"`
	Text     string                `json:"text"`
	Priority int                   `json:"priority"`
	Category instructions.Category `json:"category"`
}

// Conflict records a pair of active instructions whose combined application
// is contradictory or ambiguous. InstructionA always carries the lower id.
type Conflict struct {
	InstructionA         InstructionRef `json:"instruction_a"`
	InstructionB         InstructionRef `json:"instruction_b"`
	ConflictType         ConflictType   `json:"conflict_type"`
	Severity             Severity       `json:"severity"`
	ResolutionSuggestion string         `json:"resolution_suggestion"`
}

// Result is the outcome of evaluating a user's instructions against a context.
type Result struct {
	ActiveInstructions []Active   `json:"active_instructions"`
	Conflicts          []Conflict `json:"conflicts"`
	EvaluationTimeMS   float64    `json:"evaluation_time_ms"`
	TotalEvaluated     int        `json:"total_evaluated"`
	ConflictsDetected  int        `json:"conflicts_detected"`
	AppliedCount       int        `json:"applied_count"`
}

// ActiveIDs returns the ids of the active instructions in result order.
func (r *Result) ActiveIDs() []uuid.UUID {
	return idsOf(r.ActiveInstructions)
}

func idsOf(active []Active) []uuid.UUID {
	ids := make([]uuid.UUID, len(active))
	for i, a := range active {
		ids[i] = a.Instruction.ID
	}
	return ids
}

func refOf(inst instructions.Instruction) InstructionRef {
	return InstructionRef{
		ID:       inst.ID,
		Text:     inst.Text,
		Priority: inst.Priority,
		Category: inst.Category,
	}
}
