// Package evaluation decides which standing instructions apply to a
// conversation turn, scores and explains them, and flags pairs that
// conflict. The Engine is pure apart from reading the current lexicon;
// the System binds it to the instruction store and the usage recorder.
package evaluation

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/JaimeStill/directive/internal/instructions"
	"github.com/JaimeStill/directive/pkg/lexicon"
)

const (
	priorityWeight = 0.6
	usageWeight    = 0.3
	recencyWeight  = 0.1

	usageSaturation = 10.0
	recencyWindow   = 7 * 24 * time.Hour

	priorityGap = 3
)

// Engine evaluates standing instructions against a conversation context.
type Engine struct {
	lexicon *lexicon.Holder
	logger  *slog.Logger
}

// NewEngine creates an Engine reading contradiction pairs from holder.
// A nil holder uses the built-in table.
func NewEngine(holder *lexicon.Holder, logger *slog.Logger) *Engine {
	if holder == nil {
		holder = lexicon.NewHolder(nil)
	}
	return &Engine{
		lexicon: holder,
		logger:  logger.With("system", "evaluation"),
	}
}

// IsRelevant reports whether inst applies to ctx. Disabled instructions
// never apply. Hints that failed to decode are treated as absent, so only
// the category gate applies.
func (e *Engine) IsRelevant(inst instructions.Instruction, ctx Context) bool {
	if !inst.Enabled {
		return false
	}

	h := inst.ContextHints
	if inst.HintsErr != nil {
		e.logger.Warn(
			"context hints unreadable, ignoring hints",
			"id", inst.ID,
			"error", inst.HintsErr,
		)
		h = nil
	}

	message := strings.ToLower(ctx.MessageContent)

	if h != nil {
		if terms := nonEmpty(h.Topics); len(terms) > 0 && len(matching(message, terms)) == 0 {
			return false
		}
		if modes := nonEmpty(h.AgentModes); len(modes) > 0 && !hasMode(modes, ctx.AgentMode) {
			return false
		}
		if h.MinConfidence != nil && ctx.Confidence < *h.MinConfidence {
			return false
		}
		if terms := nonEmpty(h.Keywords); len(terms) > 0 && len(matching(message, terms)) == 0 {
			return false
		}
		if terms := nonEmpty(h.ExcludeTopics); len(terms) > 0 && len(matching(message, terms)) > 0 {
			return false
		}
	}

	switch inst.Category {
	case instructions.CategorySecurity:
		return ctx.securityContext()
	case instructions.CategoryWorkflow:
		return ctx.workflowContext()
	}
	return true
}

// Score returns a relevance score in [0, 1] rounded to two decimals,
// weighted 60% priority, 30% usage and 10% recency of last use.
func (e *Engine) Score(inst instructions.Instruction, now time.Time) float64 {
	priority := float64(min(max(inst.Priority, 1), 10)) / 10
	usage := min(float64(max(inst.UsageCount, 0))/usageSaturation, 1)

	var recency float64
	if inst.LastUsedAt != nil {
		elapsed := max(now.Sub(*inst.LastUsedAt), 0)
		recency = max(0, 1-float64(elapsed)/float64(recencyWindow))
	}

	score := priority*priorityWeight + usage*usageWeight + recency*recencyWeight
	return math.Round(score*100) / 100
}

// Explain describes why inst applies to ctx. It re-derives the matches in
// filter order and falls back to "General applicability".
func (e *Engine) Explain(inst instructions.Instruction, ctx Context) string {
	message := strings.ToLower(ctx.MessageContent)
	var parts []string

	if h := inst.ContextHints; h != nil && inst.HintsErr == nil {
		if topics := matching(message, nonEmpty(h.Topics)); len(topics) > 0 {
			parts = append(parts, "Topic match: "+strings.Join(topics, ", "))
		}
		if modes := nonEmpty(h.AgentModes); len(modes) > 0 && hasMode(modes, ctx.AgentMode) {
			parts = append(parts, "Agent mode: "+ctx.AgentMode)
		}
		if keywords := matching(message, nonEmpty(h.Keywords)); len(keywords) > 0 {
			parts = append(parts, "Keyword match: "+strings.Join(keywords, ", "))
		}
	}

	if inst.Category == instructions.CategorySecurity && ctx.securityContext() {
		parts = append(parts, "Security context detected")
	}
	if inst.Category == instructions.CategoryWorkflow && ctx.workflowContext() {
		parts = append(parts, "Workflow context detected")
	}

	if len(parts) == 0 {
		return "General applicability"
	}
	return strings.Join(parts, "; ")
}

// DetectConflicts scans every unordered pair of active instructions and
// records at most one conflict per pair, the first matching rule winning.
func (e *Engine) DetectConflicts(active []instructions.Instruction) []Conflict {
	table := e.lexicon.Table()
	conflicts := make([]Conflict, 0)

	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			if c, ok := detect(table, active[i], active[j]); ok {
				conflicts = append(conflicts, c)
			}
		}
	}
	return conflicts
}

// Evaluate runs the filter, scorer, explanation and conflict stages over
// insts. EvaluationTimeMS is left for the caller to fill.
func (e *Engine) Evaluate(insts []instructions.Instruction, ctx Context, now time.Time) Result {
	active := e.Rank(insts, ctx, now)
	return newResult(len(insts), active, e.DetectConflicts(instructionsOf(active)))
}

// Rank filters insts to those relevant to ctx, scores them, sorts them by
// descending score (ties keep input order) and attaches their reasons.
func (e *Engine) Rank(insts []instructions.Instruction, ctx Context, now time.Time) []Active {
	active := make([]Active, 0)
	for _, inst := range insts {
		if !e.IsRelevant(inst, ctx) {
			continue
		}
		active = append(active, Active{
			Instruction:    inst,
			RelevanceScore: e.Score(inst, now),
		})
	}

	slices.SortStableFunc(active, func(a, b Active) int {
		switch {
		case a.RelevanceScore > b.RelevanceScore:
			return -1
		case a.RelevanceScore < b.RelevanceScore:
			return 1
		}
		return 0
	})

	for i := range active {
		active[i].ApplicationReason = e.Explain(active[i].Instruction, ctx)
	}
	return active
}

func instructionsOf(active []Active) []instructions.Instruction {
	out := make([]instructions.Instruction, len(active))
	for i := range active {
		out[i] = active[i].Instruction
	}
	return out
}

func newResult(total int, active []Active, conflicts []Conflict) Result {
	return Result{
		ActiveInstructions: active,
		Conflicts:          conflicts,
		TotalEvaluated:     total,
		ConflictsDetected:  len(conflicts),
		AppliedCount:       len(active),
	}
}

func detect(table *lexicon.Table, x, y instructions.Instruction) (Conflict, bool) {
	a, b := canonical(x, y)

	if pair, ok := table.Contradiction(a.Text, b.Text); ok {
		return Conflict{
			InstructionA: refOf(a),
			InstructionB: refOf(b),
			ConflictType: ConflictDirectContradiction,
			Severity:     SeverityHigh,
			ResolutionSuggestion: fmt.Sprintf(
				"Instructions use opposing terms (%s); raise the priority of the one that fits this context",
				pair,
			),
		}, true
	}

	if a.Category == b.Category && abs(a.Priority-b.Priority) > priorityGap {
		return Conflict{
			InstructionA: refOf(a),
			InstructionB: refOf(b),
			ConflictType: ConflictPriority,
			Severity:     SeverityMedium,
			ResolutionSuggestion: fmt.Sprintf(
				"Same-category instructions have distant priorities (%d vs %d); the higher priority instruction takes precedence",
				a.Priority, b.Priority,
			),
		}, true
	}

	if isSecurityWorkflow(a.Category, b.Category) {
		return Conflict{
			InstructionA:         refOf(a),
			InstructionB:         refOf(b),
			ConflictType:         ConflictSecurityWorkflow,
			Severity:             SeverityMedium,
			ResolutionSuggestion: "Security instruction takes precedence over the workflow instruction",
		}, true
	}

	return Conflict{}, false
}

// canonical orders a pair by id so the record does not depend on scan order.
func canonical(x, y instructions.Instruction) (instructions.Instruction, instructions.Instruction) {
	if bytes.Compare(x.ID[:], y.ID[:]) <= 0 {
		return x, y
	}
	return y, x
}

func isSecurityWorkflow(a, b instructions.Category) bool {
	return (a == instructions.CategorySecurity && b == instructions.CategoryWorkflow) ||
		(a == instructions.CategoryWorkflow && b == instructions.CategorySecurity)
}

// matching returns the terms that occur in message, which must already be
// lower-cased. Terms are returned as written.
func matching(message string, terms []string) []string {
	var out []string
	for _, t := range terms {
		if strings.Contains(message, strings.ToLower(t)) {
			out = append(out, t)
		}
	}
	return out
}

func hasMode(modes []string, mode string) bool {
	return slices.ContainsFunc(modes, func(m string) bool {
		return strings.EqualFold(m, mode)
	})
}

// nonEmpty drops blank entries so a hint list of only blanks places no
// constraint.
func nonEmpty(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
