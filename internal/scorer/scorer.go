package scorer

import (
	"context"

	"github.com/kindseek/leadscout/internal/model"
)

// Scoring method names surfaced on ProcessedLead.
const (
	MethodRules  = "rules"
	MethodClaude = "claude"
)

// Evaluation is the outcome of scoring one lead.
type Evaluation struct {
	Score      int
	Priority   model.Priority
	Method     string
	Degraded   bool           // AI path fell back to rules
	Rationale  string         // short reasoning, AI path only
	Components map[string]int // rule-based sub-scores for transparency
}

// Scorer is the pluggable scoring capability. Implementations must be safe
// for concurrent use; Evaluate never fails a batch — degraded outcomes are
// reflected in the Evaluation, not the error.
type Scorer interface {
	Evaluate(ctx context.Context, lead model.RawLead) (Evaluation, error)
}

// TierFor maps a final integer score to its priority tier. Boundaries are
// inclusive on the lower bound.
func TierFor(score int, t TierThresholds) model.Priority {
	switch {
	case score >= t.Critical:
		return model.PriorityCritical
	case score >= t.High:
		return model.PriorityHigh
	case score >= t.Medium:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
