package model

import "time"

// SourceStatus records the outcome of one source adapter's fetch.
type SourceStatus struct {
	Name    string `json:"name"`
	Fetched int    `json:"fetched"`
	Error   string `json:"error,omitempty"`
}

// BatchSummary holds the structured counts one run produces for the
// notification sinks. The engine emits counts only, never formatted text.
type BatchSummary struct {
	RunID      string           `json:"run_id"`
	RanAt      time.Time        `json:"ran_at"`
	New        int              `json:"new"`
	Updated    int              `json:"updated"`
	Duplicates int              `json:"duplicates_skipped"`
	Rejected   int              `json:"rejected"`
	Degraded   int              `json:"ai_scoring_degraded"`
	ByPriority map[Priority]int `json:"by_priority"`
	Sources    []SourceStatus   `json:"sources"`
}

// NewBatchSummary returns a summary with the priority map initialized so
// every tier appears in the output even at zero.
func NewBatchSummary(runID string, ranAt time.Time) *BatchSummary {
	return &BatchSummary{
		RunID: runID,
		RanAt: ranAt,
		ByPriority: map[Priority]int{
			PriorityCritical: 0,
			PriorityHigh:     0,
			PriorityMedium:   0,
			PriorityLow:      0,
		},
	}
}

// Record tallies a processed lead into the summary.
func (s *BatchSummary) Record(lead ProcessedLead) {
	switch lead.Decision {
	case DecisionNew:
		s.New++
	case DecisionUpdate:
		s.Updated++
	case DecisionDuplicateSkipped:
		s.Duplicates++
	}
	if lead.Decision != DecisionDuplicateSkipped {
		s.ByPriority[lead.Priority]++
	}
	if lead.ScoringDegraded {
		s.Degraded++
	}
}

// Processed returns the number of leads that entered deduplication.
func (s *BatchSummary) Processed() int {
	return s.New + s.Updated + s.Duplicates
}
