package model

import (
	"strings"
	"time"
)

// Country identifies the jurisdiction a lead was sourced from.
type Country string

const (
	CountryCA Country = "CA"
	CountryAU Country = "AU"
)

// Stage describes the licensing stage of a facility.
type Stage string

const (
	StageNewLicense Stage = "new_license"
	StageRenewal    Stage = "renewal"
	StageChange     Stage = "change"
	StageUnknown    Stage = "unknown"
)

// Status is the human-managed follow-up state of a tracked lead.
type Status string

const (
	StatusUncontacted Status = "uncontacted"
	StatusContacted   Status = "contacted"
	StatusQuoted      Status = "quoted"
	StatusWon         Status = "won"
	StatusInvalid     Status = "invalid"
)

// Priority is the four-level urgency tier derived from the score.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank orders priorities low to high for monotonicity checks and sorting.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// Label returns the human-facing form used in spreadsheets and alerts.
func (p Priority) Label() string {
	if p == "" {
		return ""
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}

// Decision classifies what the deduplicator decided for one incoming lead.
type Decision string

const (
	DecisionNew              Decision = "new"
	DecisionUpdate           Decision = "update"
	DecisionDuplicateSkipped Decision = "duplicate_skipped"
)

// RawLead is the normalized record emitted by every source adapter.
type RawLead struct {
	SourceID      string    `json:"source_id,omitempty"`
	LicenseNumber string    `json:"license_number,omitempty"`
	Name          string    `json:"name"`
	FullAddress   string    `json:"full_address"`
	City          string    `json:"city,omitempty"`
	Region        string    `json:"region,omitempty"`
	Country       Country   `json:"country"`
	Capacity      *int      `json:"capacity,omitempty"`
	Stage         Stage     `json:"stage"`
	ContactPhone  string    `json:"contact_phone,omitempty"`
	ContactEmail  string    `json:"contact_email,omitempty"`
	SourceName    string    `json:"source_name"`
	SourceURL     string    `json:"source_url,omitempty"`
	DiscoveredAt  time.Time `json:"discovered_at"`
}

// Validate rejects leads that carry neither a name nor an address. Everything
// else is matchable by at least one dedup rule, so it is allowed through.
func (l RawLead) Validate() error {
	if strings.TrimSpace(l.Name) == "" && strings.TrimSpace(l.FullAddress) == "" {
		return &ValidationError{Reason: "lead has neither name nor address"}
	}
	return nil
}

// ValidationError marks a RawLead rejected before deduplication. It is
// counted, never fatal to a batch.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid lead: " + e.Reason
}

// KnownLead is a lead already persisted by the tracker. The engine reads a
// snapshot at batch start and never mutates it in place.
type KnownLead struct {
	RawLead

	ID          string    `json:"id"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	Score       int       `json:"score"`
	Owner       string    `json:"owner,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
	Notes       string    `json:"notes,omitempty"`
}

// ProcessedLead is the engine's output unit: one per valid input RawLead.
type ProcessedLead struct {
	RawLead

	Score           int      `json:"score"`
	Priority        Priority `json:"priority"`
	Decision        Decision `json:"decision"`
	MatchedID       string   `json:"matched_id,omitempty"` // KnownLead.ID when Decision is update
	ScoringMethod   string   `json:"scoring_method,omitempty"`
	ScoringDegraded bool     `json:"ai_scoring_degraded,omitempty"`
	Rationale       string   `json:"rationale,omitempty"`
}
