package scorer

import (
	"context"
	"strings"

	"github.com/kindseek/leadscout/internal/model"
)

// RuleScorer is the deterministic scorer: a pure function of the lead and
// the ruleset, no side effects, no network.
type RuleScorer struct {
	rs Ruleset
}

// NewRuleScorer creates a RuleScorer. The ruleset must already be validated.
func NewRuleScorer(rs Ruleset) *RuleScorer {
	return &RuleScorer{rs: rs}
}

// Evaluate computes the weighted sub-scores, adds bonuses and clamps the
// total into [0, 100]. It never returns an error.
func (s *RuleScorer) Evaluate(_ context.Context, lead model.RawLead) (Evaluation, error) {
	components := map[string]int{
		"capacity": s.scoreCapacity(lead.Capacity),
		"location": s.scoreLocation(lead.Country, lead.Region),
		"stage":    s.scoreStage(lead.Stage),
		"bonus":    s.scoreBonus(lead),
	}

	total := 0
	for _, v := range components {
		total += v
	}
	total = clamp(total, 0, 100)

	return Evaluation{
		Score:      total,
		Priority:   TierFor(total, s.rs.Tiers),
		Method:     MethodRules,
		Components: components,
	}, nil
}

// scoreCapacity walks the step table top-down. Missing capacity earns the
// conservative unknown score so absent data neither tanks nor inflates.
func (s *RuleScorer) scoreCapacity(capacity *int) int {
	if capacity == nil {
		return s.rs.Capacity.Unknown
	}
	for _, step := range s.rs.Capacity.Steps {
		if *capacity >= step.Min {
			return clamp(step.Points, 0, s.rs.Capacity.Max)
		}
	}
	return 0
}

// scoreLocation looks the region up in the country's desirability table.
// Region is the sole input; unlisted regions earn the floor.
func (s *RuleScorer) scoreLocation(country model.Country, region string) int {
	regions, ok := s.rs.Location.Regions[country]
	if !ok {
		return s.rs.Location.Floor
	}
	pts, ok := regions[strings.ToLower(strings.TrimSpace(region))]
	if !ok {
		return s.rs.Location.Floor
	}
	return clamp(pts, 0, s.rs.Location.Max)
}

func (s *RuleScorer) scoreStage(stage model.Stage) int {
	if stage == "" {
		stage = model.StageUnknown
	}
	pts, ok := s.rs.Stage.Points[stage]
	if !ok {
		pts = s.rs.Stage.Points[model.StageUnknown]
	}
	return clamp(pts, 0, s.rs.Stage.Max)
}

// scoreBonus adds small fixed increments for auxiliary positive signals.
func (s *RuleScorer) scoreBonus(lead model.RawLead) int {
	bonus := 0
	if strings.TrimSpace(lead.ContactPhone) != "" {
		bonus += s.rs.Bonus.Phone
	}
	if strings.TrimSpace(lead.ContactEmail) != "" {
		bonus += s.rs.Bonus.Email
	}
	if strings.TrimSpace(lead.SourceURL) != "" {
		bonus += s.rs.Bonus.SourceURL
	}
	if s.rs.Bonus.Keyword > 0 && matchesKeyword(lead.Name, s.rs.Bonus.Keywords) {
		bonus += s.rs.Bonus.Keyword
	}
	return bonus
}

// matchesKeyword reports whether any keyword appears in text, case-insensitive.
func matchesKeyword(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
