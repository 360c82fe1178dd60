// Package scorer turns a lead into a 0-100 score and a priority tier, either
// by deterministic rules or by a Claude classifier with a rule-based fallback.
package scorer

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/kindseek/leadscout/internal/model"
)

// CapacityStep awards Points to any capacity at or above Min.
type CapacityStep struct {
	Min    int `yaml:"min"`
	Points int `yaml:"points"`
}

// CapacityRules scores facility size. Steps are evaluated top-down, first
// matching step wins; Unknown applies when capacity is missing.
type CapacityRules struct {
	Max     int            `yaml:"max"`
	Unknown int            `yaml:"unknown"`
	Steps   []CapacityStep `yaml:"steps"`
}

// LocationRules scores the region against the target-market table.
// Unlisted regions earn Floor.
type LocationRules struct {
	Max     int                              `yaml:"max"`
	Floor   int                              `yaml:"floor"`
	Regions map[model.Country]map[string]int `yaml:"regions"`
}

// StageRules scores the licensing stage from a fixed lookup.
type StageRules struct {
	Max    int                 `yaml:"max"`
	Points map[model.Stage]int `yaml:"points"`
}

// BonusRules lists the additive increments for auxiliary signals. The grand
// total is clamped to 100 after bonuses.
type BonusRules struct {
	Phone     int      `yaml:"phone"`
	Email     int      `yaml:"email"`
	SourceURL int      `yaml:"source_url"`
	Keyword   int      `yaml:"keyword"`
	Keywords  []string `yaml:"keywords"`
}

// TierThresholds are the inclusive lower bounds of each tier above low.
type TierThresholds struct {
	Critical int `yaml:"critical"`
	High     int `yaml:"high"`
	Medium   int `yaml:"medium"`
}

// Ruleset is the complete scoring configuration. A partially valid ruleset
// is a startup error; the engine never scores with one.
type Ruleset struct {
	Capacity CapacityRules  `yaml:"capacity"`
	Location LocationRules  `yaml:"location"`
	Stage    StageRules     `yaml:"stage"`
	Bonus    BonusRules     `yaml:"bonus"`
	Tiers    TierThresholds `yaml:"tiers"`
}

// DefaultRuleset returns the stock ruleset: 30 capacity + 40 location +
// 30 stage, small bonuses, 90/85/70 tier cuts.
func DefaultRuleset() Ruleset {
	return Ruleset{
		Capacity: CapacityRules{
			Max:     30,
			Unknown: 15,
			Steps: []CapacityStep{
				{Min: 80, Points: 30},
				{Min: 60, Points: 25},
				{Min: 40, Points: 20},
				{Min: 20, Points: 15},
				{Min: 0, Points: 10},
			},
		},
		Location: LocationRules{
			Max:   40,
			Floor: 20,
			Regions: map[model.Country]map[string]int{
				model.CountryCA: {
					"ontario":          40,
					"british columbia": 40,
					"quebec":           35,
					"alberta":          35,
					"manitoba":         30,
					"nova scotia":      30,
					"saskatchewan":     25,
					"new brunswick":    25,
				},
				model.CountryAU: {
					"new south wales":              40,
					"victoria":                     40,
					"queensland":                   35,
					"western australia":            35,
					"south australia":              30,
					"australian capital territory": 30,
					"tasmania":                     25,
					"northern territory":           25,
				},
			},
		},
		Stage: StageRules{
			Max: 30,
			Points: map[model.Stage]int{
				model.StageNewLicense: 30,
				model.StageChange:     20,
				model.StageUnknown:    20,
				model.StageRenewal:    15,
			},
		},
		Bonus: BonusRules{
			Phone:     3,
			Email:     3,
			SourceURL: 2,
			Keyword:   5,
			Keywords:  []string{"government", "public", "municipal", "school", "community"},
		},
		Tiers: TierThresholds{Critical: 90, High: 85, Medium: 70},
	}
}

// Load reads a ruleset YAML over the defaults, so a partial file only
// overrides what it names. The result is validated.
func Load(path string) (Ruleset, error) {
	rs := DefaultRuleset()
	if path == "" {
		return rs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rs, eris.Wrapf(err, "scorer: read ruleset %s", path)
	}
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return rs, eris.Wrap(err, "scorer: parse ruleset")
	}
	if err := rs.Validate(); err != nil {
		return rs, err
	}
	return rs, nil
}

// Validate rejects rulesets the engine must not run with.
func (r Ruleset) Validate() error {
	if len(r.Capacity.Steps) == 0 {
		return eris.New("scorer: capacity steps empty")
	}
	for _, s := range r.Capacity.Steps {
		if s.Points < 0 || s.Points > r.Capacity.Max {
			return eris.Errorf("scorer: capacity step %d awards %d outside [0, %d]", s.Min, s.Points, r.Capacity.Max)
		}
	}
	if r.Capacity.Unknown <= 0 || r.Capacity.Unknown >= r.Capacity.Max {
		return eris.Errorf("scorer: unknown-capacity score %d must sit strictly inside (0, %d)", r.Capacity.Unknown, r.Capacity.Max)
	}
	if r.Location.Floor < 0 || r.Location.Floor > r.Location.Max {
		return eris.Errorf("scorer: location floor %d outside [0, %d]", r.Location.Floor, r.Location.Max)
	}
	for country, regions := range r.Location.Regions {
		for region, pts := range regions {
			if pts < 0 || pts > r.Location.Max {
				return eris.Errorf("scorer: location %s/%s awards %d outside [0, %d]", country, region, pts, r.Location.Max)
			}
		}
	}
	if len(r.Stage.Points) == 0 {
		return eris.New("scorer: stage table empty")
	}
	for stage, pts := range r.Stage.Points {
		if pts < 0 || pts > r.Stage.Max {
			return eris.Errorf("scorer: stage %s awards %d outside [0, %d]", stage, pts, r.Stage.Max)
		}
	}
	if r.Tiers.Critical <= r.Tiers.High || r.Tiers.High <= r.Tiers.Medium {
		return eris.Errorf("scorer: tier thresholds must descend, got critical=%d high=%d medium=%d",
			r.Tiers.Critical, r.Tiers.High, r.Tiers.Medium)
	}
	if r.Tiers.Medium <= 0 || r.Tiers.Critical > 100 {
		return eris.New("scorer: tier thresholds outside (0, 100]")
	}
	return nil
}
