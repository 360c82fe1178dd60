package dedup

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kindseek/leadscout/internal/model"
)

// Config holds the fuzzy-match thresholds. The defaults reflect observed
// behavior, not hard invariants, so they stay configurable.
type Config struct {
	AddressThreshold float64 `mapstructure:"address_threshold"`
	NameThreshold    float64 `mapstructure:"name_threshold"`
}

// DefaultConfig returns the stock thresholds: addresses must be near-equal,
// names only roughly so, and both are required for a fuzzy match.
func DefaultConfig() Config {
	return Config{AddressThreshold: 0.90, NameThreshold: 0.70}
}

// Validate rejects thresholds outside (0, 1].
func (c Config) Validate() error {
	if c.AddressThreshold <= 0 || c.AddressThreshold > 1 {
		return eris.Errorf("dedup: address threshold %.2f outside (0, 1]", c.AddressThreshold)
	}
	if c.NameThreshold <= 0 || c.NameThreshold > 1 {
		return eris.Errorf("dedup: name threshold %.2f outside (0, 1]", c.NameThreshold)
	}
	return nil
}

// MatchCounts breaks down how duplicates were detected, by rule.
type MatchCounts struct {
	License     int `json:"license"`
	NameAddress int `json:"name_address"`
	Fuzzy       int `json:"fuzzy"`
}

// Result is the outcome of deduplicating one batch. Leads holds exactly one
// ProcessedLead per input lead, in input order.
type Result struct {
	Leads   []model.ProcessedLead
	Matches MatchCounts
}

// Deduplicator assigns a new/update/duplicate decision to every incoming
// lead by matching it against the known-lead snapshot and against leads
// already accepted as new earlier in the same batch.
type Deduplicator struct {
	cfg Config
}

// New creates a Deduplicator. Callers validate cfg at startup.
func New(cfg Config) *Deduplicator {
	return &Deduplicator{cfg: cfg}
}

// candidate is a match target with its comparison keys precomputed.
type candidate struct {
	license  string // normalized, "" if absent
	nameKey  string
	addrKey  string
	nameSort string
	addrSort string
	scope    string // region + country, rule-3 partition
	recency  time.Time

	knownID string // set when the candidate is a KnownLead
	newIdx  int    // index into Result.Leads when the candidate is a batch NEW
}

// Deduplicate partitions batch into NEW, UPDATE and DUPLICATE_SKIPPED
// decisions. The batch must already be validated; output length equals
// input length. Known leads are read-only — decisions reference them by ID
// and persistence stays with the sink.
func (d *Deduplicator) Deduplicate(batch []model.RawLead, known []model.KnownLead) Result {
	res := Result{Leads: make([]model.ProcessedLead, 0, len(batch))}

	byLicense := make(map[string][]*candidate)
	byNameAddr := make(map[string][]*candidate)
	byScope := make(map[string][]*candidate)

	add := func(c *candidate) {
		if c.license != "" {
			byLicense[c.license] = append(byLicense[c.license], c)
		}
		if c.nameKey != "" || c.addrKey != "" {
			byNameAddr[c.nameKey+"\x00"+c.addrKey] = append(byNameAddr[c.nameKey+"\x00"+c.addrKey], c)
		}
		byScope[c.scope] = append(byScope[c.scope], c)
	}

	for i := range known {
		add(knownCandidate(&known[i]))
	}

	for _, lead := range batch {
		c := leadCandidate(lead)

		match, rule := d.findMatch(c, byLicense, byNameAddr, byScope)

		out := model.ProcessedLead{RawLead: lead}
		switch {
		case match == nil:
			out.Decision = model.DecisionNew
		case match.knownID != "":
			out.Decision = model.DecisionUpdate
			out.MatchedID = match.knownID
		default:
			out.Decision = model.DecisionDuplicateSkipped
			mergeGaps(&res.Leads[match.newIdx].RawLead, lead)
			refreshCandidate(match, res.Leads[match.newIdx].RawLead, byLicense, byNameAddr)
		}
		res.Leads = append(res.Leads, out)

		switch rule {
		case 1:
			res.Matches.License++
		case 2:
			res.Matches.NameAddress++
		case 3:
			res.Matches.Fuzzy++
		}

		if out.Decision == model.DecisionNew {
			c.newIdx = len(res.Leads) - 1
			add(c)
		}
	}

	zap.L().Debug("dedup: batch complete",
		zap.Int("input", len(batch)),
		zap.Int("license_matches", res.Matches.License),
		zap.Int("name_address_matches", res.Matches.NameAddress),
		zap.Int("fuzzy_matches", res.Matches.Fuzzy),
	)
	return res
}

// findMatch evaluates the match rules strongest-first and reports which rule
// decided (0 = no match).
func (d *Deduplicator) findMatch(
	c *candidate,
	byLicense, byNameAddr map[string][]*candidate,
	byScope map[string][]*candidate,
) (*candidate, int) {
	// Rule 1: exact license match, decisive on its own.
	if c.license != "" {
		if cands := byLicense[c.license]; len(cands) > 0 {
			return bestByRecency(cands), 1
		}
	}

	// Rule 2: exact normalized name+address, only when a license is absent
	// on at least one side.
	if c.nameKey != "" || c.addrKey != "" {
		for _, cand := range byNameAddr[c.nameKey+"\x00"+c.addrKey] {
			if c.license == "" || cand.license == "" {
				return cand, 2
			}
		}
	}

	// Rule 3: fuzzy address+name, scoped to the same region and country so
	// similar street names across jurisdictions never collide.
	var (
		best     *candidate
		bestSum  float64
		bestTime time.Time
	)
	for _, cand := range byScope[c.scope] {
		addrSim := Similarity(c.addrSort, cand.addrSort)
		if addrSim <= d.cfg.AddressThreshold {
			continue
		}
		nameSim := Similarity(c.nameSort, cand.nameSort)
		if nameSim <= d.cfg.NameThreshold {
			continue
		}
		sum := addrSim + nameSim
		if best == nil || sum > bestSum || (sum == bestSum && cand.recency.After(bestTime)) {
			best, bestSum, bestTime = cand, sum, cand.recency
		}
	}
	if best != nil {
		return best, 3
	}
	return nil, 0
}

// bestByRecency picks the most recently updated candidate from a non-empty set.
func bestByRecency(cands []*candidate) *candidate {
	best := cands[0]
	for _, c := range cands[1:] {
		if c.recency.After(best.recency) {
			best = c
		}
	}
	return best
}

// mergeGaps copies every non-empty field of dup into dst where dst is empty.
// Non-empty fields of the survivor are never overwritten.
func mergeGaps(dst *model.RawLead, dup model.RawLead) {
	if dst.LicenseNumber == "" {
		dst.LicenseNumber = dup.LicenseNumber
	}
	if dst.Name == "" {
		dst.Name = dup.Name
	}
	if dst.FullAddress == "" {
		dst.FullAddress = dup.FullAddress
	}
	if dst.City == "" {
		dst.City = dup.City
	}
	if dst.Region == "" {
		dst.Region = dup.Region
	}
	if dst.Country == "" {
		dst.Country = dup.Country
	}
	if dst.Capacity == nil {
		dst.Capacity = dup.Capacity
	}
	if dst.Stage == "" || dst.Stage == model.StageUnknown {
		if dup.Stage != "" && dup.Stage != model.StageUnknown {
			dst.Stage = dup.Stage
		}
	}
	if dst.ContactPhone == "" {
		dst.ContactPhone = dup.ContactPhone
	}
	if dst.ContactEmail == "" {
		dst.ContactEmail = dup.ContactEmail
	}
	if dst.SourceURL == "" {
		dst.SourceURL = dup.SourceURL
	}
}

// MergeFromKnown fills the empty fields of an update lead from the matched
// known record, so downstream sinks see the most complete view. Human-owned
// fields (status, owner, notes) are not part of RawLead and stay untouched.
func MergeFromKnown(lead *model.ProcessedLead, known model.KnownLead) {
	mergeGaps(&lead.RawLead, known.RawLead)
}

// refreshCandidate re-indexes a surviving NEW after a gap-fill merge gave it
// fields it previously lacked, so later batch entries can match on them.
func refreshCandidate(c *candidate, merged model.RawLead, byLicense, byNameAddr map[string][]*candidate) {
	if lic := NormalizeLicense(merged.LicenseNumber); c.license == "" && lic != "" {
		c.license = lic
		byLicense[lic] = append(byLicense[lic], c)
	}
	nameKey, addrKey := NormalizeKey(merged.Name), NormalizeKey(merged.FullAddress)
	if nameKey != c.nameKey || addrKey != c.addrKey {
		c.nameKey, c.addrKey = nameKey, addrKey
		byNameAddr[nameKey+"\x00"+addrKey] = append(byNameAddr[nameKey+"\x00"+addrKey], c)
		c.nameSort = tokenSortKey(merged.Name)
		c.addrSort = tokenSortKey(merged.FullAddress)
	}
}

func leadCandidate(l model.RawLead) *candidate {
	return &candidate{
		license:  NormalizeLicense(l.LicenseNumber),
		nameKey:  NormalizeKey(l.Name),
		addrKey:  NormalizeKey(l.FullAddress),
		nameSort: tokenSortKey(l.Name),
		addrSort: tokenSortKey(l.FullAddress),
		scope:    NormalizeKey(l.Region) + "\x00" + string(l.Country),
		recency:  l.DiscoveredAt,
	}
}

func knownCandidate(k *model.KnownLead) *candidate {
	c := leadCandidate(k.RawLead)
	c.knownID = k.ID
	if k.LastUpdated.After(c.recency) {
		c.recency = k.LastUpdated
	}
	return c
}
