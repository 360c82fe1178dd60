package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindseek/leadscout/internal/model"
)

func newDedup(t *testing.T) *Deduplicator {
	t.Helper()
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	return New(cfg)
}

func knownLead(id, license, name, address, region string, updated time.Time) model.KnownLead {
	return model.KnownLead{
		RawLead: model.RawLead{
			LicenseNumber: license,
			Name:          name,
			FullAddress:   address,
			Region:        region,
			Country:       model.CountryCA,
		},
		ID:          id,
		LastUpdated: updated,
	}
}

func TestDeduplicate_LicenseMatchIsDecisive(t *testing.T) {
	d := newDedup(t)
	known := []model.KnownLead{
		knownLead("k1", "ON-1234", "Old Name Entirely", "99 Elsewhere Rd", "Ontario", time.Now()),
	}
	batch := []model.RawLead{{
		LicenseNumber: "on-1234 ",
		Name:          "Sunshine Daycare",
		FullAddress:   "123 Main St",
		Region:        "Ontario",
		Country:       model.CountryCA,
	}}

	res := d.Deduplicate(batch, known)
	require.Len(t, res.Leads, 1)
	assert.Equal(t, model.DecisionUpdate, res.Leads[0].Decision)
	assert.Equal(t, "k1", res.Leads[0].MatchedID)
	assert.Equal(t, 1, res.Matches.License)
}

func TestDeduplicate_NameAddressMatchWhenLicenseAbsent(t *testing.T) {
	d := newDedup(t)
	known := []model.KnownLead{
		knownLead("k1", "", "Sunshine Daycare, Inc.", "123 Main St.", "Ontario", time.Now()),
	}
	batch := []model.RawLead{{
		Name:        "sunshine daycare inc",
		FullAddress: "123 MAIN ST",
		Region:      "Ontario",
		Country:     model.CountryCA,
	}}

	res := d.Deduplicate(batch, known)
	require.Len(t, res.Leads, 1)
	assert.Equal(t, model.DecisionUpdate, res.Leads[0].Decision)
	assert.Equal(t, 1, res.Matches.NameAddress)
}

func TestDeduplicate_FuzzyMatchSameRegion(t *testing.T) {
	d := newDedup(t)
	known := []model.KnownLead{
		knownLead("k1", "", "Sunshine Daycare", "123 Main Street, Toronto", "Ontario", time.Now()),
	}
	// Name varies, address differs only in punctuation.
	batch := []model.RawLead{{
		Name:        "Sunshine Daycare Inc",
		FullAddress: "123 Main Street Toronto",
		Region:      "Ontario",
		Country:     model.CountryCA,
	}}

	res := d.Deduplicate(batch, known)
	require.Len(t, res.Leads, 1)
	assert.Equal(t, model.DecisionUpdate, res.Leads[0].Decision)
	assert.Equal(t, 1, res.Matches.Fuzzy)
}

func TestDeduplicate_FuzzyNeverCrossesRegions(t *testing.T) {
	d := newDedup(t)
	known := []model.KnownLead{
		knownLead("k1", "", "Sunshine Daycare", "123 Main Street", "Ontario", time.Now()),
	}
	batch := []model.RawLead{{
		Name:        "Sunshine Daycare",
		FullAddress: "123 Main Street",
		Region:      "British Columbia",
		Country:     model.CountryCA,
	}}

	res := d.Deduplicate(batch, known)
	require.Len(t, res.Leads, 1)
	// Name+address are identical but the scope differs, and rule 2 still
	// matches regardless of region. Exact equality is rule 2 territory.
	assert.Equal(t, model.DecisionUpdate, res.Leads[0].Decision)
	assert.Equal(t, 1, res.Matches.NameAddress)
	assert.Zero(t, res.Matches.Fuzzy)
}

func TestDeduplicate_DifferentRegionSimilarAddressStaysNew(t *testing.T) {
	d := newDedup(t)
	known := []model.KnownLead{
		knownLead("k1", "", "Sunshine Daycare", "123 Main Street, Toronto", "Ontario", time.Now()),
	}
	batch := []model.RawLead{{
		Name:        "Sunshine Daycare Inc",
		FullAddress: "123 Main Street Toronto",
		Region:      "British Columbia",
		Country:     model.CountryCA,
	}}

	res := d.Deduplicate(batch, known)
	require.Len(t, res.Leads, 1)
	assert.Equal(t, model.DecisionNew, res.Leads[0].Decision)
}

func TestDeduplicate_WithinBatchDuplicateMergesGaps(t *testing.T) {
	d := newDedup(t)
	batch := []model.RawLead{
		{
			Name:        "Sunshine Daycare",
			FullAddress: "123 Main St",
			Region:      "Ontario",
			Country:     model.CountryCA,
		},
		{
			Name:          "Sunshine Daycare",
			FullAddress:   "123 Main St",
			Region:        "Ontario",
			Country:       model.CountryCA,
			ContactPhone:  "+1 416 555 0123",
			LicenseNumber: "ON-9999",
		},
	}

	res := d.Deduplicate(batch, nil)
	require.Len(t, res.Leads, 2)
	assert.Equal(t, model.DecisionNew, res.Leads[0].Decision)
	assert.Equal(t, model.DecisionDuplicateSkipped, res.Leads[1].Decision)

	// The survivor absorbed the duplicate's extra fields.
	assert.Equal(t, "+1 416 555 0123", res.Leads[0].ContactPhone)
	assert.Equal(t, "ON-9999", res.Leads[0].LicenseNumber)
}

func TestDeduplicate_MergeNeverOverwrites(t *testing.T) {
	d := newDedup(t)
	batch := []model.RawLead{
		{
			Name:         "Sunshine Daycare",
			FullAddress:  "123 Main St",
			Region:       "Ontario",
			Country:      model.CountryCA,
			ContactEmail: "first@example.com",
		},
		{
			Name:         "Sunshine Daycare",
			FullAddress:  "123 Main St",
			Region:       "Ontario",
			Country:      model.CountryCA,
			ContactEmail: "second@example.com",
		},
	}

	res := d.Deduplicate(batch, nil)
	require.Len(t, res.Leads, 2)
	assert.Equal(t, "first@example.com", res.Leads[0].ContactEmail)
}

func TestDeduplicate_MergedLicenseMatchesLaterEntries(t *testing.T) {
	d := newDedup(t)
	batch := []model.RawLead{
		{Name: "Sunshine Daycare", FullAddress: "123 Main St", Region: "Ontario", Country: model.CountryCA},
		{Name: "Sunshine Daycare", FullAddress: "123 Main St", Region: "Ontario", Country: model.CountryCA, LicenseNumber: "ON-9999"},
		// Matches only via the license the survivor picked up in the merge.
		{Name: "Totally Different", FullAddress: "456 Other Ave", Region: "Ontario", Country: model.CountryCA, LicenseNumber: "ON-9999"},
	}

	res := d.Deduplicate(batch, nil)
	require.Len(t, res.Leads, 3)
	assert.Equal(t, model.DecisionNew, res.Leads[0].Decision)
	assert.Equal(t, model.DecisionDuplicateSkipped, res.Leads[1].Decision)
	assert.Equal(t, model.DecisionDuplicateSkipped, res.Leads[2].Decision)
}

func TestDeduplicate_LicenseTieBreakPrefersRecent(t *testing.T) {
	d := newDedup(t)
	old := time.Now().Add(-48 * time.Hour)
	recent := time.Now()
	known := []model.KnownLead{
		knownLead("stale", "ON-1234", "Sunshine Daycare", "123 Main St", "Ontario", old),
		knownLead("fresh", "ON-1234", "Sunshine Daycare", "123 Main St", "Ontario", recent),
	}
	batch := []model.RawLead{{
		LicenseNumber: "ON-1234",
		Name:          "Sunshine Daycare",
		FullAddress:   "123 Main St",
		Region:        "Ontario",
		Country:       model.CountryCA,
	}}

	res := d.Deduplicate(batch, known)
	require.Len(t, res.Leads, 1)
	assert.Equal(t, "fresh", res.Leads[0].MatchedID)
}

func TestDeduplicate_OutputLengthEqualsInput(t *testing.T) {
	d := newDedup(t)
	batch := []model.RawLead{
		{Name: "A", FullAddress: "1 First St", Region: "Ontario", Country: model.CountryCA},
		{Name: "B", FullAddress: "2 Second St", Region: "Ontario", Country: model.CountryCA},
		{Name: "A", FullAddress: "1 First St", Region: "Ontario", Country: model.CountryCA},
		{Name: "C", FullAddress: "3 Third St", Region: "Victoria", Country: model.CountryAU},
	}

	res := d.Deduplicate(batch, nil)
	assert.Len(t, res.Leads, len(batch))
}

func TestMergeFromKnown_FillsGapsOnly(t *testing.T) {
	lead := model.ProcessedLead{RawLead: model.RawLead{
		Name:        "Sunshine Daycare",
		FullAddress: "123 Main St",
		Stage:       model.StageUnknown,
	}}
	known := model.KnownLead{RawLead: model.RawLead{
		Name:         "Old Name",
		FullAddress:  "Old Address",
		ContactPhone: "+1 416 555 0188",
		Stage:        model.StageRenewal,
	}}

	MergeFromKnown(&lead, known)

	assert.Equal(t, "Sunshine Daycare", lead.Name)
	assert.Equal(t, "123 Main St", lead.FullAddress)
	assert.Equal(t, "+1 416 555 0188", lead.ContactPhone)
	assert.Equal(t, model.StageRenewal, lead.Stage)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{AddressThreshold: 0, NameThreshold: 0.7}.Validate())
	assert.Error(t, Config{AddressThreshold: 0.9, NameThreshold: 1.2}.Validate())
}
