package source

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kindseek/leadscout/internal/fetcher"
	"github.com/kindseek/leadscout/internal/model"
)

const acecqaRegisterPage = "https://www.acecqa.gov.au/resources/national-registers"

// ACECQA pulls the approved-services workbook from the Australian national
// register. States arrive abbreviated (NSW, VIC) and are expanded.
type ACECQA struct {
	fetcher fetcher.Fetcher
	url     string
}

// NewACECQA creates the ACECQA adapter.
func NewACECQA(f fetcher.Fetcher, url string) *ACECQA {
	return &ACECQA{fetcher: f, url: url}
}

func (s *ACECQA) Name() string { return "acecqa" }

// Fetch downloads and transforms the approved-services register.
func (s *ACECQA) Fetch(ctx context.Context) ([]model.RawLead, error) {
	body, err := s.fetcher.Download(ctx, s.url)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	table, err := fetcher.ReadXLSXTable(body, fetcher.XLSXOptions{})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	leads := make([]model.RawLead, 0, len(table.Rows))
	skipped := 0
	for _, row := range table.Rows {
		name := table.Get(row, "Service Name")
		if name == "" {
			skipped++
			continue
		}

		region := NormalizeRegion(model.CountryAU, table.Get(row, "State"))
		suburb := table.Get(row, "Suburb")
		address := joinAddress(
			table.Get(row, "Address"),
			suburb,
			region,
			table.Get(row, "Postcode"),
		)
		license := table.Get(row, "Approval Number")

		leads = append(leads, model.RawLead{
			SourceID:      fmt.Sprintf("acecqa:%s", firstNonEmpty(license, name)),
			LicenseNumber: license,
			Name:          name,
			FullAddress:   address,
			City:          suburb,
			Region:        region,
			Country:       model.CountryAU,
			Capacity:      ParseCapacity(table.Get(row, "Approved Places")),
			Stage:         model.StageNewLicense,
			ContactPhone:  NormalizePhone(table.Get(row, "Phone"), model.CountryAU),
			ContactEmail:  NormalizeEmail(table.Get(row, "Email")),
			SourceName:    "ACECQA National Register",
			SourceURL:     acecqaRegisterPage,
			DiscoveredAt:  now,
		})
	}

	zap.L().Info("source: acecqa fetched",
		zap.Int("leads", len(leads)),
		zap.Int("skipped", skipped),
	)
	return leads, nil
}
