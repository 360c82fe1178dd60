package source

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kindseek/leadscout/internal/fetcher"
	"github.com/kindseek/leadscout/internal/model"
)

const ontarioDatasetPage = "https://data.ontario.ca/dataset/licensed-child-care-facilities-in-ontario"

// Ontario pulls the Licensed Child Care Facilities CSV from the Ontario
// Open Data portal.
type Ontario struct {
	fetcher fetcher.Fetcher
	url     string
}

// NewOntario creates the Ontario adapter.
func NewOntario(f fetcher.Fetcher, url string) *Ontario {
	return &Ontario{fetcher: f, url: url}
}

func (s *Ontario) Name() string { return "ontario" }

// Fetch downloads and transforms the full facility register.
func (s *Ontario) Fetch(ctx context.Context) ([]model.RawLead, error) {
	body, err := s.fetcher.Download(ctx, s.url)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	table, err := fetcher.ReadCSVTable(body, fetcher.CSVOptions{LazyQuotes: true})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	leads := make([]model.RawLead, 0, len(table.Rows))
	skipped := 0
	for _, row := range table.Rows {
		name := table.Get(row, "Centre Name")
		if name == "" {
			name = table.Get(row, "Licence Holder")
		}
		if name == "" {
			skipped++
			continue
		}

		license := table.Get(row, "Licence Number")
		address := appendPostal(table.Get(row, "Address"), table.Get(row, "Postal Code"))

		leads = append(leads, model.RawLead{
			SourceID:      fmt.Sprintf("ontario:%s", firstNonEmpty(license, name)),
			LicenseNumber: license,
			Name:          name,
			FullAddress:   address,
			City:          table.Get(row, "City"),
			Region:        "Ontario",
			Country:       model.CountryCA,
			Capacity:      ParseCapacity(table.Get(row, "Total Capacity")),
			Stage:         model.StageNewLicense,
			ContactPhone:  NormalizePhone(table.Get(row, "Phone"), model.CountryCA),
			ContactEmail:  NormalizeEmail(table.Get(row, "Email")),
			SourceName:    "Ontario Open Data",
			SourceURL:     ontarioDatasetPage,
			DiscoveredAt:  now,
		})
	}

	zap.L().Info("source: ontario fetched",
		zap.Int("leads", len(leads)),
		zap.Int("skipped", skipped),
	)
	return leads, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
