package source

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kindseek/leadscout/internal/fetcher"
	"github.com/kindseek/leadscout/internal/model"
)

const bcDatasetPage = "https://catalogue.data.gov.bc.ca/dataset/child-care-map-data"

// BC pulls the Child Care Map CSV from the BC Data Catalogue. The register
// uses SHOUTING_SNAKE column names.
type BC struct {
	fetcher fetcher.Fetcher
	url     string
}

// NewBC creates the British Columbia adapter.
func NewBC(f fetcher.Fetcher, url string) *BC {
	return &BC{fetcher: f, url: url}
}

func (s *BC) Name() string { return "bc" }

// Fetch downloads and transforms the full facility register.
func (s *BC) Fetch(ctx context.Context) ([]model.RawLead, error) {
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
		name := table.Get(row, "NAME")
		if name == "" {
			skipped++
			continue
		}

		license := table.Get(row, "LICENSE_NUMBER")
		address := appendPostal(table.Get(row, "ADDRESS"), table.Get(row, "POSTAL_CODE"))

		leads = append(leads, model.RawLead{
			SourceID:      fmt.Sprintf("bc:%s", firstNonEmpty(license, name)),
			LicenseNumber: license,
			Name:          name,
			FullAddress:   address,
			City:          table.Get(row, "CITY"),
			Region:        "British Columbia",
			Country:       model.CountryCA,
			Capacity:      ParseCapacity(table.Get(row, "CAPACITY")),
			Stage:         model.StageNewLicense,
			ContactPhone:  NormalizePhone(table.Get(row, "PHONE"), model.CountryCA),
			ContactEmail:  NormalizeEmail(table.Get(row, "EMAIL")),
			SourceName:    "BC Child Care Map",
			SourceURL:     bcDatasetPage,
			DiscoveredAt:  now,
		})
	}

	zap.L().Info("source: bc fetched",
		zap.Int("leads", len(leads)),
		zap.Int("skipped", skipped),
	)
	return leads, nil
}
