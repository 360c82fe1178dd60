package source

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/kindseek/leadscout/internal/config"
	"github.com/kindseek/leadscout/internal/model"
)

// stubFetcher serves fixed bytes for any URL.
type stubFetcher struct {
	data []byte
	err  error
}

func (s *stubFetcher) Download(_ context.Context, _ string) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

func TestBuild_EnabledSources(t *testing.T) {
	cfg := config.SourcesConfig{Enabled: []string{"ontario", "bc", "acecqa"}}

	sources, err := Build(cfg, &stubFetcher{})
	require.NoError(t, err)
	require.Len(t, sources, 3)
	assert.Equal(t, "ontario", sources[0].Name())
	assert.Equal(t, "bc", sources[1].Name())
	assert.Equal(t, "acecqa", sources[2].Name())
}

func TestBuild_UnknownSource(t *testing.T) {
	_, err := Build(config.SourcesConfig{Enabled: []string{"narnia"}}, &stubFetcher{})
	assert.Error(t, err)
}

func TestOntario_Fetch(t *testing.T) {
	csv := "Centre Name,Licence Holder,Address,City,Licence Number,Total Capacity,Phone,Email,Postal Code\n" +
		"Sunshine Daycare,Holder Co,123 Main St,Toronto,ON-1234,45,(416) 555-0123,INFO@Sunshine.CA,M5V 2T6\n" +
		",Fallback Holdings,9 Side St,Ottawa,ON-9,,,\n" +
		",,,,,,,,\n"

	s := NewOntario(&stubFetcher{data: []byte(csv)}, "http://example.test/lcc.csv")
	leads, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, leads, 2)

	lead := leads[0]
	assert.Equal(t, "Sunshine Daycare", lead.Name)
	assert.Equal(t, "ON-1234", lead.LicenseNumber)
	assert.Equal(t, "123 Main St, M5V 2T6", lead.FullAddress)
	assert.Equal(t, "Toronto", lead.City)
	assert.Equal(t, "Ontario", lead.Region)
	assert.Equal(t, model.CountryCA, lead.Country)
	require.NotNil(t, lead.Capacity)
	assert.Equal(t, 45, *lead.Capacity)
	assert.Equal(t, model.StageNewLicense, lead.Stage)
	assert.Equal(t, "info@sunshine.ca", lead.ContactEmail)
	assert.Equal(t, "Ontario Open Data", lead.SourceName)
	assert.False(t, lead.DiscoveredAt.IsZero())

	// Nameless centres fall back to the licence holder.
	assert.Equal(t, "Fallback Holdings", leads[1].Name)
	assert.Nil(t, leads[1].Capacity)
}

func TestBC_Fetch(t *testing.T) {
	csv := "NAME,ADDRESS,CITY,POSTAL_CODE,PHONE,EMAIL,CAPACITY,LICENSE_NUMBER\n" +
		"Harbourview Childcare,456 Water St,Vancouver,V6B 1A1,,,60,BC-77\n"

	s := NewBC(&stubFetcher{data: []byte(csv)}, "http://example.test/bc.csv")
	leads, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, leads, 1)

	lead := leads[0]
	assert.Equal(t, "Harbourview Childcare", lead.Name)
	assert.Equal(t, "456 Water St, V6B 1A1", lead.FullAddress)
	assert.Equal(t, "British Columbia", lead.Region)
	assert.Equal(t, "BC-77", lead.LicenseNumber)
	require.NotNil(t, lead.Capacity)
	assert.Equal(t, 60, *lead.Capacity)
}

func TestACECQA_Fetch(t *testing.T) {
	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet("Services")
	require.NoError(t, err)
	for _, cells := range [][]string{
		{"Service Name", "Address", "Suburb", "State", "Postcode", "Phone", "Email", "Approval Number", "Approved Places"},
		{"Sydney Learning Centre", "123 George Street", "Sydney", "NSW", "2000", "", "", "SE-00123456", "75"},
		{"", "1 Ghost Rd", "Nowhere", "VIC", "3000", "", "", "SE-X", "10"},
	} {
		row := sheet.AddRow()
		for _, c := range cells {
			row.AddCell().SetString(c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))

	s := NewACECQA(&stubFetcher{data: buf.Bytes()}, "http://example.test/services.xlsx")
	leads, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, leads, 1)

	lead := leads[0]
	assert.Equal(t, "Sydney Learning Centre", lead.Name)
	assert.Equal(t, "123 George Street, Sydney, New South Wales, 2000", lead.FullAddress)
	assert.Equal(t, "Sydney", lead.City)
	assert.Equal(t, "New South Wales", lead.Region)
	assert.Equal(t, model.CountryAU, lead.Country)
	assert.Equal(t, "SE-00123456", lead.LicenseNumber)
	require.NotNil(t, lead.Capacity)
	assert.Equal(t, 75, *lead.Capacity)
}

func TestOntario_FetchError(t *testing.T) {
	s := NewOntario(&stubFetcher{err: assert.AnError}, "http://example.test/lcc.csv")
	_, err := s.Fetch(context.Background())
	assert.Error(t, err)
}
