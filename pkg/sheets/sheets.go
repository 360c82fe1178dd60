// Package sheets exports processed leads to an XLSX workbook, one sheet per
// country, highest scores first.
package sheets

import (
	"context"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/kindseek/leadscout/internal/model"
)

var sheetNames = map[model.Country]string{
	model.CountryCA: "Canada",
	model.CountryAU: "Australia",
}

var headerRow = []string{
	"Name", "Score", "Priority", "Decision", "License", "Address", "City",
	"Region", "Capacity", "Stage", "Phone", "Email", "Source", "Discovered",
}

// Exporter writes the batch to a workbook on disk.
type Exporter struct {
	path string
}

// NewExporter creates an Exporter writing to the given path. The file is
// rewritten on every run.
func NewExporter(path string) *Exporter {
	return &Exporter{path: path}
}

func (e *Exporter) Name() string { return "xlsx" }

// Deliver implements the pipeline sink.
func (e *Exporter) Deliver(_ context.Context, leads []model.ProcessedLead, _ *model.BatchSummary) error {
	wb, err := BuildWorkbook(leads)
	if err != nil {
		return err
	}
	if err := wb.Save(e.path); err != nil {
		return eris.Wrapf(err, "sheets: save %s", e.path)
	}
	zap.L().Info("sheets: workbook written",
		zap.String("path", e.path),
		zap.Int("leads", len(leads)),
	)
	return nil
}

// BuildWorkbook renders the leads into an in-memory workbook. Duplicates are
// omitted; their survivors already carry the merged fields.
func BuildWorkbook(leads []model.ProcessedLead) (*xlsx.File, error) {
	kept := make([]model.ProcessedLead, 0, len(leads))
	for _, lead := range leads {
		if lead.Decision != model.DecisionDuplicateSkipped {
			kept = append(kept, lead)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })

	wb := xlsx.NewFile()
	sheets := make(map[model.Country]*xlsx.Sheet)
	for _, country := range []model.Country{model.CountryCA, model.CountryAU} {
		sheet, err := wb.AddSheet(sheetNames[country])
		if err != nil {
			return nil, eris.Wrapf(err, "sheets: add sheet %s", sheetNames[country])
		}
		writeRow(sheet, headerRow)
		sheets[country] = sheet
	}

	for _, lead := range kept {
		sheet, ok := sheets[lead.Country]
		if !ok {
			continue
		}
		writeRow(sheet, leadCells(lead))
	}
	return wb, nil
}

func writeRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}

func leadCells(lead model.ProcessedLead) []string {
	capacity := ""
	if lead.Capacity != nil {
		capacity = strconv.Itoa(*lead.Capacity)
	}
	return []string{
		lead.Name,
		strconv.Itoa(lead.Score),
		lead.Priority.Label(),
		string(lead.Decision),
		lead.LicenseNumber,
		lead.FullAddress,
		lead.City,
		lead.Region,
		capacity,
		string(lead.Stage),
		lead.ContactPhone,
		lead.ContactEmail,
		lead.SourceName,
		lead.DiscoveredAt.Format("2006-01-02"),
	}
}
