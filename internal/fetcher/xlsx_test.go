package fetcher

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func workbookBytes(t *testing.T, sheetName string, rows [][]string) []byte {
	t.Helper()
	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet(sheetName)
	require.NoError(t, err)
	for _, cells := range rows {
		row := sheet.AddRow()
		for _, c := range cells {
			row.AddCell().SetString(c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))
	return buf.Bytes()
}

func TestReadXLSXTable_FirstSheet(t *testing.T) {
	data := workbookBytes(t, "Services", [][]string{
		{"Service Name", "State", "Approved Places"},
		{"Sydney Learning Centre", "NSW", "75"},
	})

	table, err := ReadXLSXTable(bytes.NewReader(data), XLSXOptions{})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Sydney Learning Centre", table.Get(table.Rows[0], "Service Name"))
	assert.Equal(t, "75", table.Get(table.Rows[0], "approved places"))
}

func TestReadXLSXTable_NamedSheet(t *testing.T) {
	data := workbookBytes(t, "Approved Services", [][]string{
		{"Service Name"},
		{"Melbourne Kids Academy"},
	})

	table, err := ReadXLSXTable(bytes.NewReader(data), XLSXOptions{SheetName: "Approved Services"})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	_, err = ReadXLSXTable(bytes.NewReader(data), XLSXOptions{SheetName: "Nope"})
	assert.Error(t, err)
}

func TestReadXLSXTable_SkipRows(t *testing.T) {
	data := workbookBytes(t, "Services", [][]string{
		{"National Register extract"},
		{"Service Name"},
		{"Brisbane Early Learning"},
	})

	table, err := ReadXLSXTable(bytes.NewReader(data), XLSXOptions{SkipRows: 1})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Brisbane Early Learning", table.Get(table.Rows[0], "Service Name"))
}

func TestReadXLSXTable_Garbage(t *testing.T) {
	_, err := ReadXLSXTable(bytes.NewReader([]byte("not a workbook")), XLSXOptions{})
	assert.Error(t, err)
}
