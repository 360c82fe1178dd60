package fetcher

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the CSV parser.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
	SkipRows   int // extra preamble rows before the header
}

// ReadCSVTable parses a CSV stream into a Table. The first row (after any
// skipped preamble) is the header. Short rows are kept; Table.Get treats
// missing cells as empty.
func ReadCSVTable(r io.Reader, opts CSVOptions) (*Table, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // allow variable fields

	var (
		header []string
		rows   [][]string
		n      int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "fetcher: read csv row")
		}

		if n < opts.SkipRows {
			n++
			continue
		}
		n++

		if header == nil {
			header = record
			continue
		}
		rows = append(rows, record)
	}

	if header == nil {
		return nil, eris.New("fetcher: csv stream has no header row")
	}
	return NewTable(header, rows), nil
}
