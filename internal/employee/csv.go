package employee

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrParse is returned when an upload cannot be read as a table of records.
	ErrParse = errors.New("malformed upload")
	// ErrMissingColumn is returned when an upload header lacks a required attribute.
	ErrMissingColumn = errors.New("missing required column")
)

const byteOrderMark = "\ufeff"

// Table is an uploaded batch of records.
type Table struct {
	// Header is the header row as found in the upload.
	Header  []string
	Records []Record
	// Ratings holds the historical PerformanceRating cells when HasRating is set.
	Ratings   []string
	HasRating bool
	// Ignored lists header columns that are neither attributes nor the rating.
	Ignored []string
}

func (t *Table) Len() int {
	return len(t.Records)
}

// Head returns up to n leading records.
func (t *Table) Head(n int) []Record {
	if n > len(t.Records) {
		n = len(t.Records)
	}
	return t.Records[:n]
}

// ReadCSV reads a delimited upload whose header names the record attributes.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: upload is empty", ErrParse)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrParse, err)
	}

	table := &Table{Header: make([]string, 0, len(header))}
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, byteOrderMark))
		table.Header = append(table.Header, name)
		index[name] = i
	}

	var missing []string
	for _, column := range Columns {
		if _, ok := index[column]; !ok {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	ratingIdx, hasRating := index[RatingColumn]
	table.HasRating = hasRating

	for _, name := range table.Header {
		if _, known := FieldByName(name); !known && name != RatingColumn {
			table.Ignored = append(table.Ignored, name)
		}
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}

		record, err := decodeRow(row, index)
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d: %v", ErrParse, line, err)
		}

		table.Records = append(table.Records, record)
		if hasRating {
			table.Ratings = append(table.Ratings, strings.TrimSpace(row[ratingIdx]))
		}
	}

	if table.Len() == 0 {
		return nil, fmt.Errorf("%w: upload has a header but no records", ErrParse)
	}

	return table, nil
}

func decodeRow(row []string, index map[string]int) (Record, error) {
	raw := make(map[string]string, len(Columns))
	for _, f := range Schema {
		cell := strings.TrimSpace(row[index[f.Name]])
		if cell == "" && f.Kind == Integer {
			return Record{}, fmt.Errorf("%s is empty", f.Name)
		}
		raw[f.Name] = cell
	}
	return DecodeRecord(raw)
}
