package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Row is one parsed line keyed by header name. Values are float64 or string;
// empty cells are omitted entirely, so key absence means "no value".
type Row map[string]interface{}

var numericForm = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Read parses one delimited input into rows keyed by the header line.
// Cells in numeric lexical form become float64, anything else non-empty stays
// a string. Rows whose cells are all empty or whitespace are skipped. A
// structural error (bad quoting, truncated stream) fails the whole input.
func Read(r io.Reader, delimiter rune) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if emptyRecord(record) {
			continue
		}

		row := make(Row, len(header))
		for i, name := range header {
			if name == "" || i >= len(record) {
				continue
			}
			cell := strings.TrimSpace(record[i])
			if cell == "" {
				continue
			}
			// Duplicate header names overwrite: last occurrence wins.
			row[name] = inferScalar(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func emptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func inferScalar(cell string) interface{} {
	if !numericForm.MatchString(cell) {
		return cell
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return cell
	}
	return v
}

// Has reports whether the row carries a value for the field.
func (r Row) Has(name string) bool {
	_, ok := r[name]
	return ok
}
