// Package common holds the CSV and JSON plumbing shared by the adapters,
// the sinks and the commands.
package common

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// StripBOM removes a leading UTF-8 byte order mark.
func StripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}

// NewCSVReader returns a lenient csv.Reader: variable field counts, lazy
// quotes and leading-space trimming.
func NewCSVReader(r io.Reader, comma rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	return reader
}

// ReadCSV unmarshals CSV rows into a slice of TRow using gocsv. The first
// record is the header and columns are matched by the csv struct tags.
func ReadCSV[TRow any](r io.Reader, comma rune) ([]TRow, error) {
	var rows []TRow
	if err := gocsv.UnmarshalCSV(NewCSVReader(r, comma), &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV: %w", err)
	}
	return rows, nil
}

// WriteCSV marshals rows with a header line using gocsv.
func WriteCSV[TRow any](w io.Writer, rows []TRow, comma rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = comma
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(writer)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// ReadHeader parses a single header line.
func ReadHeader(line string, comma rune) ([]string, error) {
	header, err := NewCSVReader(strings.NewReader(line), comma).Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	return header, nil
}

// MissingColumn returns the first required column absent from header, or ""
// when all are present.
func MissingColumn(header []string, required ...string) string {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = struct{}{}
	}
	for _, col := range required {
		if _, ok := present[col]; !ok {
			return col
		}
	}
	return ""
}
