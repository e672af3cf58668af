// Package santanderparser reads Santander Argentina statements: the savings
// account XLSX export and the Visa credit card PDF statement.
package santanderparser

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/devjuank/FinanceService/internal/heuristics"
	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/parser"
	"github.com/devjuank/FinanceService/internal/parsererror"
)

// Column positions in the movements sheet (zero based).
const (
	colDate        = 1
	colDescription = 3
	colAmount      = 6
	colBalance     = 7
)

// firstDataRow skips the twelve preamble rows and the table header.
const firstDataRow = 13

const xlsxDateLayout = "02/01/2006"

var xlsxDatePattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}`)

// XLSXParser implements parser.Parser for the account export.
type XLSXParser struct {
	parser.BaseParser
}

// NewXLSXParser creates a Santander XLSX parser.
func NewXLSXParser(source parser.Source, logger logging.Logger) *XLSXParser {
	return &XLSXParser{BaseParser: parser.NewBaseParser(source, logger)}
}

// Kind implements parser.Parser.
func (p *XLSXParser) Kind() string {
	return heuristics.KindSantanderXLSX
}

// Parse implements parser.Parser. Cells are read raw so numeric amounts and
// date serials do not depend on the workbook's display format.
func (p *XLSXParser) Parse(_ context.Context, r io.Reader) (*parser.Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &parsererror.InvalidFormatError{
			ExpectedFormat: "Santander XLSX export",
			Msg:            err.Error(),
		}
	}
	defer func() {
		if err := f.Close(); err != nil {
			p.GetLogger().WithError(err).Warn("Failed to close workbook")
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &parsererror.InvalidFormatError{
			ExpectedFormat: "Santander XLSX export",
			Msg:            "workbook has no sheets",
		}
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %s: %w", sheets[0], err)
	}

	result := &parser.Result{}
	for i := firstDataRow; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		result.RowsRead++
		p.convertRow(result, i+1, row)
	}
	return result, nil
}

func (p *XLSXParser) convertRow(result *parser.Result, rowNum int, row []string) {
	date, ok := cellDate(cell(row, colDate))
	if !ok {
		p.Skip(result, rowNum, fmt.Sprintf("not a movement date: %q", cell(row, colDate)))
		return
	}

	amount := p.cellAmount(cell(row, colAmount), rowNum)
	if amount.IsZero() {
		p.Skip(result, rowNum, "zero amount")
		return
	}

	description := strings.TrimSpace(cell(row, colDescription))
	category, subcategory := heuristics.InferCategory(description)

	builder := p.NewBuilder().
		WithDate(date).
		WithAmount(amount).
		WithDescription(description).
		WithCategory(category, subcategory).
		WithFlags(p.Flags(description))
	if raw := cell(row, colBalance); strings.TrimSpace(raw) != "" {
		builder.WithBalance(p.cellAmount(raw, rowNum))
	}

	p.Add(result, rowNum, builder)
}

func (p *XLSXParser) cellAmount(raw string, rowNum int) decimal.Decimal {
	if d, err := decimal.NewFromString(strings.TrimSpace(raw)); err == nil {
		return d
	}
	return p.ParseAmount(raw, rowNum)
}

// cellDate accepts DD/MM/YYYY text or an Excel date serial.
func cellDate(raw string) (civil.Date, bool) {
	raw = strings.TrimSpace(raw)
	if xlsxDatePattern.MatchString(raw) {
		t, err := time.Parse(xlsxDateLayout, raw[:10])
		return civil.DateOf(t), err == nil
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil || serial <= 0 {
		return civil.Date{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return civil.Date{}, false
	}
	return civil.DateOf(t), true
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
