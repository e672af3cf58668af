// Package mercadopagoparser reads MercadoPago account activity CSV exports.
//
// Exports start with a free-form preamble; the table begins at the line that
// contains the RELEASE_DATE column. The separator is ';' when that line
// contains one and ',' otherwise.
package mercadopagoparser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/devjuank/FinanceService/internal/common"
	"github.com/devjuank/FinanceService/internal/heuristics"
	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/parser"
	"github.com/devjuank/FinanceService/internal/parsererror"
)

// Column names
const (
	ColumnReleaseDate     = "RELEASE_DATE"
	ColumnTransactionType = "TRANSACTION_TYPE"
	ColumnNetAmount       = "TRANSACTION_NET_AMOUNT"
	ColumnPartialBalance  = "PARTIAL_BALANCE"
)

const (
	dateLayout     = "02-01-2006"
	merchantPrefix = "Pago "
)

var datePattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)

// Row is one line of the activity table.
type Row struct {
	ReleaseDate     string `csv:"RELEASE_DATE"`
	TransactionType string `csv:"TRANSACTION_TYPE"`
	NetAmount       string `csv:"TRANSACTION_NET_AMOUNT"`
	PartialBalance  string `csv:"PARTIAL_BALANCE"`
}

// Parser implements parser.Parser for MercadoPago exports.
type Parser struct {
	parser.BaseParser
}

// NewParser creates a MercadoPago parser.
func NewParser(source parser.Source, logger logging.Logger) *Parser {
	return &Parser{BaseParser: parser.NewBaseParser(source, logger)}
}

// Kind implements parser.Parser.
func (p *Parser) Kind() string {
	return heuristics.KindMercadoPago
}

// Parse implements parser.Parser.
func (p *Parser) Parse(_ context.Context, r io.Reader) (*parser.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}
	data = common.StripBOM(data)

	table, comma, err := locateTable(data)
	if err != nil {
		return nil, err
	}

	headerLine, _, _ := strings.Cut(string(table), "\n")
	header, err := common.ReadHeader(strings.TrimRight(headerLine, "\r"), comma)
	if err != nil {
		return nil, err
	}
	if missing := common.MissingColumn(header, ColumnReleaseDate, ColumnNetAmount); missing != "" {
		return nil, &parsererror.MissingColumnError{Parser: p.Kind(), Column: missing}
	}
	hasBalance := common.MissingColumn(header, ColumnPartialBalance) == ""

	rows, err := common.ReadCSV[Row](bytes.NewReader(table), comma)
	if err != nil {
		return nil, &parsererror.ParseError{Parser: p.Kind(), Field: "table", Value: headerLine, Err: err}
	}

	result := &parser.Result{}
	for i, row := range rows {
		result.RowsRead++
		p.convertRow(result, i+1, row, hasBalance)
	}
	return result, nil
}

func (p *Parser) convertRow(result *parser.Result, rowNum int, row Row, hasBalance bool) {
	date := strings.TrimSpace(row.ReleaseDate)
	if date == "" || !datePattern.MatchString(date) {
		// summary and footer lines share the table
		p.Skip(result, rowNum, fmt.Sprintf("not a movement date: %q", row.ReleaseDate))
		return
	}

	description := row.TransactionType
	category, subcategory := heuristics.InferCategory(description)

	builder := p.NewBuilder().
		WithDateString(dateLayout, date).
		WithAmount(p.ParseAmount(row.NetAmount, rowNum)).
		WithDescription(description).
		WithMerchant(heuristics.MerchantAfter(description, merchantPrefix)).
		WithCategory(category, subcategory).
		WithFlags(p.Flags(description))
	if hasBalance {
		builder.WithBalance(p.ParseAmount(row.PartialBalance, rowNum))
	}

	p.Add(result, rowNum, builder)
}

// locateTable returns the input from the header line onwards and the
// separator the table uses.
func locateTable(data []byte) ([]byte, rune, error) {
	offset := 0
	for offset < len(data) {
		end := bytes.IndexByte(data[offset:], '\n')
		line := data[offset:]
		if end >= 0 {
			line = data[offset : offset+end]
		}
		if bytes.Contains(line, []byte(ColumnReleaseDate)) {
			comma := ','
			if bytes.ContainsRune(line, ';') {
				comma = ';'
			}
			return data[offset:], comma, nil
		}
		if end < 0 {
			break
		}
		offset += end + 1
	}
	return nil, 0, &parsererror.MissingColumnError{
		Parser: heuristics.KindMercadoPago,
		Column: ColumnReleaseDate,
	}
}
