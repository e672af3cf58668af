// Package deelparser reads Deel contractor balance CSV exports.
package deelparser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/devjuank/FinanceService/internal/common"
	"github.com/devjuank/FinanceService/internal/heuristics"
	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/models"
	"github.com/devjuank/FinanceService/internal/parser"
	"github.com/devjuank/FinanceService/internal/parsererror"
)

// Column names
const (
	ColumnDateRequested = "Date Requested"
	ColumnAmount        = "Transaction Amount"
)

// Transaction types with special handling
const (
	TypeClientPayment = "client_payment"
	TypeProviderFee   = "provider_fee"
	statusCompleted   = "completed"
)

// Row is one line of the Deel export.
type Row struct {
	DateRequested string `csv:"Date Requested"`
	Amount        string `csv:"Transaction Amount"`
	Currency      string `csv:"Currency"`
	Type          string `csv:"Transaction Type"`
	Status        string `csv:"Transaction Status"`
	Client        string `csv:"Client"`
	ContractName  string `csv:"Contract Name"`
}

// Parser implements parser.Parser for Deel exports. Transfer keywords are
// matched exactly against the transaction type.
type Parser struct {
	parser.BaseParser
}

// NewParser creates a Deel parser.
func NewParser(source parser.Source, logger logging.Logger) *Parser {
	return &Parser{BaseParser: parser.NewBaseParser(source, logger)}
}

// Kind implements parser.Parser.
func (p *Parser) Kind() string {
	return heuristics.KindDeel
}

// Parse implements parser.Parser.
func (p *Parser) Parse(_ context.Context, r io.Reader) (*parser.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}
	data = common.StripBOM(data)

	headerLine, _, _ := strings.Cut(string(data), "\n")
	header, err := common.ReadHeader(strings.TrimRight(headerLine, "\r"), ',')
	if err != nil {
		return nil, &parsererror.InvalidFormatError{ExpectedFormat: "Deel CSV", Msg: err.Error()}
	}
	if missing := common.MissingColumn(header, ColumnDateRequested, ColumnAmount); missing != "" {
		return nil, &parsererror.MissingColumnError{Parser: p.Kind(), Column: missing}
	}

	rows, err := common.ReadCSV[Row](bytes.NewReader(data), ',')
	if err != nil {
		return nil, &parsererror.ParseError{Parser: p.Kind(), Field: "table", Value: headerLine, Err: err}
	}

	result := &parser.Result{}
	for i, row := range rows {
		result.RowsRead++
		p.convertRow(result, i+1, row)
	}
	return result, nil
}

func (p *Parser) convertRow(result *parser.Result, rowNum int, row Row) {
	if !strings.EqualFold(strings.TrimSpace(row.Status), statusCompleted) {
		p.Skip(result, rowNum, fmt.Sprintf("status %q", row.Status))
		return
	}

	txType := strings.TrimSpace(row.Type)
	client := strings.TrimSpace(row.Client)
	contract := strings.TrimSpace(row.ContractName)
	description := strings.TrimSpace(fmt.Sprintf("%s: %s %s", txType, client, contract))

	keywords := p.Source().Keywords
	flags := models.Flags{
		IsTransfer: slices.Contains(keywords.Transfer, txType),
		IsFee:      heuristics.ContainsAny(description, keywords.Fee...) || txType == TypeProviderFee,
		IsTax:      heuristics.ContainsAny(description, keywords.Tax...),
	}

	category, subcategory := heuristics.InferCategory(description)
	if category == nil && txType == TypeClientPayment {
		category, subcategory = models.OptionalString("ingresos"), models.OptionalString("sueldo")
	}

	currency := strings.TrimSpace(row.Currency)
	if currency == "" {
		currency = p.Source().Currency
	}

	date, _, _ := strings.Cut(strings.TrimSpace(row.DateRequested), " ")

	p.Add(result, rowNum, p.NewBuilder().
		WithDateString(models.DateLayoutISO, date).
		WithAmount(p.amount(row.Amount, rowNum)).
		WithCurrency(currency).
		WithDescription(description).
		WithMerchant(client).
		WithCategory(category, subcategory).
		WithFlags(flags))
}

// amount reads plain machine-formatted numbers first and falls back to the
// locale-tolerant parser.
func (p *Parser) amount(raw string, rowNum int) decimal.Decimal {
	if d, err := decimal.NewFromString(strings.TrimSpace(raw)); err == nil {
		return d
	}
	return p.ParseAmount(raw, rowNum)
}
