// Package brubankparser reads Brubank savings-account PDF statements.
//
// After text extraction every movement occupies six consecutive lines:
// date (DD-MM-YY), reference, description, debit, credit and balance.
package brubankparser

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/devjuank/FinanceService/internal/heuristics"
	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/parser"
	"github.com/devjuank/FinanceService/internal/parsererror"
	"github.com/devjuank/FinanceService/internal/pdftext"
)

const (
	dateLayout  = "02-01-06"
	recordLines = 6
)

var dateLine = regexp.MustCompile(`^\d{2}-\d{2}-\d{2}$`)

// Parser implements parser.Parser for Brubank statements.
type Parser struct {
	parser.BaseParser
	extractor pdftext.Extractor
}

// NewParser creates a Brubank parser. A nil extractor uses pdftotext in raw mode.
func NewParser(source parser.Source, extractor pdftext.Extractor, logger logging.Logger) *Parser {
	if extractor == nil {
		extractor = pdftext.NewPdftotextExtractor(false)
	}
	return &Parser{
		BaseParser: parser.NewBaseParser(source, logger),
		extractor:  extractor,
	}
}

// Kind implements parser.Parser.
func (p *Parser) Kind() string {
	return heuristics.KindBrubank
}

// Parse implements parser.Parser.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*parser.Result, error) {
	text, err := p.extractor.ExtractText(ctx, r)
	if err != nil {
		return nil, &parsererror.InvalidFormatError{
			ExpectedFormat: "Brubank PDF statement",
			Msg:            fmt.Sprintf("text extraction failed: %v", err),
		}
	}
	return p.parseLines(pdftext.Lines(text)), nil
}

func (p *Parser) parseLines(lines []string) *parser.Result {
	result := &parser.Result{}

	for i := 0; i < len(lines); i++ {
		if !dateLine.MatchString(strings.TrimSpace(lines[i])) {
			continue
		}
		result.RowsRead++
		row := i + 1

		if i+recordLines-1 >= len(lines) {
			p.Skip(result, row, "truncated record")
			continue
		}

		description := lines[i+2]
		debit := p.ParseAmount(lines[i+3], row)
		credit := p.ParseAmount(lines[i+4], row)
		balance := p.ParseAmount(lines[i+5], row)

		flags := p.Flags(description)
		category, subcategory := heuristics.InferCategory(description)

		builder := p.NewBuilder().
			WithDateString(dateLayout, lines[i]).
			WithAmount(credit.Sub(debit)).
			WithDescription(description).
			WithMerchant(heuristics.FirstWord(description)).
			WithCategory(category, subcategory).
			WithBalance(balance).
			WithFlags(flags)

		before := len(result.Transactions)
		p.Add(result, row, builder)
		if len(result.Transactions) > before {
			i += recordLines - 1
		}
	}

	p.GetLogger().Debug("Parsed Brubank statement",
		logging.F(logging.FieldCount, len(result.Transactions)))
	return result
}
