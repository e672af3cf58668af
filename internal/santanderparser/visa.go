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

	"github.com/devjuank/FinanceService/internal/heuristics"
	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/models"
	"github.com/devjuank/FinanceService/internal/parser"
	"github.com/devjuank/FinanceService/internal/parsererror"
	"github.com/devjuank/FinanceService/internal/pdftext"
)

var (
	closingYear = regexp.MustCompile(`CIERRE\s+\d{2}\s+\w{3}\s+(\d{2})`)
	// year, month name, day, voucher, description, amount and an optional
	// second currency column
	visaLine = regexp.MustCompile(`(\d{2})\s+([a-zA-Z]{3,10})\s+(\d{2})\s+.*?\s+(.*?)\s+([\d.,]+-?)(\s+[\d.,]+-?)?$`)
)

// headerMarkers appear on the closing/due date lines, whose dates would
// otherwise read as movements.
var headerMarkers = []string{"CIERRE", "VENCIMIENTO"}

var spanishMonths = map[string]time.Month{
	"enero": time.January, "febrero": time.February, "marzo": time.March,
	"abril": time.April, "mayo": time.May, "junio": time.June,
	"julio": time.July, "agosto": time.August, "setiembre": time.September,
	"septiembre": time.September, "octubre": time.October,
	"noviembre": time.November, "diciembre": time.December,
	"ene": time.January, "feb": time.February, "mar": time.March,
	"abr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "ago": time.August, "set": time.September,
	"sep": time.September, "oct": time.October, "nov": time.November,
	"dic": time.December,
}

// VisaParser implements parser.Parser for the Visa card statement. Amounts
// with a trailing '-' are payments and refunds (credits); all others are
// purchases (debits).
type VisaParser struct {
	parser.BaseParser
	extractor   pdftext.Extractor
	defaultYear int
}

// NewVisaParser creates a Visa parser. defaultYear is used when the closing
// date header is missing; zero means the current year. A nil extractor uses
// pdftotext in layout mode.
func NewVisaParser(source parser.Source, extractor pdftext.Extractor, defaultYear int, logger logging.Logger) *VisaParser {
	if extractor == nil {
		extractor = pdftext.NewPdftotextExtractor(true)
	}
	if defaultYear == 0 {
		defaultYear = time.Now().Year()
	}
	return &VisaParser{
		BaseParser:  parser.NewBaseParser(source, logger),
		extractor:   extractor,
		defaultYear: defaultYear,
	}
}

// Kind implements parser.Parser.
func (p *VisaParser) Kind() string {
	return heuristics.KindSantanderVisa
}

// Parse implements parser.Parser.
func (p *VisaParser) Parse(ctx context.Context, r io.Reader) (*parser.Result, error) {
	text, err := p.extractor.ExtractText(ctx, r)
	if err != nil {
		return nil, &parsererror.InvalidFormatError{
			ExpectedFormat: "Santander Visa PDF statement",
			Msg:            fmt.Sprintf("text extraction failed: %v", err),
		}
	}

	year := p.statementYear(text)
	result := &parser.Result{}

	for i, line := range pdftext.Lines(text) {
		if isHeaderLine(line) {
			continue
		}
		match := visaLine.FindStringSubmatch(strings.TrimRight(line, " \t"))
		if match == nil {
			continue
		}
		month, ok := spanishMonths[strings.ToLower(match[2])]
		if !ok {
			continue
		}
		result.RowsRead++
		p.convertLine(result, i+1, year, month, match)
	}
	return result, nil
}

func (p *VisaParser) convertLine(result *parser.Result, rowNum, year int, month time.Month, match []string) {
	day, err := strconv.Atoi(match[3])
	if err != nil {
		p.Skip(result, rowNum, fmt.Sprintf("invalid day %q", match[3]))
		return
	}
	date := civil.Date{Year: year, Month: month, Day: day}
	if !date.IsValid() {
		p.Skip(result, rowNum, fmt.Sprintf("invalid date %s", date))
		return
	}

	description := strings.TrimSpace(match[4])
	raw, isCredit := models.SplitTrailingSign(match[5])
	amount := p.ParseAmount(raw, rowNum).Abs()
	if !isCredit {
		amount = amount.Neg()
	}
	if amount.IsZero() {
		p.Skip(result, rowNum, "zero amount")
		return
	}

	category, subcategory := heuristics.InferCategory(description)

	p.Add(result, rowNum, p.NewBuilder().
		WithDate(date).
		WithAmount(amount).
		WithDescription(description).
		WithMerchant(heuristics.FirstWord(description)).
		WithCategory(category, subcategory).
		WithFlags(p.Flags(description)))
}

func (p *VisaParser) statementYear(text string) int {
	if m := closingYear.FindStringSubmatch(text); m != nil {
		if yy, err := strconv.Atoi(m[1]); err == nil {
			return 2000 + yy
		}
	}
	p.GetLogger().Debug("Closing date not found, using default year",
		logging.F("year", p.defaultYear))
	return p.defaultYear
}

func isHeaderLine(line string) bool {
	upper := strings.ToUpper(line)
	for _, marker := range headerMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}
