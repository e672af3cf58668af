// Package factory maps configured source kinds to statement parsers.
package factory

import (
	"fmt"

	"github.com/devjuank/FinanceService/internal/brubankparser"
	"github.com/devjuank/FinanceService/internal/deelparser"
	"github.com/devjuank/FinanceService/internal/heuristics"
	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/mercadopagoparser"
	"github.com/devjuank/FinanceService/internal/parser"
	"github.com/devjuank/FinanceService/internal/pdftext"
	"github.com/devjuank/FinanceService/internal/santanderparser"
)

// Options carries the adapter settings that do not belong to parser.Source.
type Options struct {
	// Extractor overrides PDF text extraction; nil uses pdftotext.
	Extractor pdftext.Extractor
	// StatementYear is the fallback year for card statements without a
	// closing date header; zero means the current year.
	StatementYear int
}

// GetParser returns the parser for kind, bound to source.
func GetParser(kind string, source parser.Source, opts Options, logger logging.Logger) (parser.Parser, error) {
	if logger != nil {
		logger = logger.WithField(logging.FieldParser, kind)
	}

	switch kind {
	case heuristics.KindBrubank:
		return brubankparser.NewParser(source, opts.Extractor, logger), nil
	case heuristics.KindMercadoPago:
		return mercadopagoparser.NewParser(source, logger), nil
	case heuristics.KindDeel:
		return deelparser.NewParser(source, logger), nil
	case heuristics.KindSantanderXLSX:
		return santanderparser.NewXLSXParser(source, logger), nil
	case heuristics.KindSantanderVisa:
		return santanderparser.NewVisaParser(source, opts.Extractor, opts.StatementYear, logger), nil
	default:
		return nil, fmt.Errorf("unknown parser type: %s", kind)
	}
}
