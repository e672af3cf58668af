package parser

import (
	"github.com/shopspring/decimal"

	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/models"
)

// BaseParser carries what every adapter shares: its logger and the source it
// emits records for. Adapters embed it:
//
//	type Parser struct {
//		parser.BaseParser
//	}
type BaseParser struct {
	logger logging.Logger
	source Source
}

// NewBaseParser creates a BaseParser. A nil logger discards output.
func NewBaseParser(source Source, logger logging.Logger) BaseParser {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return BaseParser{
		logger: logger.WithFields(
			logging.F(logging.FieldSource, source.Name),
			logging.F(logging.FieldAccount, source.Account)),
		source: source,
	}
}

// SetLogger replaces the logger.
func (b *BaseParser) SetLogger(logger logging.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// GetLogger returns the logger.
func (b *BaseParser) GetLogger() logging.Logger {
	return b.logger
}

// Source returns the source identity.
func (b *BaseParser) Source() Source {
	return b.source
}

// NewBuilder starts a transaction for this source with its default currency.
func (b *BaseParser) NewBuilder() *models.TransactionBuilder {
	return models.NewTransactionBuilder(b.source.Name, b.source.Account).
		WithCurrency(b.source.Currency)
}

// Flags evaluates the source keyword heuristics against description.
func (b *BaseParser) Flags(description string) models.Flags {
	return b.source.Keywords.Flags(description)
}

// ParseAmount parses a raw amount cell, noting unparseable values that fall
// back to zero.
func (b *BaseParser) ParseAmount(raw string, row int) decimal.Decimal {
	amount, ok := models.ParseAmountChecked(raw)
	if !ok {
		b.logger.Debug("Amount not understood, using zero",
			logging.F(logging.FieldRow, row),
			logging.F(logging.FieldValue, raw))
	}
	return amount
}

// Skip records a dropped row.
func (b *BaseParser) Skip(result *Result, row int, reason string) {
	b.logger.Debug("Skipping row",
		logging.F(logging.FieldRow, row),
		logging.F(logging.FieldReason, reason))
	result.Skipped = append(result.Skipped, SkippedRow{Row: row, Reason: reason})
}

// Add builds the transaction and appends it, or records the row as skipped
// when the builder fails.
func (b *BaseParser) Add(result *Result, row int, builder *models.TransactionBuilder) {
	tx, err := builder.Build()
	if err != nil {
		b.Skip(result, row, err.Error())
		return
	}
	result.Transactions = append(result.Transactions, tx)
}
