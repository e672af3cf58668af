package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Flags holds the build-time heuristic markers of a transaction.
type Flags struct {
	IsTransfer bool
	IsFee      bool
	IsTax      bool
}

// Any reports whether at least one flag is set.
func (f Flags) Any() bool {
	return f.IsTransfer || f.IsFee || f.IsTax
}

// TransactionBuilder provides a fluent API for constructing canonical transactions
type TransactionBuilder struct {
	tx             Transaction
	rawDescription string
	dateSet        bool
	err            error
}

// NewTransactionBuilder creates a builder for a transaction of the given source account
func NewTransactionBuilder(source, account string) *TransactionBuilder {
	return &TransactionBuilder{
		tx: Transaction{
			Source:  source,
			Account: account,
			Amount:  decimal.Zero,
		},
	}
}

// WithDate sets the calendar date
func (b *TransactionBuilder) WithDate(date civil.Date) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	if !date.IsValid() {
		b.err = fmt.Errorf("invalid date %q", date.String())
		return b
	}
	b.tx.Date = date
	b.dateSet = true
	return b
}

// WithDateString parses dateStr with the given time layout
func (b *TransactionBuilder) WithDateString(layout, dateStr string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	if strings.TrimSpace(dateStr) == "" {
		b.err = errors.New("date cannot be empty")
		return b
	}
	t, err := time.Parse(layout, strings.TrimSpace(dateStr))
	if err != nil {
		b.err = fmt.Errorf("invalid date %q: %w", dateStr, err)
		return b
	}
	return b.WithDate(civil.DateOf(t))
}

// WithAmount sets the signed amount. It is rounded to two places on Build.
func (b *TransactionBuilder) WithAmount(amount decimal.Decimal) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.Amount = amount
	return b
}

// WithAmountFromString sets the amount using ParseAmount
func (b *TransactionBuilder) WithAmountFromString(amountStr string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.Amount = ParseAmount(amountStr)
	return b
}

// WithCurrency sets the currency code
func (b *TransactionBuilder) WithCurrency(currency string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.Currency = strings.ToUpper(strings.TrimSpace(currency))
	return b
}

// WithDescription sets the raw description. The identity is computed from
// the raw value while the stored description is trimmed.
func (b *TransactionBuilder) WithDescription(raw string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.rawDescription = raw
	b.tx.Description = strings.TrimSpace(raw)
	return b
}

// WithMerchant sets the merchant token. Blank values leave it absent.
func (b *TransactionBuilder) WithMerchant(merchant string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.Merchant = OptionalString(merchant)
	return b
}

// WithCategory sets the inferred category and subcategory
func (b *TransactionBuilder) WithCategory(category, subcategory *string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.Category = category
	b.tx.Subcategory = subcategory
	return b
}

// WithBalance sets the running balance reported by the source
func (b *TransactionBuilder) WithBalance(balance decimal.Decimal) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.Balance = OptionalDecimal(RoundAmount(balance))
	return b
}

// WithFlags sets the transfer/fee/tax markers
func (b *TransactionBuilder) WithFlags(flags Flags) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.IsTransfer = flags.IsTransfer
	b.tx.IsFee = flags.IsFee
	b.tx.IsTax = flags.IsTax
	return b
}

// Build validates the transaction, derives direction and identity, and returns it
func (b *TransactionBuilder) Build() (Transaction, error) {
	if b.err != nil {
		return Transaction{}, fmt.Errorf("builder error: %w", b.err)
	}
	if b.tx.Source == "" {
		return Transaction{}, errors.New("source is required")
	}
	if b.tx.Account == "" {
		return Transaction{}, errors.New("account is required")
	}
	if !b.dateSet {
		return Transaction{}, errors.New("date is required")
	}
	if b.tx.Currency == "" {
		return Transaction{}, errors.New("currency is required")
	}

	tx := b.tx
	tx.Amount = RoundAmount(tx.Amount)
	tx.Direction = DirectionFromAmount(tx.Amount)
	if tx.IsTransfer || tx.IsFee || tx.IsTax {
		tx.Merchant = nil
	}
	tx.Neutralized = false
	tx.ID = GenerateID(tx.Source, tx.Account, tx.Date, tx.Amount, b.rawDescription)

	return tx, nil
}

// Clone creates a copy of the current builder state
func (b *TransactionBuilder) Clone() *TransactionBuilder {
	return &TransactionBuilder{
		tx:             b.tx,
		rawDescription: b.rawDescription,
		dateSet:        b.dateSet,
		err:            b.err,
	}
}
