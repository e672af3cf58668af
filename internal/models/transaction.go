// Package models provides the data structures used throughout the application.
package models

import (
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

func init() {
	// Ledger consumers expect amounts and balances as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// TransactionDirection represents the direction of a transaction
type TransactionDirection string

const (
	DirectionDebit  TransactionDirection = "debit"
	DirectionCredit TransactionDirection = "credit"
)

// String returns the direction as written in the ledger.
func (d TransactionDirection) String() string {
	return string(d)
}

// IsValid reports whether d is one of the two ledger directions.
func (d TransactionDirection) IsValid() bool {
	return d == DirectionDebit || d == DirectionCredit
}

// DirectionFromAmount returns credit for strictly positive amounts and debit otherwise.
func DirectionFromAmount(amount decimal.Decimal) TransactionDirection {
	if amount.IsPositive() {
		return DirectionCredit
	}
	return DirectionDebit
}

// Transaction is the canonical ledger record every source is normalized into.
type Transaction struct {
	ID          string               `json:"id"`
	Source      string               `json:"source"`
	Account     string               `json:"account"`
	Date        civil.Date           `json:"date"`
	Amount      decimal.Decimal      `json:"amount"`
	Currency    string               `json:"currency"`
	Description string               `json:"description"`
	Direction   TransactionDirection `json:"direction"`
	Merchant    *string              `json:"merchant"`
	Category    *string              `json:"category"`
	Subcategory *string              `json:"subcategory"`
	Balance     *decimal.Decimal     `json:"balance"`
	IsTransfer  bool                 `json:"is_transfer"`
	IsFee       bool                 `json:"is_fee"`
	IsTax       bool                 `json:"is_tax"`
	Neutralized bool                 `json:"neutralized"`
}

// IsDebit returns true if the transaction is an outflow
func (t *Transaction) IsDebit() bool {
	return t.Amount.IsNegative()
}

// IsCredit returns true if the transaction is an inflow
func (t *Transaction) IsCredit() bool {
	return t.Amount.IsPositive()
}

// Magnitude returns the absolute amount.
func (t *Transaction) Magnitude() decimal.Decimal {
	return t.Amount.Abs()
}

// MerchantName returns the merchant or an empty string when absent.
func (t *Transaction) MerchantName() string {
	if t.Merchant == nil {
		return ""
	}
	return *t.Merchant
}

// CategoryName returns the category or an empty string when absent.
func (t *Transaction) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return *t.Category
}

// SubcategoryName returns the subcategory or an empty string when absent.
func (t *Transaction) SubcategoryName() string {
	if t.Subcategory == nil {
		return ""
	}
	return *t.Subcategory
}

// SetCategory overwrites category and subcategory. Empty strings clear the field.
func (t *Transaction) SetCategory(category, subcategory string) {
	t.Category = OptionalString(category)
	t.Subcategory = OptionalString(subcategory)
}

// Key returns the (source, account) pair the transaction belongs to.
func (t *Transaction) Key() string {
	return t.Source + "/" + t.Account
}

// OptionalString returns nil for blank strings and a pointer to the trimmed value otherwise.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// OptionalDecimal returns a pointer to a copy of d.
func OptionalDecimal(d decimal.Decimal) *decimal.Decimal {
	return &d
}
