// Package neutralizer finds the two legs of money moved between the user's
// own accounts and marks them as an internal transfer.
package neutralizer

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/models"
)

// Options controls the matching window and tolerance.
type Options struct {
	// Tolerance is the relative amount band around the debit magnitude.
	Tolerance decimal.Decimal
	// DaysBefore is how many days the credit may post before the debit.
	DaysBefore int
	// DaysAfter is how many days the credit may post after the debit.
	DaysAfter int
}

// DefaultOptions returns a ±0.5% band and a [-1, +3] day window.
func DefaultOptions() Options {
	return Options{
		Tolerance:  decimal.RequireFromString("0.005"),
		DaysBefore: 1,
		DaysAfter:  3,
	}
}

// Pair is one matched debit/credit couple.
type Pair struct {
	DebitID  string
	CreditID string
}

// Neutralizer pairs transfer-flagged debits with compatible credits.
type Neutralizer struct {
	opts   Options
	logger logging.Logger
}

// NewNeutralizer creates a Neutralizer.
func NewNeutralizer(opts Options, logger logging.Logger) *Neutralizer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Neutralizer{opts: opts, logger: logger}
}

// Apply scans debits in date order and pairs each with the first unmatched
// credit inside the amount band and date window. Both legs of a pair get the
// internal transfer category and neutralized=true. Matching is greedy: a
// credit consumed by an earlier debit is never reconsidered.
func (n *Neutralizer) Apply(transactions []models.Transaction) []Pair {
	debits, credits := n.partition(transactions)

	matched := make(map[string]struct{})
	var pairs []Pair

	lower := decimal.NewFromInt(1).Sub(n.opts.Tolerance)
	upper := decimal.NewFromInt(1).Add(n.opts.Tolerance)

	for _, di := range debits {
		d := &transactions[di]
		if _, ok := matched[d.ID]; ok {
			continue
		}

		target := d.Magnitude()
		minAmount := target.Mul(lower)
		maxAmount := target.Mul(upper)
		earliest := d.Date.AddDays(-n.opts.DaysBefore)
		latest := d.Date.AddDays(n.opts.DaysAfter)

		for _, ci := range credits {
			c := &transactions[ci]
			if _, ok := matched[c.ID]; ok {
				continue
			}
			if c.Magnitude().LessThan(minAmount) || c.Magnitude().GreaterThan(maxAmount) {
				continue
			}
			if c.Date.Before(earliest) || c.Date.After(latest) {
				continue
			}

			matched[d.ID] = struct{}{}
			matched[c.ID] = struct{}{}
			markInternal(d)
			markInternal(c)
			pairs = append(pairs, Pair{DebitID: d.ID, CreditID: c.ID})

			n.logger.Debug("Neutralized transfer pair",
				logging.F("debit_id", d.ID),
				logging.F("credit_id", c.ID),
				logging.F("amount", target.StringFixed(2)))
			break
		}
	}

	n.logger.Info("Transfer neutralization finished",
		logging.F(logging.FieldCount, len(pairs)),
		logging.F("debits", len(debits)),
		logging.F("credits", len(credits)))
	return pairs
}

// partition returns the indexes of transfer-flagged debits and credits, each
// stable-sorted by date.
func (n *Neutralizer) partition(transactions []models.Transaction) (debits, credits []int) {
	for i := range transactions {
		tx := &transactions[i]
		if !tx.IsTransfer {
			continue
		}
		switch {
		case tx.Amount.IsNegative():
			debits = append(debits, i)
		case tx.Amount.IsPositive():
			credits = append(credits, i)
		}
	}

	byDate := func(idx []int) func(a, b int) bool {
		return func(a, b int) bool {
			return transactions[idx[a]].Date.Before(transactions[idx[b]].Date)
		}
	}
	sort.SliceStable(debits, byDate(debits))
	sort.SliceStable(credits, byDate(credits))
	return debits, credits
}

func markInternal(tx *models.Transaction) {
	category := models.CategoryInternalTransfer
	tx.Category = &category
	tx.Neutralized = true
}
