// Package dedup collapses ledger records that share an identity digest.
package dedup

import (
	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/models"
)

// Deduplicator keeps the first occurrence of every transaction ID.
type Deduplicator struct {
	logger logging.Logger
}

// NewDeduplicator creates a Deduplicator.
func NewDeduplicator(logger logging.Logger) *Deduplicator {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Deduplicator{logger: logger}
}

// Apply returns the transactions with later duplicates removed, preserving
// input order, and the number of records dropped. The input slice is consumed.
func (d *Deduplicator) Apply(transactions []models.Transaction) ([]models.Transaction, int) {
	seen := make(map[string]struct{}, len(transactions))
	unique := transactions[:0]
	removed := 0

	for _, tx := range transactions {
		if _, ok := seen[tx.ID]; ok {
			removed++
			d.logger.Debug("Dropping duplicate transaction",
				logging.F(logging.FieldTransactionID, tx.ID),
				logging.F(logging.FieldSource, tx.Source))
			continue
		}
		seen[tx.ID] = struct{}{}
		unique = append(unique, tx)
	}

	// release references held past the new length
	for i := len(unique); i < len(transactions); i++ {
		transactions[i] = models.Transaction{}
	}

	if removed > 0 {
		d.logger.Info("Removed duplicate transactions", logging.F(logging.FieldCount, removed))
	}
	return unique, removed
}
