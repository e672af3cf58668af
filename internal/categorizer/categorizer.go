// Package categorizer re-derives category and subcategory of ledger records
// from the user's ordered rule table.
package categorizer

import (
	"fmt"

	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/models"
)

// Categorizer applies merchant rules first and description rules second.
// Records no rule matches keep their current category.
type Categorizer struct {
	strategies []CategorizationStrategy
	logger     logging.Logger
}

// NewCategorizer builds a Categorizer from a rule table.
func NewCategorizer(table models.RuleTable, logger logging.Logger) *Categorizer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return NewCategorizerWithStrategies(logger,
		NewMerchantStrategy(table.Merchants, logger),
		NewDescriptionStrategy(table.DescriptionKeywords, logger),
	)
}

// NewCategorizerWithStrategies builds a Categorizer from explicit strategies,
// consulted in the given order.
func NewCategorizerWithStrategies(logger logging.Logger, strategies ...CategorizationStrategy) *Categorizer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Categorizer{strategies: strategies, logger: logger}
}

// NewCategorizerFromStore loads the rule table from store.
func NewCategorizerFromStore(store RuleStoreInterface, logger logging.Logger) (*Categorizer, error) {
	table, err := store.LoadRules()
	if err != nil {
		return nil, fmt.Errorf("loading rule table: %w", err)
	}
	return NewCategorizer(table, logger), nil
}

// Categorize returns the assignment for one transaction without modifying it.
func (c *Categorizer) Categorize(tx *models.Transaction) (models.CategoryAssignment, string, bool) {
	for _, strategy := range c.strategies {
		if assignment, ok := strategy.Categorize(tx); ok {
			return assignment, strategy.Name(), true
		}
	}
	return models.CategoryAssignment{}, "", false
}

// Apply rewrites category and subcategory in place for every transaction a
// rule matches. Running it twice with the same rules yields the same result.
func (c *Categorizer) Apply(transactions []models.Transaction) Stats {
	stats := newStats()
	for i := range transactions {
		stats.Evaluated++
		assignment, strategy, ok := c.Categorize(&transactions[i])
		if !ok {
			continue
		}
		transactions[i].SetCategory(assignment.Category, assignment.Subcategory)
		stats.Hits++
		stats.HitsByStrategy[strategy]++
	}

	c.logger.Info("Categorization finished",
		logging.F(logging.FieldCount, stats.Hits),
		logging.F("evaluated", stats.Evaluated))
	return stats
}
