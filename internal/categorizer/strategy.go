package categorizer

import "github.com/devjuank/FinanceService/internal/models"

// CategorizationStrategy is one ordered group of rules. Strategies are
// consulted in order and the first one that reports a match decides.
type CategorizationStrategy interface {
	// Categorize returns the assignment of the first matching rule, if any.
	// It must depend only on the transaction's description and merchant.
	Categorize(tx *models.Transaction) (models.CategoryAssignment, bool)

	// Name returns the name of this strategy for logging and stats.
	Name() string
}
