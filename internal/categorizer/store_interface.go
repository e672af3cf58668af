package categorizer

import "github.com/devjuank/FinanceService/internal/models"

// RuleStoreInterface loads the rule table. It allows swapping the file-backed
// store in tests.
type RuleStoreInterface interface {
	LoadRules() (models.RuleTable, error)
}
