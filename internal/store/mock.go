package store

import "github.com/devjuank/FinanceService/internal/models"

// MockRuleStore is a RuleStore stand-in for tests.
type MockRuleStore struct {
	Table     models.RuleTable
	LoadError error
	Calls     int
}

// LoadRules returns the configured table or error.
func (m *MockRuleStore) LoadRules() (models.RuleTable, error) {
	m.Calls++
	if m.LoadError != nil {
		return models.RuleTable{}, m.LoadError
	}
	return m.Table, nil
}
