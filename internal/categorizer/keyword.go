package categorizer

import (
	"strings"

	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/models"
)

// Predicate decides whether a rule applies to a transaction.
type Predicate func(tx *models.Transaction) bool

// Rule pairs a predicate with the assignment it produces.
type Rule struct {
	Keyword   string
	Predicate Predicate
	Outcome   models.CategoryAssignment
}

// KeywordStrategy evaluates an ordered list of rules, first match wins.
type KeywordStrategy struct {
	name   string
	rules  []Rule
	logger logging.Logger
}

// Strategy names
const (
	StrategyMerchant    = "merchant"
	StrategyDescription = "description_keyword"
)

// NewMerchantStrategy builds the merchant rules. A merchant keyword matches
// when it occurs in the merchant token or in the description.
func NewMerchantStrategy(rules []models.KeywordRule, logger logging.Logger) *KeywordStrategy {
	return newKeywordStrategy(StrategyMerchant, rules, func(keyword string) Predicate {
		return func(tx *models.Transaction) bool {
			return containsFold(tx.MerchantName(), keyword) || containsFold(tx.Description, keyword)
		}
	}, logger)
}

// NewDescriptionStrategy builds the description-keyword rules.
func NewDescriptionStrategy(rules []models.KeywordRule, logger logging.Logger) *KeywordStrategy {
	return newKeywordStrategy(StrategyDescription, rules, func(keyword string) Predicate {
		return func(tx *models.Transaction) bool {
			return containsFold(tx.Description, keyword)
		}
	}, logger)
}

func newKeywordStrategy(name string, rules []models.KeywordRule, predicateFor func(string) Predicate, logger logging.Logger) *KeywordStrategy {
	s := &KeywordStrategy{
		name:   name,
		rules:  make([]Rule, 0, len(rules)),
		logger: logger,
	}
	for _, r := range rules {
		keyword := strings.ToLower(strings.TrimSpace(r.Keyword))
		if keyword == "" {
			logger.Warn("Ignoring rule with empty keyword",
				logging.F("strategy", name),
				logging.F(logging.FieldCategory, r.Assignment.Category))
			continue
		}
		s.rules = append(s.rules, Rule{
			Keyword:   keyword,
			Predicate: predicateFor(keyword),
			Outcome:   r.Assignment,
		})
	}
	return s
}

// Name returns the strategy name.
func (s *KeywordStrategy) Name() string {
	return s.name
}

// Len returns the number of usable rules.
func (s *KeywordStrategy) Len() int {
	return len(s.rules)
}

// Categorize returns the outcome of the first rule whose predicate holds.
func (s *KeywordStrategy) Categorize(tx *models.Transaction) (models.CategoryAssignment, bool) {
	for _, rule := range s.rules {
		if rule.Predicate(tx) {
			s.logger.Debug("Transaction matched rule",
				logging.F("strategy", s.name),
				logging.F("keyword", rule.Keyword),
				logging.F(logging.FieldTransactionID, tx.ID),
				logging.F(logging.FieldCategory, rule.Outcome.Category))
			return rule.Outcome, true
		}
	}
	return models.CategoryAssignment{}, false
}

// containsFold reports whether s contains the already lowercased keyword.
func containsFold(s, keyword string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), keyword)
}
