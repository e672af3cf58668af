package models

import "strings"

// CategoryAssignment is the outcome of a categorization rule.
type CategoryAssignment struct {
	Category    string `yaml:"category" json:"category"`
	Subcategory string `yaml:"subcategory" json:"subcategory"`
}

// KeywordRule maps a lowercased keyword to a category assignment.
type KeywordRule struct {
	Keyword    string
	Assignment CategoryAssignment
}

// RuleTable holds the user-maintained categorization rules. Both lists keep
// the order in which they were declared; the first matching rule wins.
type RuleTable struct {
	Merchants           []KeywordRule
	DescriptionKeywords []KeywordRule
}

// NewKeywordRule builds a rule with its keyword normalized to lower case.
func NewKeywordRule(keyword, category, subcategory string) KeywordRule {
	return KeywordRule{
		Keyword: strings.ToLower(strings.TrimSpace(keyword)),
		Assignment: CategoryAssignment{
			Category:    category,
			Subcategory: subcategory,
		},
	}
}

// Len returns the total number of rules.
func (r RuleTable) Len() int {
	return len(r.Merchants) + len(r.DescriptionKeywords)
}

// IsEmpty reports whether the table has no rules.
func (r RuleTable) IsEmpty() bool {
	return r.Len() == 0
}
