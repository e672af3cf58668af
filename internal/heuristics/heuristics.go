// Package heuristics holds the institution-specific keyword lists used at
// build time to flag transfers, fees and taxes, and the default category
// inference table.
package heuristics

import (
	"strings"

	"github.com/devjuank/FinanceService/internal/models"
)

// Keywords is the per-source configuration of flag heuristics. Matching is a
// case-insensitive substring test against the description.
type Keywords struct {
	Transfer []string `mapstructure:"transfer_keywords" yaml:"transfer_keywords"`
	Fee      []string `mapstructure:"fee_keywords" yaml:"fee_keywords"`
	Tax      []string `mapstructure:"tax_keywords" yaml:"tax_keywords"`
}

// Flags evaluates the keyword lists against description.
func (k Keywords) Flags(description string) models.Flags {
	return models.Flags{
		IsTransfer: ContainsAny(description, k.Transfer...),
		IsFee:      ContainsAny(description, k.Fee...),
		IsTax:      ContainsAny(description, k.Tax...),
	}
}

// IsZero reports whether no keyword list is configured.
func (k Keywords) IsZero() bool {
	return len(k.Transfer) == 0 && len(k.Fee) == 0 && len(k.Tax) == 0
}

// ContainsAny reports whether s contains any of the keywords, ignoring case.
// Empty keywords never match.
func ContainsAny(s string, keywords ...string) bool {
	lower := strings.ToLower(s)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// FirstWord returns the first space-separated token of s, or "" for blank input.
func FirstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// MerchantAfter returns the first word following prefix when s contains it.
func MerchantAfter(s, prefix string) string {
	idx := strings.Index(s, prefix)
	if idx < 0 {
		return ""
	}
	return FirstWord(s[idx+len(prefix):])
}
