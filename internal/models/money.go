package models

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var nonAmountChars = regexp.MustCompile(`[^\d,.\-]`)

// ParseAmount turns a locale-ambiguous amount string into a signed decimal.
// It never fails: unparseable input yields zero.
func ParseAmount(amountStr string) decimal.Decimal {
	amount, _ := ParseAmountChecked(amountStr)
	return amount
}

// ParseAmountChecked behaves like ParseAmount and additionally reports whether
// the input was understood. Placeholders for "no value" ("", "-", "nan") count
// as understood zeros; anything else that falls back to zero reports false so
// the caller can log it.
//
// When both '.' and ',' are present, '.' is the thousands separator and ','
// the decimal point. A lone ',' is the decimal point. Trailing sign markers
// are not interpreted here.
func ParseAmountChecked(amountStr string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(amountStr)
	if isNoValue(trimmed) {
		return decimal.Zero, true
	}

	clean := nonAmountChars.ReplaceAllString(trimmed, "")
	if isNoValue(clean) {
		return decimal.Zero, true
	}

	hasComma := strings.Contains(clean, ",")
	hasDot := strings.Contains(clean, ".")
	switch {
	case hasComma && hasDot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case hasComma:
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	amount, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

// SplitTrailingSign strips a trailing '-' marker (as printed on card
// statements) and reports whether it was present.
func SplitTrailingSign(amountStr string) (string, bool) {
	trimmed := strings.TrimSpace(amountStr)
	if len(trimmed) > 1 && strings.HasSuffix(trimmed, "-") {
		return strings.TrimSpace(strings.TrimSuffix(trimmed, "-")), true
	}
	return trimmed, false
}

// RoundAmount rounds to the two decimal places stored in the ledger.
func RoundAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

func isNoValue(s string) bool {
	return s == "" || s == "-" || strings.EqualFold(s, "nan")
}
