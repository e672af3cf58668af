package models

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

var idPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// GenerateID derives the deterministic transaction identity: the SHA-256 hex
// digest of source, account, ISO date, the amount rounded to two places and
// the raw (untrimmed) description, concatenated in that order.
func GenerateID(source, account string, date civil.Date, amount decimal.Decimal, rawDescription string) string {
	payload := source + account + date.String() + RoundAmount(amount).StringFixed(2) + rawDescription
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// IsValidID reports whether id is a lowercase hex digest of IDLength characters.
func IsValidID(id string) bool {
	return idPattern.MatchString(id)
}
