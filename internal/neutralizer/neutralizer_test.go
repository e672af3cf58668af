package neutralizer

import (
	"fmt"
	"math/rand"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/models"
)

func date(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func transfer(id, day, amount string) models.Transaction {
	return models.Transaction{
		ID:         id,
		Date:       date(day),
		Amount:     decimal.RequireFromString(amount),
		IsTransfer: true,
	}
}

func TestNeutralizer_MatchesPair(t *testing.T) {
	txs := []models.Transaction{
		transfer("debit", "2024-03-10", "-1000.00"),
		transfer("credit", "2024-03-11", "1000.00"),
	}

	pairs := NewNeutralizer(DefaultOptions(), logging.NewMockLogger()).Apply(txs)

	require.Len(t, pairs, 1)
	assert.Equal(t, Pair{DebitID: "debit", CreditID: "credit"}, pairs[0])
	for _, tx := range txs {
		assert.Equal(t, models.CategoryInternalTransfer, tx.CategoryName())
		assert.True(t, tx.Neutralized)
	}
}

func TestNeutralizer_UnmatchedTransferUnchanged(t *testing.T) {
	sub := "salidas"
	debit := transfer("d", "2024-01-01", "-500.00")
	debit.Subcategory = &sub
	txs := []models.Transaction{
		debit,
		transfer("late", "2024-01-05", "500.00"),
		transfer("early", "2023-12-30", "500.00"),
		transfer("small", "2024-01-02", "497.49"),
		transfer("big", "2024-01-02", "502.51"),
	}

	pairs := NewNeutralizer(DefaultOptions(), nil).Apply(txs)

	assert.Empty(t, pairs)
	for _, tx := range txs {
		assert.Nil(t, tx.Category, tx.ID)
		assert.False(t, tx.Neutralized, tx.ID)
	}
	assert.Equal(t, "salidas", txs[0].SubcategoryName())
}

func TestNeutralizer_ToleranceBoundary(t *testing.T) {
	tests := []struct {
		credit string
		match  bool
	}{
		{credit: "100.51", match: false},
		{credit: "100.49", match: true},
		{credit: "100.50", match: true},
		{credit: "99.50", match: true},
		{credit: "99.49", match: false},
	}

	for _, tt := range tests {
		t.Run(tt.credit, func(t *testing.T) {
			txs := []models.Transaction{
				transfer("d", "2024-05-01", "-100.00"),
				transfer("c", "2024-05-01", tt.credit),
			}
			pairs := NewNeutralizer(DefaultOptions(), nil).Apply(txs)
			assert.Equal(t, tt.match, len(pairs) == 1)
		})
	}
}

func TestNeutralizer_DateWindow(t *testing.T) {
	tests := []struct {
		creditDate string
		match      bool
	}{
		{"2024-02-27", false},
		{"2024-02-28", true},
		{"2024-02-29", true},
		{"2024-03-03", true},
		{"2024-03-04", false},
	}

	for _, tt := range tests {
		t.Run(tt.creditDate, func(t *testing.T) {
			txs := []models.Transaction{
				transfer("d", "2024-02-29", "-250.00"),
				transfer("c", tt.creditDate, "250.00"),
			}
			pairs := NewNeutralizer(DefaultOptions(), nil).Apply(txs)
			assert.Equal(t, tt.match, len(pairs) == 1)
		})
	}
}

func TestNeutralizer_IgnoresUnflaggedAndZero(t *testing.T) {
	plain := transfer("plain-credit", "2024-03-10", "1000.00")
	plain.IsTransfer = false
	txs := []models.Transaction{
		transfer("d", "2024-03-10", "-1000.00"),
		plain,
		transfer("zero", "2024-03-10", "0"),
	}

	pairs := NewNeutralizer(DefaultOptions(), nil).Apply(txs)

	assert.Empty(t, pairs)
	assert.False(t, txs[1].Neutralized)
}

func TestNeutralizer_GreedyFirstCandidate(t *testing.T) {
	// Input order is not chronological; matching follows date order.
	txs := []models.Transaction{
		transfer("c2", "2024-03-12", "1000.00"),
		transfer("d2", "2024-03-11", "-1000.00"),
		transfer("c1", "2024-03-11", "1000.00"),
		transfer("d1", "2024-03-10", "-1000.00"),
	}

	pairs := NewNeutralizer(DefaultOptions(), nil).Apply(txs)

	assert.Equal(t, []Pair{
		{DebitID: "d1", CreditID: "c1"},
		{DebitID: "d2", CreditID: "c2"},
	}, pairs)
}

func TestNeutralizer_KeepsSubcategoryAndFlags(t *testing.T) {
	sub := "propias"
	d := transfer("d", "2024-03-10", "-10.00")
	d.Subcategory = &sub
	txs := []models.Transaction{d, transfer("c", "2024-03-10", "10.00")}

	NewNeutralizer(DefaultOptions(), nil).Apply(txs)

	assert.Equal(t, "propias", txs[0].SubcategoryName())
	assert.True(t, txs[0].IsTransfer)
	assert.True(t, txs[1].IsTransfer)
}

func TestNeutralizer_Soundness(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	start := date("2024-01-01")

	var txs []models.Transaction
	for i := 0; i < 400; i++ {
		cents := int64(rng.Intn(20)+1) * 5000
		amount := decimal.New(cents, -2)
		if rng.Intn(2) == 0 {
			amount = amount.Neg()
		}
		if rng.Intn(10) == 0 {
			amount = amount.Add(decimal.New(int64(rng.Intn(100)), -2))
		}
		txs = append(txs, models.Transaction{
			ID:         fmt.Sprintf("tx-%03d", i),
			Date:       start.AddDays(rng.Intn(60)),
			Amount:     amount,
			IsTransfer: rng.Intn(4) != 0,
		})
	}
	byID := make(map[string]models.Transaction, len(txs))
	for _, tx := range txs {
		byID[tx.ID] = tx
	}

	pairs := NewNeutralizer(DefaultOptions(), nil).Apply(txs)
	require.NotEmpty(t, pairs)

	seen := make(map[string]bool)
	for _, p := range pairs {
		assert.False(t, seen[p.DebitID], "debit %s matched twice", p.DebitID)
		assert.False(t, seen[p.CreditID], "credit %s matched twice", p.CreditID)
		seen[p.DebitID] = true
		seen[p.CreditID] = true

		d, c := byID[p.DebitID], byID[p.CreditID]
		assert.True(t, d.IsTransfer && c.IsTransfer)
		assert.True(t, d.Amount.IsNegative())
		assert.True(t, c.Amount.IsPositive())

		a := d.Amount.Abs()
		assert.True(t, c.Amount.GreaterThanOrEqual(a.Mul(decimal.RequireFromString("0.995"))))
		assert.True(t, c.Amount.LessThanOrEqual(a.Mul(decimal.RequireFromString("1.005"))))
		assert.False(t, c.Date.Before(d.Date.AddDays(-1)))
		assert.False(t, c.Date.After(d.Date.AddDays(3)))
	}

	neutralized := 0
	for _, tx := range txs {
		if tx.Neutralized {
			neutralized++
			assert.True(t, seen[tx.ID])
		}
	}
	assert.Equal(t, 2*len(pairs), neutralized)
}
