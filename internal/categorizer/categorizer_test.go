package categorizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/models"
)

func testTable() models.RuleTable {
	return models.RuleTable{
		Merchants: []models.KeywordRule{
			models.NewKeywordRule("Spotify", "entretenimiento", "musica"),
			models.NewKeywordRule("rappi", "comida", "delivery"),
		},
		DescriptionKeywords: []models.KeywordRule{
			models.NewKeywordRule("alquiler", "vivienda", "alquiler"),
			models.NewKeywordRule("pago", "varios", "pagos"),
		},
	}
}

func withCategory(tx models.Transaction, cat, sub string) models.Transaction {
	tx.SetCategory(cat, sub)
	return tx
}

func TestCategorizer_Apply(t *testing.T) {
	merchant := "SPOTIFY"
	tests := []struct {
		name        string
		tx          models.Transaction
		category    string
		subcategory string
	}{
		{
			name:        "merchant token matches case-insensitively",
			tx:          models.Transaction{ID: "1", Description: "P1234", Merchant: &merchant},
			category:    "entretenimiento",
			subcategory: "musica",
		},
		{
			name:        "merchant rule matches on description",
			tx:          models.Transaction{ID: "2", Description: "Pago Rappi Argentina"},
			category:    "comida",
			subcategory: "delivery",
		},
		{
			name:        "merchant rules take precedence over description rules",
			tx:          models.Transaction{ID: "3", Description: "pago spotify premium"},
			category:    "entretenimiento",
			subcategory: "musica",
		},
		{
			name:        "description rule in declared order",
			tx:          models.Transaction{ID: "4", Description: "Pago alquiler marzo"},
			category:    "vivienda",
			subcategory: "alquiler",
		},
		{
			name:        "no match keeps heuristic category",
			tx:          withCategory(models.Transaction{ID: "5", Description: "Percepción IVA"}, "impuestos", "impuestos y contribuciones"),
			category:    "impuestos",
			subcategory: "impuestos y contribuciones",
		},
	}

	c := NewCategorizer(testTable(), logging.NewMockLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := []models.Transaction{tt.tx}
			c.Apply(txs)
			assert.Equal(t, tt.category, txs[0].CategoryName())
			assert.Equal(t, tt.subcategory, txs[0].SubcategoryName())
		})
	}
}

func TestCategorizer_NoMatchLeavesNil(t *testing.T) {
	c := NewCategorizer(testTable(), nil)
	txs := []models.Transaction{{ID: "x", Description: "Kiosco"}}

	stats := c.Apply(txs)

	assert.Nil(t, txs[0].Category)
	assert.Nil(t, txs[0].Subcategory)
	assert.Equal(t, 0, stats.Hits)
	assert.Equal(t, 1, stats.Unmatched())
}

func TestCategorizer_Idempotent(t *testing.T) {
	c := NewCategorizer(testTable(), nil)
	txs := []models.Transaction{
		{ID: "1", Description: "Pago Rappi"},
		{ID: "2", Description: "Alquiler"},
		{ID: "3", Description: "Otro"},
	}

	first := c.Apply(txs)
	snapshot := make([]string, len(txs))
	for i := range txs {
		snapshot[i] = txs[i].CategoryName() + "/" + txs[i].SubcategoryName()
	}

	second := c.Apply(txs)
	for i := range txs {
		assert.Equal(t, snapshot[i], txs[i].CategoryName()+"/"+txs[i].SubcategoryName())
	}
	assert.Equal(t, first.Hits, second.Hits)
	assert.Equal(t, 2, second.Hits)
	assert.Equal(t, 1, second.HitsByStrategy[StrategyMerchant])
	assert.Equal(t, 1, second.HitsByStrategy[StrategyDescription])
	assert.Equal(t, "2/3 matched (description_keyword:1, merchant:1)", second.Summary())
}

func TestCategorizer_EmptyKeywordIgnored(t *testing.T) {
	logger := logging.NewMockLogger()
	table := models.RuleTable{Merchants: []models.KeywordRule{models.NewKeywordRule("  ", "x", "y")}}

	c := NewCategorizer(table, logger)
	txs := []models.Transaction{{ID: "1", Description: "anything"}}
	stats := c.Apply(txs)

	assert.Zero(t, stats.Hits)
	assert.True(t, logger.HasEntry("WARN", "Ignoring rule with empty keyword"))
}

type stubStore struct {
	table models.RuleTable
	err   error
}

func (s stubStore) LoadRules() (models.RuleTable, error) {
	return s.table, s.err
}

func TestNewCategorizerFromStore(t *testing.T) {
	c, err := NewCategorizerFromStore(stubStore{table: testTable()}, nil)
	require.NoError(t, err)
	_, strategy, ok := c.Categorize(&models.Transaction{Description: "ALQUILER"})
	assert.True(t, ok)
	assert.Equal(t, StrategyDescription, strategy)

	_, err = NewCategorizerFromStore(stubStore{err: errors.New("boom")}, nil)
	assert.ErrorContains(t, err, "loading rule table")
}
