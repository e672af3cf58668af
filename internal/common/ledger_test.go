package common

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devjuank/FinanceService/internal/models"
)

func sampleLedger(t *testing.T) []models.Transaction {
	t.Helper()
	a, err := models.NewTransactionBuilder("brubank", "caja_ahorro_pesos").
		WithDate(civil.Date{Year: 2024, Month: 3, Day: 10}).
		WithAmount(decimal.RequireFromString("-1000")).
		WithCurrency("ARS").
		WithDescription("Transferencia enviada").
		WithBalance(decimal.RequireFromString("5000")).
		WithFlags(models.Flags{IsTransfer: true}).
		Build()
	require.NoError(t, err)
	a.SetCategory(models.CategoryInternalTransfer, "")
	a.Neutralized = true

	b, err := models.NewTransactionBuilder("deel", "balance_usd").
		WithDate(civil.Date{Year: 2024, Month: 3, Day: 12}).
		WithAmount(decimal.RequireFromString("2500.5")).
		WithCurrency("USD").
		WithDescription("client_payment: Acme, Inc. Contract").
		WithMerchant("Acme, Inc.").
		Build()
	require.NoError(t, err)
	return []models.Transaction{a, b}
}

func TestLedgerJSON_Shape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLedgerJSON(&buf, sampleLedger(t)))

	var records []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 2)

	first := records[0]
	assert.Len(t, first, 16)
	assert.Equal(t, "2024-03-10", first["date"])
	assert.Equal(t, -1000.0, first["amount"])
	assert.Equal(t, 5000.0, first["balance"])
	assert.Equal(t, "debit", first["direction"])
	assert.Nil(t, first["merchant"])
	assert.Nil(t, first["subcategory"])
	assert.Equal(t, true, first["neutralized"])
	assert.Nil(t, records[1]["balance"])
	assert.Equal(t, "Acme, Inc.", records[1]["merchant"])
}

func TestLedgerJSON_ReadBack(t *testing.T) {
	ledger := sampleLedger(t)
	var buf bytes.Buffer
	require.NoError(t, WriteLedgerJSON(&buf, ledger))

	decoded, err := ReadLedgerJSON(&buf)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, ledger[0].ID, decoded[0].ID)
	assert.Equal(t, ledger[0].Date, decoded[0].Date)
	assert.True(t, ledger[1].Amount.Equal(decoded[1].Amount))
}

func TestLedgerJSON_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLedgerJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestLedgerCSV_ReadBack(t *testing.T) {
	ledger := sampleLedger(t)
	var buf bytes.Buffer
	require.NoError(t, WriteLedgerCSV(&buf, ledger))

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Equal(t, "id,source,account,date,amount,currency,description,direction,merchant,category,subcategory,balance,is_transfer,is_fee,is_tax,neutralized", header)

	decoded, err := ReadLedgerCSV(&buf)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, ledger[0].ID, decoded[0].ID)
	assert.Equal(t, models.CategoryInternalTransfer, decoded[0].CategoryName())
	assert.True(t, decoded[0].Neutralized)
	assert.True(t, decoded[0].IsTransfer)
	assert.Nil(t, decoded[1].Balance)
	assert.Equal(t, "Acme, Inc.", decoded[1].MerchantName())
}

func TestLedgerCSVRow_InvalidValues(t *testing.T) {
	_, err := LedgerCSVRow{Date: "10/03/2024", Amount: "1"}.Transaction()
	assert.ErrorContains(t, err, "invalid date")

	_, err = LedgerCSVRow{Date: "2024-03-10", Amount: "abc"}.Transaction()
	assert.ErrorContains(t, err, "invalid amount")

	_, err = LedgerCSVRow{Date: "2024-03-10", Amount: "1", IsFee: "maybe"}.Transaction()
	assert.ErrorContains(t, err, "invalid boolean")
}

func TestSortByDateDesc(t *testing.T) {
	txs := []models.Transaction{
		{ID: "a", Date: civil.Date{Year: 2024, Month: 1, Day: 1}},
		{ID: "b", Date: civil.Date{Year: 2024, Month: 2, Day: 1}},
		{ID: "c", Date: civil.Date{Year: 2024, Month: 1, Day: 1}},
	}
	SortByDateDesc(txs)
	assert.Equal(t, []string{"b", "a", "c"}, []string{txs[0].ID, txs[1].ID, txs[2].ID})
}
