package common

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/devjuank/FinanceService/internal/models"
)

// LedgerCSVRow is the tabular form of a ledger record. Absent optional
// values are written as empty cells.
type LedgerCSVRow struct {
	ID          string `csv:"id"`
	Source      string `csv:"source"`
	Account     string `csv:"account"`
	Date        string `csv:"date"`
	Amount      string `csv:"amount"`
	Currency    string `csv:"currency"`
	Description string `csv:"description"`
	Direction   string `csv:"direction"`
	Merchant    string `csv:"merchant"`
	Category    string `csv:"category"`
	Subcategory string `csv:"subcategory"`
	Balance     string `csv:"balance"`
	IsTransfer  string `csv:"is_transfer"`
	IsFee       string `csv:"is_fee"`
	IsTax       string `csv:"is_tax"`
	Neutralized string `csv:"neutralized"`
}

// ToLedgerCSVRow converts a transaction to its tabular form.
func ToLedgerCSVRow(tx models.Transaction) LedgerCSVRow {
	row := LedgerCSVRow{
		ID:          tx.ID,
		Source:      tx.Source,
		Account:     tx.Account,
		Date:        tx.Date.String(),
		Amount:      tx.Amount.StringFixed(2),
		Currency:    tx.Currency,
		Description: tx.Description,
		Direction:   tx.Direction.String(),
		Merchant:    tx.MerchantName(),
		Category:    tx.CategoryName(),
		Subcategory: tx.SubcategoryName(),
		IsTransfer:  strconv.FormatBool(tx.IsTransfer),
		IsFee:       strconv.FormatBool(tx.IsFee),
		IsTax:       strconv.FormatBool(tx.IsTax),
		Neutralized: strconv.FormatBool(tx.Neutralized),
	}
	if tx.Balance != nil {
		row.Balance = tx.Balance.StringFixed(2)
	}
	return row
}

// Transaction converts the row back into a transaction.
func (r LedgerCSVRow) Transaction() (models.Transaction, error) {
	date, err := civil.ParseDate(strings.TrimSpace(r.Date))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid date %q: %w", r.Date, err)
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(r.Amount))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid amount %q: %w", r.Amount, err)
	}

	tx := models.Transaction{
		ID:          r.ID,
		Source:      r.Source,
		Account:     r.Account,
		Date:        date,
		Amount:      amount,
		Currency:    r.Currency,
		Description: r.Description,
		Direction:   models.TransactionDirection(r.Direction),
		Merchant:    models.OptionalString(r.Merchant),
		Category:    models.OptionalString(r.Category),
		Subcategory: models.OptionalString(r.Subcategory),
	}

	if strings.TrimSpace(r.Balance) != "" {
		balance, err := decimal.NewFromString(strings.TrimSpace(r.Balance))
		if err != nil {
			return models.Transaction{}, fmt.Errorf("invalid balance %q: %w", r.Balance, err)
		}
		tx.Balance = &balance
	}

	flags := []struct {
		raw string
		dst *bool
	}{
		{r.IsTransfer, &tx.IsTransfer},
		{r.IsFee, &tx.IsFee},
		{r.IsTax, &tx.IsTax},
		{r.Neutralized, &tx.Neutralized},
	}
	for _, f := range flags {
		if strings.TrimSpace(f.raw) == "" {
			continue
		}
		v, err := strconv.ParseBool(strings.TrimSpace(f.raw))
		if err != nil {
			return models.Transaction{}, fmt.Errorf("invalid boolean %q: %w", f.raw, err)
		}
		*f.dst = v
	}
	return tx, nil
}

// WriteLedgerCSV writes transactions as CSV with a header row.
func WriteLedgerCSV(w io.Writer, transactions []models.Transaction) error {
	rows := make([]LedgerCSVRow, 0, len(transactions))
	for _, tx := range transactions {
		rows = append(rows, ToLedgerCSVRow(tx))
	}
	return WriteCSV(w, rows, ',')
}

// ReadLedgerCSV reads a ledger written by WriteLedgerCSV.
func ReadLedgerCSV(r io.Reader) ([]models.Transaction, error) {
	rows, err := ReadCSV[LedgerCSVRow](r, ',')
	if err != nil {
		return nil, err
	}
	transactions := make([]models.Transaction, 0, len(rows))
	for i, row := range rows {
		tx, err := row.Transaction()
		if err != nil {
			return nil, fmt.Errorf("ledger row %d: %w", i+1, err)
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

// WriteLedgerJSON writes transactions as an indented JSON array.
func WriteLedgerJSON(w io.Writer, transactions []models.Transaction) error {
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(transactions); err != nil {
		return fmt.Errorf("error encoding ledger JSON: %w", err)
	}
	return nil
}

// ReadLedgerJSON decodes a JSON array of transactions.
func ReadLedgerJSON(r io.Reader) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := json.NewDecoder(r).Decode(&transactions); err != nil {
		return nil, fmt.Errorf("error decoding ledger JSON: %w", err)
	}
	return transactions, nil
}

// SortByDateDesc orders transactions newest first, keeping the relative
// order of records on the same date.
func SortByDateDesc(transactions []models.Transaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Date.After(transactions[j].Date)
	})
}
