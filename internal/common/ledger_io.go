package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/devjuank/FinanceService/internal/models"
)

// ReadLedgerFile reads a ledger from a .json or .csv file.
func ReadLedgerFile(path string) ([]models.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ReadLedgerJSON(f)
	case ".csv":
		return ReadLedgerCSV(f)
	default:
		return nil, fmt.Errorf("unsupported ledger format %q (expected .json or .csv)", filepath.Ext(path))
	}
}
