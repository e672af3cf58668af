// Package sink persists ledgers to their configured outputs.
package sink

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/devjuank/FinanceService/internal/common"
	"github.com/devjuank/FinanceService/internal/fileutils"
	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/models"
	"github.com/devjuank/FinanceService/internal/parsererror"
)

// Sink names.
const (
	NameJSON   = "json"
	NameCSV    = "csv"
	NameSQLite = "sqlite"
	NameGCS    = "gcs"
)

// Sink writes one named ledger, such as "consolidated_transactions" or a
// per-source snapshot like "brubank".
type Sink interface {
	Name() string
	Write(ctx context.Context, name string, transactions []models.Transaction) error
}

// JSONFileSink writes <dir>/<name>.json.
type JSONFileSink struct {
	Dir    string
	logger logging.Logger
}

// NewJSONFileSink creates a JSON sink rooted at dir.
func NewJSONFileSink(dir string, logger logging.Logger) *JSONFileSink {
	return &JSONFileSink{Dir: dir, logger: orDiscard(logger)}
}

// Name implements Sink.
func (s *JSONFileSink) Name() string { return NameJSON }

// Write implements Sink.
func (s *JSONFileSink) Write(_ context.Context, name string, transactions []models.Transaction) error {
	path := filepath.Join(s.Dir, name+".json")
	if err := writeFile(path, transactions, common.WriteLedgerJSON); err != nil {
		return &parsererror.SinkError{Sink: s.Name(), Target: path, Err: err}
	}
	s.logger.Info("Wrote ledger",
		logging.F(logging.FieldOutputFile, path),
		logging.F(logging.FieldCount, len(transactions)))
	return nil
}

// CSVFileSink writes <dir>/<name>.csv.
type CSVFileSink struct {
	Dir    string
	logger logging.Logger
}

// NewCSVFileSink creates a CSV sink rooted at dir.
func NewCSVFileSink(dir string, logger logging.Logger) *CSVFileSink {
	return &CSVFileSink{Dir: dir, logger: orDiscard(logger)}
}

// Name implements Sink.
func (s *CSVFileSink) Name() string { return NameCSV }

// Write implements Sink.
func (s *CSVFileSink) Write(_ context.Context, name string, transactions []models.Transaction) error {
	path := filepath.Join(s.Dir, name+".csv")
	if err := writeFile(path, transactions, common.WriteLedgerCSV); err != nil {
		return &parsererror.SinkError{Sink: s.Name(), Target: path, Err: err}
	}
	s.logger.Info("Wrote ledger",
		logging.F(logging.FieldOutputFile, path),
		logging.F(logging.FieldCount, len(transactions)))
	return nil
}

func writeFile(path string, transactions []models.Transaction, encode func(w io.Writer, txs []models.Transaction) error) (err error) {
	f, err := fileutils.CreateFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", closeErr)
		}
	}()
	return encode(f, transactions)
}

// Multi fans a write out to every sink in order and stops at the first
// failure.
type Multi []Sink

// Name implements Sink.
func (m Multi) Name() string { return "multi" }

// Write implements Sink.
func (m Multi) Write(ctx context.Context, name string, transactions []models.Transaction) error {
	for _, s := range m {
		if err := s.Write(ctx, name, transactions); err != nil {
			return err
		}
	}
	return nil
}

func orDiscard(logger logging.Logger) logging.Logger {
	if logger == nil {
		return logging.NewDiscardLogger()
	}
	return logger
}

// NewFileSinkForPath returns the file sink matching path's extension
// (.json or .csv) and the ledger name to write it under.
func NewFileSinkForPath(path string, logger logging.Logger) (Sink, string, error) {
	dir := filepath.Dir(path)
	ext := strings.ToLower(filepath.Ext(path))
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch ext {
	case ".json":
		return NewJSONFileSink(dir, logger), name, nil
	case ".csv":
		return NewCSVFileSink(dir, logger), name, nil
	default:
		return nil, "", fmt.Errorf("unsupported ledger format %q (expected .json or .csv)", ext)
	}
}
