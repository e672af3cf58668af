// Package parser defines the contract every statement adapter implements and
// the shared plumbing they embed.
package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/devjuank/FinanceService/internal/heuristics"
	"github.com/devjuank/FinanceService/internal/models"
	"github.com/devjuank/FinanceService/internal/parsererror"
)

// Parser turns one statement into canonical transactions.
//
// A non-nil error means the whole input contributes nothing to the ledger
// (unreadable file, missing required column). Rows that cannot be
// interpreted are recorded in Result.Skipped and never abort the input.
type Parser interface {
	// Kind returns the source kind the parser understands.
	Kind() string

	// Parse reads a statement from r.
	Parse(ctx context.Context, r io.Reader) (*Result, error)
}

// Source identifies the (source, account) pair a parser emits records for,
// together with its currency and flag heuristics.
type Source struct {
	Name     string
	Account  string
	Currency string
	Keywords heuristics.Keywords
}

// String returns "name/account".
func (s Source) String() string {
	return s.Name + "/" + s.Account
}

// SkippedRow describes a row dropped while parsing.
type SkippedRow struct {
	Row    int
	Reason string
}

// Result is the outcome of parsing one input.
type Result struct {
	Transactions []models.Transaction
	Skipped      []SkippedRow
	RowsRead     int
}

// Merge appends other into r.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.Transactions = append(r.Transactions, other.Transactions...)
	r.Skipped = append(r.Skipped, other.Skipped...)
	r.RowsRead += other.RowsRead
}

// ParseFile opens path and runs p over it. Typed parser errors that carry
// a file path are stamped with path.
func ParseFile(ctx context.Context, p Parser, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	result, err := p.Parse(ctx, f)
	if err != nil {
		attachPath(err, path)
		return nil, fmt.Errorf("parsing %s with %s: %w", path, p.Kind(), err)
	}
	return result, nil
}

func attachPath(err error, path string) {
	var missing *parsererror.MissingColumnError
	if errors.As(err, &missing) && missing.FilePath == "" {
		missing.FilePath = path
	}
	var format *parsererror.InvalidFormatError
	if errors.As(err, &format) && format.FilePath == "" {
		format.FilePath = path
	}
}
