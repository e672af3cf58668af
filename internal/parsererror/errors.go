// Package parsererror defines the typed errors produced while reading
// statements and validating the ledger.
package parsererror

import (
	"errors"
	"fmt"
)

// ErrNoTransactions marks a statement that was readable but yielded no records.
var ErrNoTransactions = errors.New("no transactions found")

// ParseError represents a single field that could not be parsed
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingColumnError is returned when a tabular statement lacks a required column.
// The whole file is rejected.
type MissingColumnError struct {
	FilePath string
	Parser   string
	Column   string
}

func (e *MissingColumnError) Error() string {
	if e.FilePath == "" {
		return fmt.Sprintf("%s: required column '%s' not found", e.Parser, e.Column)
	}
	return fmt.Sprintf("%s: required column '%s' not found in '%s'", e.Parser, e.Column, e.FilePath)
}

// InvalidFormatError represents an input file that does not look like the
// statement format the parser expects.
type InvalidFormatError struct {
	FilePath             string
	ExpectedFormat       string
	ActualContentSnippet string
	Msg                  string
}

func (e *InvalidFormatError) Error() string {
	if e.FilePath == "" {
		return fmt.Sprintf("invalid format: %s. Expected: %s", e.Msg, e.ExpectedFormat)
	}
	if e.ActualContentSnippet != "" {
		return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s. Content snippet: '%s'",
			e.FilePath, e.Msg, e.ExpectedFormat, e.ActualContentSnippet)
	}
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
}

// ValidationError is a field-level problem found in a ledger record.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("record %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("record %d: field '%s' %s", e.Index, e.Field, e.Reason)
}

// SinkError wraps a failure to persist the ledger to one output.
type SinkError struct {
	Sink   string
	Target string
	Err    error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("sink %s failed writing %s: %v", e.Sink, e.Target, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}
