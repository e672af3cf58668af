// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/devjuank/FinanceService/internal/common"
	"github.com/devjuank/FinanceService/internal/container"
	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/pipeline"
	"github.com/devjuank/FinanceService/internal/report"
	"github.com/devjuank/FinanceService/internal/sink"
	"github.com/devjuank/FinanceService/internal/validation"
)

// ErrValidationFailed is returned when a ledger has schema violations.
var ErrValidationFailed = errors.New("ledger failed validation")

// ConsolidateWithError runs every configured source and persists the ledger
// to the configured outputs. outputDir overrides output.directory when set.
func ConsolidateWithError(ctx context.Context, c *container.Container, outputDir string) (*report.Report, error) {
	runID := pipeline.NewRunID()

	inputs, err := c.Inputs()
	if err != nil {
		return nil, err
	}
	out, err := c.Sink(ctx, runID, outputDir)
	if err != nil {
		return nil, fmt.Errorf("error preparing outputs: %w", err)
	}

	_, rep, err := c.Pipeline(out, "").Consolidate(ctx, runID, inputs)
	if err != nil {
		return rep, fmt.Errorf("consolidation failed: %w", err)
	}
	return rep, nil
}

// ProcessFileWithError re-runs the reconciliation stages over the ledger at
// inputFile and writes the result to outputFile. An empty outputFile
// rewrites the input in place.
func ProcessFileWithError(ctx context.Context, c *container.Container, inputFile, outputFile string) (*report.Report, error) {
	if inputFile == "" {
		return nil, fmt.Errorf("an input ledger is required")
	}
	if outputFile == "" {
		outputFile = inputFile
	}

	ledger, err := common.ReadLedgerFile(inputFile)
	if err != nil {
		return nil, fmt.Errorf("error reading ledger: %w", err)
	}
	out, name, err := sink.NewFileSinkForPath(outputFile, c.GetLogger())
	if err != nil {
		return nil, err
	}

	_, rep, err := c.Pipeline(out, name).Process(ctx, pipeline.NewRunID(), ledger)
	if err != nil {
		return rep, fmt.Errorf("processing failed: %w", err)
	}
	return rep, nil
}

// ValidateFileWithError validates the JSON ledger at inputFile and prints one
// line per violation to w. It returns ErrValidationFailed when any record
// breaks the contract.
func ValidateFileWithError(inputFile string, w io.Writer, logger logging.Logger) (*validation.Result, error) {
	if inputFile == "" {
		return nil, fmt.Errorf("an input ledger is required")
	}

	result, err := validation.NewValidator(logger).ValidateFile(inputFile)
	if err != nil {
		return nil, err
	}

	for _, violation := range result.Errors {
		fmt.Fprintln(w, violation.Error())
	}
	if !result.Valid() {
		fmt.Fprintf(w, "%d violation(s) in %d record(s)\n", len(result.Errors), result.Records)
		return result, ErrValidationFailed
	}
	fmt.Fprintf(w, "%s: %d record(s) valid\n", inputFile, result.Records)
	return result, nil
}

// PrintReport renders rep to w in the given format.
func PrintReport(w io.Writer, rep *report.Report, format string) error {
	if rep == nil {
		return nil
	}
	out, err := report.GenerateReport(rep, format)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
