// Package report describes the outcome of one pipeline run and renders it
// for operators.
package report

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"

	"github.com/devjuank/FinanceService/internal/models"
)

// DateRange is the span of dates covered by a ledger.
type DateRange struct {
	From civil.Date `json:"from"`
	To   civil.Date `json:"to"`
}

// IsZero reports whether the range is unset.
func (dr DateRange) IsZero() bool {
	return dr.From.IsZero() && dr.To.IsZero()
}

// String returns the range as "YYYY-MM-DD_YYYY-MM-DD".
func (dr DateRange) String() string {
	if dr.IsZero() {
		return ""
	}
	return dr.From.String() + "_" + dr.To.String()
}

// Include widens the range to cover date.
func (dr DateRange) Include(date civil.Date) DateRange {
	if dr.IsZero() {
		return DateRange{From: date, To: date}
	}
	if date.Before(dr.From) {
		dr.From = date
	}
	if date.After(dr.To) {
		dr.To = date
	}
	return dr
}

// RangeOf returns the dates spanned by transactions.
func RangeOf(transactions []models.Transaction) DateRange {
	var dr DateRange
	for _, tx := range transactions {
		dr = dr.Include(tx.Date)
	}
	return dr
}

// SourceSummary is one source's share of the run.
type SourceSummary struct {
	Source       string `json:"source"`
	Account      string `json:"account"`
	Kind         string `json:"kind"`
	Files        int    `json:"files"`
	FilesFailed  int    `json:"files_failed"`
	RowsRead     int    `json:"rows_read"`
	RowsSkipped  int    `json:"rows_skipped"`
	Transactions int    `json:"transactions"`
}

// Report carries the counts every run prints. A run never fails on partial
// input; these counts are how partial failure surfaces.
type Report struct {
	RunID              string          `json:"run_id"`
	Sources            []SourceSummary `json:"sources,omitempty"`
	FilesRead          int             `json:"files_read"`
	FilesFailed        int             `json:"files_failed"`
	RowsRead           int             `json:"rows_read"`
	RowsSkipped        int             `json:"rows_skipped"`
	TransactionsParsed int             `json:"transactions_parsed"`
	DuplicatesRemoved  int             `json:"duplicates_removed"`
	RuleHits           int             `json:"rule_hits"`
	RuleHitsByStrategy map[string]int  `json:"rule_hits_by_strategy,omitempty"`
	PairsNeutralized   int             `json:"pairs_neutralized"`
	LedgerSize         int             `json:"ledger_size"`
	DateRange          DateRange       `json:"date_range"`
	Duration           time.Duration   `json:"duration_ns"`
}

// AddSource appends a source summary and adds it to the totals.
func (r *Report) AddSource(s SourceSummary) {
	r.Sources = append(r.Sources, s)
	r.FilesRead += s.Files
	r.FilesFailed += s.FilesFailed
	r.RowsRead += s.RowsRead
	r.RowsSkipped += s.RowsSkipped
	r.TransactionsParsed += s.Transactions
}

// StrategyNames returns the rule strategies with hits, sorted.
func (r *Report) StrategyNames() []string {
	names := make([]string, 0, len(r.RuleHitsByStrategy))
	for name := range r.RuleHitsByStrategy {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
