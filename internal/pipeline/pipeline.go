// Package pipeline drives a run end to end: consolidate, deduplicate,
// categorize, neutralize, persist.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/devjuank/FinanceService/internal/categorizer"
	"github.com/devjuank/FinanceService/internal/common"
	"github.com/devjuank/FinanceService/internal/consolidator"
	"github.com/devjuank/FinanceService/internal/dedup"
	"github.com/devjuank/FinanceService/internal/heuristics"
	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/models"
	"github.com/devjuank/FinanceService/internal/neutralizer"
	"github.com/devjuank/FinanceService/internal/report"
	"github.com/devjuank/FinanceService/internal/sink"
)

// LedgerName is the name the consolidated ledger is persisted under.
const LedgerName = "consolidated_transactions"

// Options selects what a run persists.
type Options struct {
	// PerSource also persists each source's parsed records under the
	// source name before the reconciliation stages run.
	PerSource bool
	// LedgerName overrides the name the reconciled ledger is written under.
	LedgerName string
}

// Pipeline owns the stages of a run. Every collaborator is passed in at
// construction time.
type Pipeline struct {
	consolidator *consolidator.Consolidator
	deduplicator *dedup.Deduplicator
	categorizer  *categorizer.Categorizer
	neutralizer  *neutralizer.Neutralizer
	sink         sink.Sink
	opts         Options
	logger       logging.Logger
}

// New creates a Pipeline. A nil sink skips persistence.
func New(
	cons *consolidator.Consolidator,
	deduplicator *dedup.Deduplicator,
	cat *categorizer.Categorizer,
	neut *neutralizer.Neutralizer,
	out sink.Sink,
	opts Options,
	logger logging.Logger,
) *Pipeline {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Pipeline{
		consolidator: cons,
		deduplicator: deduplicator,
		categorizer:  cat,
		neutralizer:  neut,
		sink:         out,
		opts:         opts,
		logger:       logger,
	}
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Consolidate runs every input, reconciles the union and persists the
// ledger. It returns an error only for cancellation or a sink failure;
// unreadable files and rows surface as report counts.
func (p *Pipeline) Consolidate(ctx context.Context, runID string, inputs []consolidator.Input) ([]models.Transaction, *report.Report, error) {
	start := time.Now()
	logger := p.logger.WithField(logging.FieldRunID, runID)
	rep := &report.Report{RunID: runID}

	results, union, err := p.consolidator.Run(ctx, inputs)
	if err != nil {
		return nil, rep, fmt.Errorf("consolidating sources: %w", err)
	}

	for _, r := range results {
		rep.AddSource(report.SourceSummary{
			Source:       r.Source.Name,
			Account:      r.Source.Account,
			Kind:         r.Kind,
			Files:        r.Files,
			FilesFailed:  len(r.Failures),
			RowsRead:     r.RowsRead,
			RowsSkipped:  len(r.Skipped),
			Transactions: len(r.Transactions),
		})
	}

	if p.opts.PerSource && p.sink != nil {
		if err := p.writeSourceSnapshots(ctx, results); err != nil {
			return nil, rep, err
		}
	}

	ledger := p.reconcile(union, rep)
	if err := p.persist(ctx, ledger); err != nil {
		return nil, rep, err
	}

	rep.Duration = time.Since(start)
	logger.Info("Run complete",
		logging.F("rows_read", rep.RowsRead),
		logging.F("rows_skipped", rep.RowsSkipped),
		logging.F("files_failed", rep.FilesFailed),
		logging.F("duplicates_removed", rep.DuplicatesRemoved),
		logging.F("pairs_neutralized", rep.PairsNeutralized),
		logging.F(logging.FieldCount, rep.LedgerSize),
		logging.F(logging.FieldDuration, rep.Duration.String()))
	return ledger, rep, nil
}

// Process re-runs deduplication, categorization and neutralization over an
// existing ledger and persists the result. Neutralization from the previous
// run is cleared first so pairs are recomputed from scratch; the build-time
// flags are kept.
func (p *Pipeline) Process(ctx context.Context, runID string, ledger []models.Transaction) ([]models.Transaction, *report.Report, error) {
	start := time.Now()
	rep := &report.Report{RunID: runID, TransactionsParsed: len(ledger)}

	for i := range ledger {
		clearNeutralization(&ledger[i])
	}

	ledger = p.reconcile(ledger, rep)
	if err := p.persist(ctx, ledger); err != nil {
		return nil, rep, err
	}

	rep.Duration = time.Since(start)
	p.logger.WithField(logging.FieldRunID, runID).Info("Processing complete",
		logging.F("duplicates_removed", rep.DuplicatesRemoved),
		logging.F("rule_hits", rep.RuleHits),
		logging.F("pairs_neutralized", rep.PairsNeutralized),
		logging.F(logging.FieldCount, rep.LedgerSize))
	return ledger, rep, nil
}

// reconcile runs the single-threaded stages in order. The slice is handed
// from stage to stage and returned sorted newest first.
func (p *Pipeline) reconcile(ledger []models.Transaction, rep *report.Report) []models.Transaction {
	ledger, rep.DuplicatesRemoved = p.deduplicator.Apply(ledger)

	stats := p.categorizer.Apply(ledger)
	rep.RuleHits = stats.Hits
	rep.RuleHitsByStrategy = stats.HitsByStrategy
	p.logger.Debug("Categorization pass", logging.F("summary", stats.Summary()))

	rep.PairsNeutralized = len(p.neutralizer.Apply(ledger))

	common.SortByDateDesc(ledger)
	rep.LedgerSize = len(ledger)
	rep.DateRange = report.RangeOf(ledger)
	return ledger
}

// clearNeutralization undoes a previous pairing. The reserved category is
// replaced by the build-time inference so an orphaned leg never keeps it.
func clearNeutralization(tx *models.Transaction) {
	tx.Neutralized = false
	if tx.CategoryName() == models.CategoryInternalTransfer {
		tx.Category, tx.Subcategory = heuristics.InferCategory(tx.Description)
	}
}

func (p *Pipeline) writeSourceSnapshots(ctx context.Context, results []consolidator.SourceResult) error {
	bySource := make(map[string][]models.Transaction)
	var order []string
	for _, r := range results {
		if _, ok := bySource[r.Source.Name]; !ok {
			order = append(order, r.Source.Name)
		}
		bySource[r.Source.Name] = append(bySource[r.Source.Name], r.Transactions...)
	}

	for _, name := range order {
		if len(bySource[name]) == 0 {
			continue
		}
		if err := p.sink.Write(ctx, name, bySource[name]); err != nil {
			return fmt.Errorf("writing %s snapshot: %w", name, err)
		}
	}
	return nil
}

func (p *Pipeline) persist(ctx context.Context, ledger []models.Transaction) error {
	if p.sink == nil {
		return nil
	}
	name := p.opts.LedgerName
	if name == "" {
		name = LedgerName
	}
	if err := p.sink.Write(ctx, name, ledger); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	return nil
}
