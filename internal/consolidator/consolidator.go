// Package consolidator runs every configured source adapter over its
// statement files and unions the results into one working set.
package consolidator

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/devjuank/FinanceService/internal/fileutils"
	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/models"
	"github.com/devjuank/FinanceService/internal/parser"
)

// Input binds a parser to the directory holding its statements.
type Input struct {
	Parser    parser.Parser
	Source    parser.Source
	Directory string
	Extension string
}

// FileFailure records a statement that contributed nothing.
type FileFailure struct {
	Path string
	Err  error
}

// SourceResult is one source's bucket.
type SourceResult struct {
	Source   parser.Source
	Kind     string
	Files    int
	Failures []FileFailure
	parser.Result
}

// Consolidator runs inputs in parallel. Each source writes only to its own
// bucket; the union is built after every source has finished.
type Consolidator struct {
	logger      logging.Logger
	concurrency int
}

// NewConsolidator creates a Consolidator. concurrency <= 0 runs every
// source at once.
func NewConsolidator(concurrency int, logger logging.Logger) *Consolidator {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Consolidator{logger: logger, concurrency: concurrency}
}

// Run parses every input and returns the per-source buckets (in input
// order) and their union in the same order. File-level failures are
// recorded in the buckets; only context cancellation is returned as an
// error.
func (c *Consolidator) Run(ctx context.Context, inputs []Input) ([]SourceResult, []models.Transaction, error) {
	results := make([]SourceResult, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	if c.concurrency > 0 {
		g.SetLimit(c.concurrency)
	}
	for i := range inputs {
		g.Go(func() error {
			result, err := c.runSource(gctx, inputs[i])
			results[i] = result
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var union []models.Transaction
	for _, r := range results {
		union = append(union, r.Transactions...)
	}
	return results, union, nil
}

func (c *Consolidator) runSource(ctx context.Context, in Input) (SourceResult, error) {
	result := SourceResult{Source: in.Source, Kind: in.Parser.Kind()}
	logger := c.logger.WithFields(
		logging.F(logging.FieldSource, in.Source.Name),
		logging.F(logging.FieldAccount, in.Source.Account),
		logging.F(logging.FieldParser, result.Kind))

	if in.Directory == "" {
		logger.Debug("No directory configured, skipping source")
		return result, nil
	}

	files, err := fileutils.ListFilesWithExtension(in.Directory, in.Extension)
	if err != nil {
		logger.WithError(err).Warn("Could not list statement directory")
		result.Failures = append(result.Failures, FileFailure{Path: in.Directory, Err: err})
		return result, nil
	}
	if len(files) == 0 {
		logger.Debug("No statement files found", logging.F(logging.FieldFile, in.Directory))
		return result, nil
	}

	start := time.Now()
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Files++

		parsed, err := parser.ParseFile(ctx, in.Parser, path)
		if err != nil {
			logger.WithError(err).Warn("Statement contributed nothing", logging.F(logging.FieldFile, path))
			result.Failures = append(result.Failures, FileFailure{Path: path, Err: err})
			continue
		}
		result.Merge(parsed)
		logger.Debug("Parsed statement",
			logging.F(logging.FieldFile, path),
			logging.F(logging.FieldCount, len(parsed.Transactions)))
	}

	logger.Info("Source processed",
		logging.F("files", result.Files),
		logging.F(logging.FieldCount, len(result.Transactions)),
		logging.F(logging.FieldDuration, time.Since(start).String()))
	return result, nil
}
