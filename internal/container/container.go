// Package container wires the application's dependencies from configuration.
// Every component receives its collaborators through its constructor.
package container

import (
	"context"
	"errors"
	"fmt"

	"github.com/devjuank/FinanceService/internal/categorizer"
	"github.com/devjuank/FinanceService/internal/config"
	"github.com/devjuank/FinanceService/internal/consolidator"
	"github.com/devjuank/FinanceService/internal/dedup"
	"github.com/devjuank/FinanceService/internal/factory"
	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/neutralizer"
	"github.com/devjuank/FinanceService/internal/parser"
	"github.com/devjuank/FinanceService/internal/pdftext"
	"github.com/devjuank/FinanceService/internal/pipeline"
	"github.com/devjuank/FinanceService/internal/sink"
	"github.com/devjuank/FinanceService/internal/store"
)

// Option customizes a Container.
type Option func(*Container)

// WithLogger replaces the logger built from configuration.
func WithLogger(logger logging.Logger) Option {
	return func(c *Container) { c.logger = logger }
}

// WithExtractor replaces pdftotext for PDF sources.
func WithExtractor(extractor pdftext.Extractor) Option {
	return func(c *Container) { c.extractor = extractor }
}

// WithObjectWriter replaces the Cloud Storage client used by the GCS sink.
func WithObjectWriter(writer sink.ObjectWriter) Option {
	return func(c *Container) { c.objectWriter = writer }
}

// Container holds the application dependencies. Resources opened on demand
// (the snapshot database, the storage client) are released by Close.
type Container struct {
	config       *config.Config
	logger       logging.Logger
	ruleStore    *store.RuleStore
	categorizer  *categorizer.Categorizer
	extractor    pdftext.Extractor
	objectWriter sink.ObjectWriter
	closers      []func() error
}

// NewContainer creates and wires all application dependencies. It fails
// when a configured rule file cannot be loaded.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	c := &Container{config: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}

	c.ruleStore = store.NewRuleStore(cfg.Rules.File, c.logger)
	cat, err := categorizer.NewCategorizerFromStore(c.ruleStore, c.logger)
	if err != nil {
		return nil, err
	}
	c.categorizer = cat

	c.logger.Debug("Container initialized", logging.F("sources", len(cfg.Sources)))
	return c, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetCategorizer returns the container's categorizer instance.
func (c *Container) GetCategorizer() *categorizer.Categorizer {
	return c.categorizer
}

// Inputs builds one consolidator input per configured source.
func (c *Container) Inputs() ([]consolidator.Input, error) {
	inputs := make([]consolidator.Input, 0, len(c.config.Sources))
	for _, src := range c.config.Sources {
		source := parser.Source{
			Name:     src.Name,
			Account:  src.Account,
			Currency: src.Currency,
			Keywords: src.Keywords,
		}
		p, err := factory.GetParser(src.Kind, source, factory.Options{
			Extractor:     c.extractor,
			StatementYear: src.StatementYear,
		}, c.logger)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", source, err)
		}
		inputs = append(inputs, consolidator.Input{
			Parser:    p,
			Source:    source,
			Directory: src.Directory,
			Extension: src.Extension,
		})
	}
	return inputs, nil
}

// Sink builds the configured outputs for one run. outputDir overrides
// output.directory when set.
func (c *Container) Sink(ctx context.Context, runID, outputDir string) (sink.Sink, error) {
	out := c.config.Output
	if outputDir == "" {
		outputDir = out.Directory
	}

	var sinks sink.Multi
	if out.JSON {
		sinks = append(sinks, sink.NewJSONFileSink(outputDir, c.logger))
	}
	if out.CSV {
		sinks = append(sinks, sink.NewCSVFileSink(outputDir, c.logger))
	}

	if out.SQLite.Enabled {
		snapshots, err := store.OpenSnapshotStore(out.SQLite.Path, c.logger)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, snapshots.Close)
		sinks = append(sinks, sink.NewSQLiteSink(snapshots, runID))
	}

	if out.GCS.Enabled {
		writer := c.objectWriter
		if writer == nil {
			client, err := sink.NewStorageClient(ctx)
			if err != nil {
				return nil, err
			}
			c.closers = append(c.closers, client.Close)
			writer = client
		}
		sinks = append(sinks, sink.NewGCSSink(writer, out.GCS.Bucket, out.GCS.Prefix, runID, c.logger))
	}
	return sinks, nil
}

// Pipeline creates a pipeline writing to out. ledgerName overrides
// pipeline.LedgerName when set.
func (c *Container) Pipeline(out sink.Sink, ledgerName string) *pipeline.Pipeline {
	return pipeline.New(
		consolidator.NewConsolidator(0, c.logger),
		dedup.NewDeduplicator(c.logger),
		c.categorizer,
		neutralizer.NewNeutralizer(c.config.NeutralizerOptions(), c.logger),
		out,
		pipeline.Options{PerSource: c.config.Output.PerSource, LedgerName: ledgerName},
		c.logger,
	)
}

// Close releases resources opened by Sink.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
