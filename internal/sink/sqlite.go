package sink

import (
	"context"

	"github.com/devjuank/FinanceService/internal/models"
	"github.com/devjuank/FinanceService/internal/parsererror"
)

// SnapshotSaver is the part of store.SnapshotStore the sink needs.
type SnapshotSaver interface {
	SaveSnapshot(ctx context.Context, runID string, transactions []models.Transaction) error
}

// SQLiteSink stores each named ledger as a snapshot keyed "<runID>/<name>".
type SQLiteSink struct {
	store SnapshotSaver
	runID string
}

// NewSQLiteSink creates a sink writing snapshots for one run.
func NewSQLiteSink(store SnapshotSaver, runID string) *SQLiteSink {
	return &SQLiteSink{store: store, runID: runID}
}

// Name implements Sink.
func (s *SQLiteSink) Name() string { return NameSQLite }

// SnapshotID returns the snapshot key used for name.
func (s *SQLiteSink) SnapshotID(name string) string {
	return s.runID + "/" + name
}

// Write implements Sink.
func (s *SQLiteSink) Write(ctx context.Context, name string, transactions []models.Transaction) error {
	id := s.SnapshotID(name)
	if err := s.store.SaveSnapshot(ctx, id, transactions); err != nil {
		return &parsererror.SinkError{Sink: s.Name(), Target: id, Err: err}
	}
	return nil
}
