package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"cloud.google.com/go/storage"

	"github.com/devjuank/FinanceService/internal/common"
	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/models"
	"github.com/devjuank/FinanceService/internal/parsererror"
)

const uploadTimeout = 2 * time.Minute

// ObjectWriter opens a writer for one object; closing it finalizes the upload.
type ObjectWriter interface {
	NewWriter(ctx context.Context, bucket, object string) io.WriteCloser
}

// StorageClient adapts *storage.Client to ObjectWriter.
type StorageClient struct {
	Client *storage.Client
}

// NewStorageClient creates a client using Application Default Credentials.
func NewStorageClient(ctx context.Context) (*StorageClient, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &StorageClient{Client: client}, nil
}

// NewWriter implements ObjectWriter.
func (c *StorageClient) NewWriter(ctx context.Context, bucket, object string) io.WriteCloser {
	w := c.Client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = "application/json"
	return w
}

// Close releases the underlying client.
func (c *StorageClient) Close() error {
	return c.Client.Close()
}

// GCSSink uploads each named ledger as JSON to
// gs://<bucket>/<prefix>/<runID>/<name>.json.
type GCSSink struct {
	writer ObjectWriter
	bucket string
	prefix string
	runID  string
	logger logging.Logger
}

// NewGCSSink creates a sink for one run.
func NewGCSSink(writer ObjectWriter, bucket, prefix, runID string, logger logging.Logger) *GCSSink {
	return &GCSSink{
		writer: writer,
		bucket: bucket,
		prefix: prefix,
		runID:  runID,
		logger: orDiscard(logger),
	}
}

// Name implements Sink.
func (s *GCSSink) Name() string { return NameGCS }

// ObjectName returns the object path used for name.
func (s *GCSSink) ObjectName(name string) string {
	return path.Join(s.prefix, s.runID, name+".json")
}

// Write implements Sink.
func (s *GCSSink) Write(ctx context.Context, name string, transactions []models.Transaction) error {
	object := s.ObjectName(name)
	target := fmt.Sprintf("gs://%s/%s", s.bucket, object)

	var buf bytes.Buffer
	if err := common.WriteLedgerJSON(&buf, transactions); err != nil {
		return &parsererror.SinkError{Sink: s.Name(), Target: target, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := s.writer.NewWriter(ctx, s.bucket, object)
	if _, err := io.Copy(w, &buf); err != nil {
		_ = w.Close()
		return &parsererror.SinkError{Sink: s.Name(), Target: target, Err: fmt.Errorf("copy ledger to GCS writer: %w", err)}
	}
	if err := w.Close(); err != nil {
		return &parsererror.SinkError{Sink: s.Name(), Target: target, Err: fmt.Errorf("finalize upload: %w", err)}
	}

	s.logger.Info("Uploaded ledger",
		logging.F(logging.FieldOutputFile, target),
		logging.F(logging.FieldCount, len(transactions)))
	return nil
}
