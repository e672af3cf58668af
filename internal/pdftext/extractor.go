// Package pdftext extracts plain text from PDF statements.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Extractor turns a PDF document into text, one line per text line.
type Extractor interface {
	ExtractText(ctx context.Context, r io.Reader) (string, error)
}

// PdftotextExtractor shells out to poppler's pdftotext, feeding the document
// on stdin and reading the text from stdout.
type PdftotextExtractor struct {
	// Layout keeps the physical column layout (-layout) instead of emitting
	// each text run on its own line.
	Layout bool
	// Binary overrides the executable name.
	Binary string
}

// NewPdftotextExtractor creates a PdftotextExtractor.
func NewPdftotextExtractor(layout bool) *PdftotextExtractor {
	return &PdftotextExtractor{Layout: layout, Binary: "pdftotext"}
}

// ExtractText runs pdftotext over the document read from r.
func (e *PdftotextExtractor) ExtractText(ctx context.Context, r io.Reader) (string, error) {
	binary := e.Binary
	if binary == "" {
		binary = "pdftotext"
	}

	args := []string{"-enc", "UTF-8"}
	if e.Layout {
		args = append(args, "-layout")
	}
	args = append(args, "-", "-")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdin = r
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error running %s: %w: %s", binary, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// MockExtractor returns canned text, for tests.
type MockExtractor struct {
	Text string
	Err  error
}

// NewMockExtractor creates a MockExtractor.
func NewMockExtractor(text string, err error) *MockExtractor {
	return &MockExtractor{Text: text, Err: err}
}

// ExtractText returns the configured text or error.
func (e *MockExtractor) ExtractText(_ context.Context, _ io.Reader) (string, error) {
	if e.Err != nil {
		return "", e.Err
	}
	return e.Text, nil
}

// Lines splits extracted text into lines, normalizing CRLF and form feeds.
func Lines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\f", "\n")
	return strings.Split(text, "\n")
}
