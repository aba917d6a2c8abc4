package report

import (
	"context"
	"errors"
	"io"

	"github.com/nao1215/randcrawl/internal/model"
)

// Sink receives results while a run is in progress.
// Implementations must be safe for concurrent use by multiple workers and
// must only ever append.
type Sink interface {
	// RecordFinding appends a finding to the record of its hostname.
	RecordFinding(ctx context.Context, finding *model.Finding) error

	// RecordError appends a failed attempt to the shared error log.
	RecordError(ctx context.Context, record *model.ErrorRecord) error

	// Close flushes and releases the sink.
	Close() error
}

// MultiSink forwards every record to all of its sinks.
//
// Design decision: a failing sink does not stop the others. Each sink is an
// independent destination, so all are attempted and their errors joined.
type MultiSink struct {
	sinks []Sink
}

var _ Sink = (*MultiSink)(nil)

// NewMultiSink creates a Sink that forwards to all provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// RecordFinding implements Sink.
func (m *MultiSink) RecordFinding(ctx context.Context, finding *model.Finding) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordFinding(ctx, finding); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordError implements Sink.
func (m *MultiSink) RecordError(ctx context.Context, record *model.ErrorRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordError(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Writer renders a run summary.
type Writer interface {
	// Write outputs the summary to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(summary *RunSummary) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
