package database

import (
	"context"

	"github.com/nao1215/randcrawl/internal/model"
)

// Sink records the findings and errors of one run into a CrawlDB.
// It satisfies report.Sink.
type Sink struct {
	db      *CrawlDB
	runDate string
}

// NewSink creates a Sink writing rows tagged with runDate.
// Closing the Sink closes db.
func NewSink(db *CrawlDB, runDate string) *Sink {
	return &Sink{db: db, runDate: runDate}
}

// RecordFinding stores finding under the sink's run date.
func (s *Sink) RecordFinding(ctx context.Context, finding *model.Finding) error {
	return s.db.InsertFinding(ctx, s.runDate, finding)
}

// RecordError stores record under the sink's run date.
func (s *Sink) RecordError(ctx context.Context, record *model.ErrorRecord) error {
	return s.db.InsertError(ctx, s.runDate, record)
}

// Close closes the underlying database.
func (s *Sink) Close() error {
	return s.db.Close()
}
