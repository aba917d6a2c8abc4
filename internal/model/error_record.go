package model

import (
	"errors"
	"time"
)

// ErrorRecord is produced once per failed crawl attempt and appended to the
// shared error log of the run.
type ErrorRecord struct {
	// Timestamp is when the failure was observed.
	Timestamp time.Time `json:"timestamp"`

	// URL is the task URL that failed.
	URL string `json:"url"`

	// StatusCode is set only for HTTP failures.
	StatusCode *int `json:"status_code,omitempty"`

	// Kind is the failure class (resolution, transport, http).
	Kind ErrorKind `json:"kind"`

	// Error is the human-readable failure message.
	Error string `json:"error"`
}

// NewErrorRecord builds an ErrorRecord from a crawl failure.
// Errors that are not a *CrawlError are classified as transport failures.
func NewErrorRecord(now time.Time, url string, err error) *ErrorRecord {
	record := &ErrorRecord{
		Timestamp: now,
		URL:       url,
		Kind:      KindTransport,
		Error:     err.Error(),
	}

	var crawlErr *CrawlError
	if errors.As(err, &crawlErr) {
		record.Kind = crawlErr.Kind
		if crawlErr.StatusCode != 0 {
			status := crawlErr.StatusCode
			record.StatusCode = &status
		}
	}
	return record
}
