package model

import (
	"errors"
	"fmt"
)

// Crawl failure causes.
// All of them are terminal for the task that hit them and none is fatal to the run.
var (
	// ErrHostNotFound is returned when the address lookup for a host fails.
	ErrHostNotFound = errors.New("host not found")

	// ErrNoTransport is returned when neither the secure nor the plaintext
	// connection test succeeded.
	ErrNoTransport = errors.New("no transport protocol answered")

	// ErrUnexpectedStatus is returned when a fetch answers with a status other than 200.
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

// ErrorKind classifies crawl failures.
type ErrorKind int

const (
	// KindResolution covers address lookup failures and both checks failing.
	KindResolution ErrorKind = iota

	// KindTransport covers network-level errors raised by the fetch itself.
	KindTransport

	// KindHTTP covers responses with a non-200 status.
	KindHTTP
)

// String returns the name used in logs and in the error log.
func (k ErrorKind) String() string {
	switch k {
	case KindResolution:
		return "resolution"
	case KindTransport:
		return "transport"
	case KindHTTP:
		return "http"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so the kind is written by name.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ErrorKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "resolution":
		*k = KindResolution
	case "transport":
		*k = KindTransport
	case "http":
		*k = KindHTTP
	default:
		return fmt.Errorf("unknown error kind %q", string(text))
	}
	return nil
}

// CrawlError is a classified failure of one crawl stage.
type CrawlError struct {
	// Kind is the failure class.
	Kind ErrorKind

	// URL is the task URL being crawled.
	URL string

	// StatusCode is the response status for KindHTTP, otherwise zero.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *CrawlError) Error() string {
	if e.Kind == KindHTTP {
		return fmt.Sprintf("%s failure for %s: status %d: %v", e.Kind, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s failure for %s: %v", e.Kind, e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *CrawlError) Unwrap() error {
	return e.Err
}

// NewResolutionError wraps err as a resolution failure.
func NewResolutionError(url string, err error) *CrawlError {
	return &CrawlError{Kind: KindResolution, URL: url, Err: err}
}

// NewTransportError wraps err as a transport failure.
func NewTransportError(url string, err error) *CrawlError {
	return &CrawlError{Kind: KindTransport, URL: url, Err: err}
}

// NewHTTPError reports a response with a non-200 status.
func NewHTTPError(url string, status int) *CrawlError {
	return &CrawlError{Kind: KindHTTP, URL: url, StatusCode: status, Err: ErrUnexpectedStatus}
}

// IsKind reports whether err is a CrawlError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var crawlErr *CrawlError
	return errors.As(err, &crawlErr) && crawlErr.Kind == kind
}
