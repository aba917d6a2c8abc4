package protocol

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/nao1215/randcrawl/internal/model"
)

// Response is the outcome of a successful fetch.
type Response struct {
	// URL is the URL that was requested.
	URL string

	// StatusCode is always 200 for a Response returned without error.
	StatusCode int

	// ContentType is the raw Content-Type header.
	ContentType string

	// Body is the response body decoded to UTF-8 and truncated to the
	// configured maximum size.
	Body string
}

// Fetcher performs the bounded-time retrieval of a resolved host's content.
//
// Design decision: the http.Client is injected rather than built here so the
// identification headers and the proxy configured in the transport package
// apply to every fetch.
type Fetcher struct {
	client      *http.Client
	maxBodySize int64
	timeout     time.Duration
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithMaxBodySize sets the maximum response body size. 0 means unlimited.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithFetchTimeout sets the per-request timeout.
func WithFetchTimeout(timeout time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = timeout
	}
}

// NewFetcher creates a new Fetcher with the given HTTP client.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      client,
		maxBodySize: 5 * 1024 * 1024, // 5MB
		timeout:     3 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch issues a single GET to host's origin followed by path.
// An empty path requests the bare host.
//
// Failures are returned as *model.CrawlError: KindTransport when the request
// itself fails and KindHTTP for any status other than 200.
func (f *Fetcher) Fetch(ctx context.Context, host model.ResolvedHost, path string) (*Response, error) {
	target := host.Origin() + path

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, model.NewTransportError(target, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, model.NewTransportError(target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
		return nil, model.NewHTTPError(target, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if f.maxBodySize > 0 {
		body = io.LimitReader(resp.Body, f.maxBodySize)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, model.NewTransportError(target, fmt.Errorf("failed to read body: %w", err))
	}

	contentType := resp.Header.Get("Content-Type")
	return &Response{
		URL:         target,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        decodeBody(raw, contentType),
	}, nil
}

// decodeBody converts raw to UTF-8 using the declared or sniffed charset.
// When no decoder applies the bytes are used as they are.
func decodeBody(raw []byte, contentType string) string {
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return string(raw)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}
