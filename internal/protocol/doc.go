// Package protocol resolves candidate hosts and retrieves their content.
//
// # Resolution
//
// A Resolver looks up the address of a URL's host and then checks the host
// over HTTPS first and plain HTTP second. The first transport that answers
// with any HTTP response wins. Generated hosts frequently support one
// transport or neither, so the check fails fast before a fetch is attempted.
//
// # Fetching
//
// A Fetcher issues a single GET against a resolved host with a fixed timeout.
// A non-200 status is reported as an HTTP failure, distinct from a transport
// failure, so both can be logged with their own detail.
//
// # Usage
//
//	client := transport.HTTPClient()
//	host, err := protocol.NewResolver(client).Resolve(ctx, "http://example.com")
//	resp, err := protocol.NewFetcher(client).Fetch(ctx, host, "")
//
// Neither type retries. A single failure abandons the task that caused it.
package protocol
