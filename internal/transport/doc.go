// Package transport builds the HTTP client every outbound request goes through.
//
// The client carries the crawler's identification headers on every request,
// including redirects, and can optionally route all traffic through a SOCKS5
// proxy. Components receive the *http.Client through dependency injection
// rather than creating their own.
package transport
