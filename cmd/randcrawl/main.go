// Package main provides the entry point for the randcrawl CLI.
//
// randcrawl is an unsupervised web crawler. It generates random candidate
// hostnames (or reuses a fixed seed), checks them over HTTPS then HTTP,
// follows same-host links up to a bounded depth and records findings
// (e-mail addresses, keyword frequencies, sub-paths) as JSON Lines.
//
// Usage:
//
//	randcrawl crawl --depth 2
//	randcrawl crawl --seed http://example.com --max-seeds 1
//	randcrawl summary ./2026-10-19
//
// See --help for all available options.
package main

// main is the entry point for randcrawl.
func main() {
	Execute()
}
