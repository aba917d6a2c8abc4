// Package database provides SQLite-based storage for randcrawl.
//
// This package implements the CrawlDB, which mirrors what the JSON Lines
// run directories hold:
//   - Findings, one row per successfully fetched URL
//   - Crawl errors, one row per failed attempt
//
// Every row carries the run date so several runs can share one database file.
//
// Design decision: We use SQLite (via modernc.org/sqlite) because it is a
// single CGO-free file, and WAL mode lets the summary command read while a
// crawl is still writing.
package database
