// Package report persists crawl results and renders run summaries.
//
// Sinks receive every Finding and ErrorRecord while a run is in progress:
//   - FileSink: the dated run directory of JSON Lines files (always on)
//   - KafkaSink: a Kafka topic for downstream consumers
//   - MultiSink: fan-out to any combination of the above and database.CrawlDB
//
// Writers render a RunSummary after the fact:
//   - SimpleWriter: human-readable text for terminal display
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown for sharing
//
// Design decision: sinks and writers are separate interfaces because sinks
// see one record at a time under concurrency, while writers see a complete,
// immutable summary.
package report
