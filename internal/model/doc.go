// Package model defines the core data structures shared by the crawl engine.
//
// This package contains the following main types:
//   - CrawlTask: A URL plus the remaining recursion depth
//   - ResolvedHost: The address and working transport protocol of a host
//   - Finding: The structured record produced for every fetched URL
//   - ErrorRecord: The structured record produced for every failed attempt
//   - CrawlError: The resolution/transport/http failure taxonomy
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The crawler, report, database and registry packages all need
// these types, so centralizing them prevents import cycles.
//
// Finding and ErrorRecord are serialized as one JSON object per line in the
// run directory, so their JSON tags are part of the on-disk format.
package model
