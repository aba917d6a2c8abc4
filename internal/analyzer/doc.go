// Package analyzer extracts structured data from fetched page content.
//
// The three extractors are independent pure functions over the body text:
// host-relative links, e-mail shaped tokens and keyword frequencies. None of
// them perform I/O, so they are safe to call from any number of workers.
package analyzer
