// Package seed produces the root URLs of a crawl.
//
// In random mode a Generator builds "http://<label><tld>" from a random
// lowercase label and one of the configured top-level domains. In fixed mode
// it returns the same pattern every time, which makes runs reproducible and
// lets tests point the crawler at a local server.
package seed
