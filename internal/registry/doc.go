// Package registry tracks which URLs have been crawled during a run.
//
// A worker claims a URL before touching the network. The claim is committed
// as visited only after a successful fetch and released after a failure, so a
// URL that failed may be attempted again when it is discovered later, while
// two workers can never crawl the same URL at the same time.
//
// Two implementations exist: Memory for a single process and Redis for
// several processes sharing one run.
package registry
