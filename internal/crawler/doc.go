// Package crawler runs the depth-limited traversal of one root task.
//
// # Architecture
//
// A Crawler drives each task through Resolving, Fetching, Analyzing and
// Recursing. Discovered sub-links are crawled by the same goroutine before
// Crawl returns, so one root task occupies one worker of the scheduler for
// its whole traversal.
//
// Design decision: the traversal uses an explicit stack instead of call
// recursion so a large depth cannot exhaust the goroutine stack. Children
// are pushed in reverse so they are still visited depth-first, in the order
// the analyzer found them.
//
// # Deduplication
//
// A URL is claimed in the registry before it is resolved and committed only
// after its fetch succeeds. A failed URL is released and may be attempted
// again if another page links to it later in the run.
//
// # Cancellation
//
// The context is checked before every task. A fetch or a rate-limit delay
// that has already started is never interrupted: network calls and sink
// writes run on a context that ignores cancellation and are bounded by
// their own timeouts.
//
// # Usage
//
//	c := crawler.New(resolver, fetcher, reg, sink, crawler.WithDelay(time.Second))
//	result := c.Crawl(ctx, model.NewRootTask("http://example.com", 2))
package crawler
