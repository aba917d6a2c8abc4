// Package runstate holds the process-wide stop signal of a crawl run.
//
// A Controller wraps a cancellable context. The first interrupt, or the first
// call to Stop, cancels it exactly once. Workers never read a shared flag:
// they observe the Controller's context at their own check points.
package runstate
