// Package scheduler drives the top-level crawl loop.
//
// The Scheduler keeps submitting root tasks to a fixed-size worker pool until
// the context is cancelled or the seed budget is spent. Each worker runs one
// root task's whole traversal before it takes the next seed, so the pool
// size bounds the outstanding work.
//
// Design decision: the pool is an errgroup with SetLimit rather than a
// hand-written worker pool. Go blocks while every worker is busy, which gives
// the submission loop backpressure for free.
package scheduler
