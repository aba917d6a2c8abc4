package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/randcrawl/internal/crawler"
	"github.com/nao1215/randcrawl/internal/model"
	"github.com/nao1215/randcrawl/internal/seed"
)

// ErrInvalidDepth is returned by StartCrawl for a negative depth.
var ErrInvalidDepth = errors.New("max depth must be >= 0")

// TaskRunner crawls one root task to completion. *crawler.Crawler satisfies it.
type TaskRunner interface {
	Crawl(ctx context.Context, task model.CrawlTask) crawler.Result
}

// Stats is a snapshot of a run's counters.
type Stats struct {
	// SeedsSubmitted is the number of root tasks a worker started.
	// Seeds still waiting for a worker when the run is cancelled are dropped.
	SeedsSubmitted int64

	// Pages is the number of Findings recorded.
	Pages int64

	// Failures is the number of tasks that ended with an error.
	Failures int64

	// Skipped is the number of tasks dropped as already visited or claimed.
	Skipped int64

	// Aborted is the number of root tasks cut short by cancellation.
	Aborted int64
}

// counters accumulates Stats from concurrent workers.
type counters struct {
	seeds    atomic.Int64
	pages    atomic.Int64
	failures atomic.Int64
	skipped  atomic.Int64
	aborted  atomic.Int64
}

func (c *counters) add(r crawler.Result) {
	c.pages.Add(int64(r.Pages))
	c.failures.Add(int64(r.Failures))
	c.skipped.Add(int64(r.Skipped))
	if r.Aborted {
		c.aborted.Add(1)
	}
}

func (c *counters) snapshot() Stats {
	return Stats{
		SeedsSubmitted: c.seeds.Load(),
		Pages:          c.pages.Load(),
		Failures:       c.failures.Load(),
		Skipped:        c.skipped.Load(),
		Aborted:        c.aborted.Load(),
	}
}

// Scheduler submits root tasks to a bounded worker pool.
type Scheduler struct {
	runner       TaskRunner
	workers      int
	maxSeeds     int
	seedInterval time.Duration
	seedOpts     []seed.Option
	logger       *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithWorkers sets the number of root tasks crawled at once.
// Non-positive values keep the default of 8.
func WithWorkers(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithMaxSeeds stops the run after n seeds have been submitted.
// 0 means no limit: the run lasts until the context is cancelled.
func WithMaxSeeds(n int) Option {
	return func(s *Scheduler) {
		s.maxSeeds = n
	}
}

// WithSeedInterval sets the wait between submissions in fixed-seed mode.
func WithSeedInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		s.seedInterval = d
	}
}

// WithSeedOptions configures the random seed generator.
func WithSeedOptions(opts ...seed.Option) Option {
	return func(s *Scheduler) {
		s.seedOpts = append(s.seedOpts, opts...)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// New creates a Scheduler that runs every root task through runner.
func New(runner TaskRunner, opts ...Option) *Scheduler {
	s := &Scheduler{
		runner:       runner,
		workers:      8,
		seedInterval: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// StartCrawl runs the crawl loop and blocks until ctx is cancelled or the
// seed budget is spent, then waits for in-flight root tasks.
//
// An empty seedPattern generates random seeds. Otherwise the pattern is
// submitted verbatim on every iteration, paced by the seed interval.
func (s *Scheduler) StartCrawl(ctx context.Context, maxDepth int, seedPattern string) (Stats, error) {
	if maxDepth < 0 {
		return Stats{}, ErrInvalidDepth
	}

	opts := append(append([]seed.Option(nil), s.seedOpts...), seed.WithPattern(seedPattern))
	gen, err := seed.NewGenerator(opts...)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to create seed generator: %w", err)
	}

	s.logger.Info("crawl started",
		"workers", s.workers,
		"max_depth", maxDepth,
		"fixed_seed", gen.Fixed(),
		"max_seeds", s.maxSeeds,
	)
	start := time.Now()

	var stats counters
	var g errgroup.Group
	g.SetLimit(s.workers)

	generated := 0
	for s.maxSeeds == 0 || generated < s.maxSeeds {
		if gen.Fixed() && generated > 0 && !s.wait(ctx, s.seedInterval) {
			break
		}
		if ctx.Err() != nil {
			break
		}

		task := model.NewRootTask(gen.Next(), maxDepth)
		generated++

		// g.Go blocks while the pool is full, so cancellation can arrive
		// between generating a seed and a worker picking it up.
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			stats.seeds.Add(1)
			s.logger.Debug("seed submitted", "url", task.URL)
			stats.add(s.runner.Crawl(ctx, task))
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // workers never return errors

	result := stats.snapshot()
	s.logger.Info("crawl stopped",
		"seeds", result.SeedsSubmitted,
		"pages", result.Pages,
		"failures", result.Failures,
		"skipped", result.Skipped,
		"aborted", result.Aborted,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return result, nil
}

// wait pauses for d and reports false if ctx was cancelled first.
func (s *Scheduler) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
