package crawler

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/nao1215/randcrawl/internal/analyzer"
	"github.com/nao1215/randcrawl/internal/model"
	"github.com/nao1215/randcrawl/internal/protocol"
	"github.com/nao1215/randcrawl/internal/registry"
	"github.com/nao1215/randcrawl/internal/report"
)

// HostResolver resolves the host of a task URL. *protocol.Resolver satisfies it.
type HostResolver interface {
	Resolve(ctx context.Context, rawURL string) (model.ResolvedHost, error)
}

// PageFetcher retrieves a page from a resolved host. *protocol.Fetcher satisfies it.
type PageFetcher interface {
	Fetch(ctx context.Context, host model.ResolvedHost, path string) (*protocol.Response, error)
}

// ContentAnalyzer extracts findings from a page body. *analyzer.Analyzer satisfies it.
type ContentAnalyzer interface {
	Analyze(baseURL, body string) analyzer.Result
}

// Result summarizes one call to Crawl.
type Result struct {
	// Pages is the number of Findings recorded.
	Pages int

	// Failures is the number of tasks that ended with an error.
	Failures int

	// Skipped is the number of tasks dropped because their URL was already
	// visited or claimed.
	Skipped int

	// Aborted reports whether cancellation stopped the traversal early.
	Aborted bool
}

// Crawler performs the depth-first traversal of root tasks.
// A Crawler is safe for concurrent use: all shared state lives in the
// registry and the sink.
type Crawler struct {
	resolver  HostResolver
	fetcher   PageFetcher
	analyzer  ContentAnalyzer
	registry  registry.Registry
	sink      report.Sink
	logger    *slog.Logger
	delay     time.Duration
	sleep     func(time.Duration)
	now       func() time.Time
	fetchPath bool
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// WithAnalyzer replaces the default content analyzer.
func WithAnalyzer(a ContentAnalyzer) Option {
	return func(c *Crawler) {
		c.analyzer = a
	}
}

// WithDelay sets the rate-limit delay waited before each child task.
func WithDelay(d time.Duration) Option {
	return func(c *Crawler) {
		c.delay = d
	}
}

// WithSleep replaces time.Sleep for the rate-limit delay.
func WithSleep(sleep func(time.Duration)) Option {
	return func(c *Crawler) {
		c.sleep = sleep
	}
}

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Crawler) {
		c.now = now
	}
}

// WithFetchPath makes the fetcher request the task URL's path instead of
// the bare host.
func WithFetchPath(enabled bool) Option {
	return func(c *Crawler) {
		c.fetchPath = enabled
	}
}

// New creates a Crawler.
func New(resolver HostResolver, fetcher PageFetcher, reg registry.Registry, sink report.Sink, opts ...Option) *Crawler {
	c := &Crawler{
		resolver: resolver,
		fetcher:  fetcher,
		analyzer: analyzer.New(),
		registry: reg,
		sink:     sink,
		delay:    time.Second,
		sleep:    time.Sleep,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// frame is one pending task on the traversal stack.
type frame struct {
	task model.CrawlTask

	// child is true for discovered sub-links, which wait the rate-limit
	// delay before they start.
	child bool
}

// Crawl traverses task and its sub-links depth-first and returns when the
// whole traversal is done or cancellation is observed.
func (c *Crawler) Crawl(ctx context.Context, task model.CrawlTask) Result {
	var res Result
	stack := []frame{{task: task}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if ctx.Err() != nil {
			c.transition(f.task, model.StateAborted)
			res.Aborted = true
			return res
		}
		if f.child && c.delay > 0 {
			c.sleep(c.delay)
		}

		children := c.visit(ctx, f.task, &res)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{task: children[i], child: true})
		}
	}
	return res
}

// visit crawls a single task and returns the child tasks to traverse next.
func (c *Crawler) visit(ctx context.Context, task model.CrawlTask, res *Result) []model.CrawlTask {
	c.transition(task, model.StatePending)

	if ctx.Err() != nil {
		c.transition(task, model.StateAborted)
		res.Aborted = true
		return nil
	}
	if task.DepthRemaining < 0 {
		c.transition(task, model.StateDone)
		return nil
	}

	// In-flight work is not interrupted by cancellation.
	opCtx := context.WithoutCancel(ctx)

	claimed, err := c.registry.Claim(opCtx, task.URL)
	if err != nil {
		c.logger.Error("registry claim failed", "url", task.URL, "error", err)
		c.transition(task, model.StateAborted)
		res.Failures++
		return nil
	}
	if !claimed {
		c.transition(task, model.StateDone)
		res.Skipped++
		return nil
	}

	c.transition(task, model.StateResolving)
	host, err := c.resolver.Resolve(opCtx, task.URL)
	if err != nil {
		c.fail(opCtx, task, err, res)
		return nil
	}

	c.transition(task, model.StateFetching)
	resp, err := c.fetcher.Fetch(opCtx, host, c.pathOf(task.URL))
	if err != nil {
		c.fail(opCtx, task, err, res)
		return nil
	}

	if err := c.registry.Commit(opCtx, task.URL); err != nil {
		c.logger.Error("registry commit failed", "url", task.URL, "error", err)
	}

	c.transition(task, model.StateAnalyzing)
	result := c.analyzer.Analyze(task.URL, resp.Body)
	finding := &model.Finding{
		Timestamp:      c.now(),
		URL:            task.URL,
		IPAddress:      host.IPAddress,
		Hostname:       host.Hostname,
		StatusCode:     resp.StatusCode,
		ContentPreview: result.ContentPreview,
		Subdirectories: result.Subdirectories,
		Emails:         result.Emails,
		TopKeywords:    result.TopKeywords,
	}
	if err := c.sink.RecordFinding(opCtx, finding); err != nil {
		c.logger.Error("failed to record finding", "url", task.URL, "error", err)
	}
	res.Pages++
	c.logger.Info("finding",
		"url", task.URL,
		"ip", host.IPAddress,
		"protocol", host.Protocol.String(),
		"status", resp.StatusCode,
		"subdirectories", len(finding.Subdirectories),
		"emails", len(finding.Emails),
	)

	c.transition(task, model.StateRecursing)
	var children []model.CrawlTask
	if task.DepthRemaining > 0 {
		for _, sub := range finding.Subdirectories {
			if analyzer.IsCrawlable(sub) {
				children = append(children, task.Child(sub))
			}
		}
	}
	c.transition(task, model.StateDone)
	return children
}

// fail records a failed task and releases its claim.
func (c *Crawler) fail(ctx context.Context, task model.CrawlTask, err error, res *Result) {
	record := model.NewErrorRecord(c.now(), task.URL, err)
	if sinkErr := c.sink.RecordError(ctx, record); sinkErr != nil {
		c.logger.Error("failed to record crawl error", "url", task.URL, "error", sinkErr)
	}
	if relErr := c.registry.Release(ctx, task.URL); relErr != nil {
		c.logger.Error("registry release failed", "url", task.URL, "error", relErr)
	}

	attrs := []any{"url", task.URL, "kind", record.Kind.String(), "error", err}
	if record.StatusCode != nil {
		attrs = append(attrs, "status", *record.StatusCode)
	}
	c.logger.Warn("crawl failed", attrs...)

	c.transition(task, model.StateAborted)
	res.Failures++
}

// pathOf returns the path the fetcher requests for rawURL.
// It is empty, the bare host, unless fetch-path mode is enabled.
func (c *Crawler) pathOf(rawURL string) string {
	if !c.fetchPath {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	path := u.EscapedPath()
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return path
}

func (c *Crawler) transition(task model.CrawlTask, state model.TaskState) {
	c.logger.Debug("task state",
		"url", task.URL,
		"depth_remaining", task.DepthRemaining,
		"state", state.String(),
	)
}
