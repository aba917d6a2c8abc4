package model

// CrawlTask is a single unit of traversal work.
// It is created when a root seed is submitted or a sub-link is discovered,
// and it is consumed immediately by the worker that created it.
type CrawlTask struct {
	// URL is the absolute URL to crawl.
	URL string

	// DepthRemaining is the number of recursion levels still allowed.
	// A task with DepthRemaining < 0 is never crawled.
	DepthRemaining int
}

// NewRootTask creates the task for a seed URL with the full depth budget.
func NewRootTask(seedURL string, maxDepth int) CrawlTask {
	return CrawlTask{URL: seedURL, DepthRemaining: maxDepth}
}

// Child returns the task for a discovered sub-link one level deeper.
func (t CrawlTask) Child(childURL string) CrawlTask {
	return CrawlTask{URL: childURL, DepthRemaining: t.DepthRemaining - 1}
}

// TaskState is the lifecycle state of a CrawlTask.
//
// A task moves Pending -> Resolving -> Fetching -> Analyzing -> Recursing -> Done.
// Aborted is terminal and reachable from any state on cancellation or failure.
type TaskState int

const (
	// StatePending is the state of a task that has not been checked yet.
	StatePending TaskState = iota

	// StateResolving means the host lookup and protocol checks are running.
	StateResolving

	// StateFetching means the page is being retrieved.
	StateFetching

	// StateAnalyzing means links, emails and keywords are being extracted.
	StateAnalyzing

	// StateRecursing means the discovered sub-links are being scheduled.
	StateRecursing

	// StateDone means the task finished without error.
	StateDone

	// StateAborted means the task stopped early on cancellation or failure.
	StateAborted
)

// String returns the lower-case name of the state for logging.
func (s TaskState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateResolving:
		return "resolving"
	case StateFetching:
		return "fetching"
	case StateAnalyzing:
		return "analyzing"
	case StateRecursing:
		return "recursing"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can follow this state.
func (s TaskState) Terminal() bool {
	return s == StateDone || s == StateAborted
}
