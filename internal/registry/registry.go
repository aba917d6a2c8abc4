package registry

import "context"

// Registry is the run-scoped set of visited URLs.
type Registry interface {
	// Claim atomically reserves url for the caller. It reports false when url
	// is already visited or currently claimed by another worker.
	Claim(ctx context.Context, url string) (bool, error)

	// Commit marks a claimed url as visited for the rest of the run.
	Commit(ctx context.Context, url string) error

	// Release drops a claim without marking url visited.
	Release(ctx context.Context, url string) error

	// Visited reports whether url has been committed.
	Visited(ctx context.Context, url string) (bool, error)

	// Len returns the number of visited URLs.
	Len(ctx context.Context) (int, error)

	// Close releases any resources held by the registry.
	Close() error
}
