package runstate

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
)

// Controller owns the run's cancellation.
type Controller struct {
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	logger *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// New creates a running Controller derived from parent.
func New(parent context.Context, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(parent)
	c := &Controller{ctx: ctx, cancel: cancel}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Context returns the context cancelled by Stop.
func (c *Controller) Context() context.Context {
	return c.ctx
}

// Continue reports whether new work may start.
func (c *Controller) Continue() bool {
	return c.ctx.Err() == nil
}

// Stop cancels the run. Only the first call has an effect.
// It never blocks.
func (c *Controller) Stop(reason string) {
	c.once.Do(func() {
		c.logger.Info("stopping crawl", "reason", reason)
		c.cancel()
	})
}

// Install stops the run when one of sigs arrives.
// After the first signal the handler is removed, so a second interrupt
// terminates the process with the default behavior. The returned function
// removes the handler early and must be called when the run is over.
func (c *Controller) Install(sigs ...os.Signal) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, sigs...)
	done := make(chan struct{})
	var stopOnce sync.Once
	uninstall := func() {
		stopOnce.Do(func() {
			signal.Stop(sigCh)
			close(done)
		})
	}

	go func() {
		select {
		case sig := <-sigCh:
			uninstall()
			c.Stop("received " + sig.String())
		case <-done:
		}
	}()
	return uninstall
}
