// Package tasks detaches fire-and-forget work from the caller. A failed task
// reaches the logging sink and nothing else; callers never observe results.
package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/storelink/relay/internal/infrastructure/logging"
)

const defaultTimeout = 10 * time.Second

type Runner struct {
	logger  logging.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewRunner(logger logging.Logger, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Runner{
		logger:  logger,
		timeout: timeout,
	}
}

// Go runs fn on its own goroutine with a bounded context. The error channel
// is the log: failures are recorded and dropped.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			r.logger.Error(logging.IO, logging.Persistence, "background task failed", map[logging.ExtraKey]any{
				logging.TaskName:     name,
				logging.ErrorMessage: err.Error(),
			})
		}
	}()
}

// Wait blocks until every spawned task has returned. In-flight tasks are not
// cancelled; shutdown simply stops waiting for new ones.
func (r *Runner) Wait() {
	r.wg.Wait()
}
