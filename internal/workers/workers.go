// Package workers hosts the client's background jobs: everything that runs
// on its own schedule next to the sync engine rather than inside it.
package workers

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/lingvoro/lingvoro-client/internal/logger"
)

// Worker is a long-running background job. Run blocks until ctx is cancelled
// and returns the reason it stopped (ctx.Err() on a clean shutdown).
type Worker interface {
	Run(ctx context.Context) error
}

// Workers runs a set of background jobs and waits for all of them together.
type Workers struct {
	workers []Worker
	logger  *logger.Logger
}

// NewWorkers groups the given jobs.
func NewWorkers(log *logger.Logger, ws ...Worker) *Workers {
	return &Workers{workers: ws, logger: log}
}

// Run starts every worker in its own goroutine and blocks until all have
// exited. The first non-context error cancels the rest.
func (w *Workers) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)
	for _, worker := range w.workers {
		g.Go(func() error {
			return worker.Run(gCtx)
		})
	}
	return g.Wait()
}
