package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/lingvoro/lingvoro-client/internal/adapter"
	"github.com/lingvoro/lingvoro-client/internal/logger"
	"github.com/lingvoro/lingvoro-client/internal/service"
	"github.com/lingvoro/lingvoro-client/internal/store"
	"github.com/lingvoro/lingvoro-client/models"
)

// OpSyncEntity is the retry-queue operation name for a deferred entity sync.
const OpSyncEntity = "sync_entity"

const drainBatchSize = 50

// RetryWorker drains the offline retry queue on a ticker, replaying each
// deferred sync through the coordinator. Tasks that keep failing transiently
// accumulate attempts until the queue stops returning them.
type RetryWorker struct {
	queue       store.RetryQueueRepository
	coordinator service.Coordinator
	probe       service.ConnectivityProbe
	interval    time.Duration
	logger      *logger.Logger
}

// NewRetryWorker builds a worker draining queue every interval. The probe
// gates draining: there is no point replaying sync tasks while offline.
func NewRetryWorker(queue store.RetryQueueRepository, coordinator service.Coordinator, probe service.ConnectivityProbe, interval time.Duration, log *logger.Logger) *RetryWorker {
	return &RetryWorker{
		queue:       queue,
		coordinator: coordinator,
		probe:       probe,
		interval:    interval,
		logger:      log,
	}
}

// Run implements [Worker].
func (w *RetryWorker) Run(ctx context.Context) error {
	t := time.NewTicker(w.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if w.probe != nil && !w.probe.IsOnline() {
				continue
			}
			if err := w.drain(ctx); err != nil {
				w.logger.Err(err).Str("func", "RetryWorker.Run").Msg("retry queue drain failed")
			}
		}
	}
}

func (w *RetryWorker) drain(ctx context.Context) error {
	tasks, err := w.queue.Pending(ctx, drainBatchSize)
	if err != nil {
		return fmt.Errorf("load pending retry tasks: %w", err)
	}

	for _, task := range tasks {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := w.replay(ctx, task); err != nil {
			w.logger.Err(err).Str("func", "RetryWorker.drain").Int64("task_id", task.ID).Str("operation", task.Operation).Msg("retry task failed")
			if markErr := w.queue.MarkFailed(ctx, task.ID); markErr != nil {
				return fmt.Errorf("mark retry task %d failed: %w", task.ID, markErr)
			}
			continue
		}
		if err := w.queue.MarkDone(ctx, task.ID); err != nil {
			return fmt.Errorf("mark retry task %d done: %w", task.ID, err)
		}
	}

	return nil
}

// replay executes one queued task with capped exponential backoff around
// transient failures.
func (w *RetryWorker) replay(ctx context.Context, task models.RetryTask) error {
	if task.Operation != OpSyncEntity {
		return fmt.Errorf("unknown retry operation %q", task.Operation)
	}

	var payload models.RetryPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return fmt.Errorf("decode retry payload: %w", err)
	}

	backoff := retry.WithCappedDuration(30*time.Second, retry.NewExponential(time.Second))
	backoff = retry.WithMaxRetries(2, backoff)

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := w.coordinator.SyncEntity(ctx, payload.EntityType, payload.EntityID, models.SyncOptions{
			RetryCount: payload.RetryCount,
		})
		if errors.Is(err, adapter.ErrTransient) {
			return retry.RetryableError(err)
		}
		return err
	})
}
