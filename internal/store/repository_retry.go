package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lingvoro/lingvoro-client/internal/logger"
	"github.com/lingvoro/lingvoro-client/models"
)

type retryQueueRepository struct {
	*DB
	logger *logger.Logger
}

// NewRetryQueueRepository constructs the SQLite-backed offline retry queue.
func NewRetryQueueRepository(db *DB, log *logger.Logger) RetryQueueRepository {
	return &retryQueueRepository{DB: db, logger: log}
}

func (r *retryQueueRepository) Enqueue(ctx context.Context, operation string, payload any, opts models.RetryOptions) error {
	log := logger.FromContext(ctx)

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("serialize retry payload: %w", err)
	}

	query, args, err := enqueueRetryQuery(operation, string(raw), opts.Priority, opts.MaxRetries)
	if err != nil {
		return fmt.Errorf("build retry enqueue: %w", err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "retryQueueRepository.Enqueue").Str("operation", operation).Msg("failed to enqueue retry task")
		return fmt.Errorf("enqueue retry task: %w", err)
	}

	return nil
}

func (r *retryQueueRepository) Pending(ctx context.Context, limit int) ([]models.RetryTask, error) {
	log := logger.FromContext(ctx)

	query, args, err := pendingRetryQuery(limit)
	if err != nil {
		return nil, fmt.Errorf("build pending query: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "retryQueueRepository.Pending").Msg("failed to query pending retry tasks")
		return nil, fmt.Errorf("query pending retry tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.RetryTask
	for rows.Next() {
		var (
			task models.RetryTask
			raw  string
		)
		if err = rows.Scan(&task.ID, &task.Operation, &raw, &task.Priority, &task.MaxRetries, &task.Attempts); err != nil {
			log.Err(err).Str("func", "retryQueueRepository.Pending").Msg("failed to scan retry task row")
			return nil, fmt.Errorf("scan retry task row: %w", err)
		}
		task.Payload = json.RawMessage(raw)
		tasks = append(tasks, task)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate retry tasks: %w", err)
	}

	return tasks, nil
}

func (r *retryQueueRepository) MarkDone(ctx context.Context, id int64) error {
	query, args, err := deleteRetryQuery(id)
	if err != nil {
		return fmt.Errorf("build retry delete: %w", err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete retry task %d: %w", id, err)
	}

	return nil
}

func (r *retryQueueRepository) MarkFailed(ctx context.Context, id int64) error {
	query, args, err := failRetryQuery(id)
	if err != nil {
		return fmt.Errorf("build retry fail update: %w", err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark retry task %d failed: %w", id, err)
	}

	return nil
}
