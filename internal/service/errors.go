package service

import "errors"

var (
	// ErrNoStrategy means no registered sync strategy matched the entity
	// type. Non-retryable.
	ErrNoStrategy = errors.New("no sync strategy registered for entity type")

	// ErrBulkSyncRunning means a bulk sync was requested while another one
	// is still active. The second request is rejected, never queued.
	ErrBulkSyncRunning = errors.New("bulk sync already running")

	// ErrSyncFatal wraps a panic recovered inside a strategy or resolver.
	// Non-retryable.
	ErrSyncFatal = errors.New("fatal error during sync")

	// ErrDeltaMismatch means a delta update targets a different version than
	// the entity currently holds.
	ErrDeltaMismatch = errors.New("delta does not apply to entity version")

	// ErrRetriesExhausted means a transient failure had already used up the
	// configured retry attempts and was not re-enqueued.
	ErrRetriesExhausted = errors.New("retry attempts exhausted")
)
