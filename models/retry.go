package models

import "encoding/json"

// RetryOptions configures how the offline retry queue handles an enqueued
// operation. The engine treats the queue itself as opaque.
type RetryOptions struct {
	Priority   int `json:"priority"`
	MaxRetries int `json:"max_retries"`
}

// RetryPayload is the payload the coordinator enqueues for a retryable sync
// failure. The replay worker decodes it and re-invokes the coordinator.
type RetryPayload struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	RetryCount int    `json:"retry_count"`
}

// RetryTask is one persisted row of the offline retry queue as seen by the
// replay worker.
type RetryTask struct {
	ID         int64           `json:"id"`
	Operation  string          `json:"operation"`
	Payload    json.RawMessage `json:"payload"`
	Priority   int             `json:"priority"`
	MaxRetries int             `json:"max_retries"`
	Attempts   int             `json:"attempts"`
}
