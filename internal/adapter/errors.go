package adapter

import "errors"

// Sentinel errors mapped from transport-level failures. The sync engine
// classifies outcomes with errors.Is against these values.
var (
	// ErrNotFound indicates the server has no record of the requested
	// entity. Non-retryable.
	ErrNotFound = errors.New("remote entity not found")

	// ErrUnauthorized indicates the bearer token was rejected.
	// Non-retryable until a new token is supplied.
	ErrUnauthorized = errors.New("client unauthorized")

	// ErrTransient indicates a temporary failure (timeout, connection
	// refused, 5xx, throttling). Retryable via the offline queue.
	ErrTransient = errors.New("transient remote failure")
)
