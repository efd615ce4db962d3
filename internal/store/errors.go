package store

import "errors"

var (
	// ErrEntityNotFound indicates no local record exists for the requested
	// entity key.
	ErrEntityNotFound = errors.New("entity not found in local store")

	// ErrUnknownEntityType indicates a stored row carries an entity type the
	// client does not know how to hydrate.
	ErrUnknownEntityType = errors.New("unknown entity type")
)
