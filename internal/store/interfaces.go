package store

import (
	"context"

	"github.com/lingvoro/lingvoro-client/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mocks.go -package=mock

// EntityRepository is the local state source: it owns the syncable entity
// records and exposes the set the engine may enumerate during bulk sync.
type EntityRepository interface {
	// ListStates returns lightweight descriptors for every locally known
	// entity.
	ListStates(ctx context.Context) ([]models.EntityState, error)

	// GetEntity loads and hydrates one entity. Returns ErrEntityNotFound
	// when no such record exists.
	GetEntity(ctx context.Context, key models.EntityKey) (models.Syncable, error)

	// SaveEntity upserts the entity's payload, dirty change-set, and sync
	// version.
	SaveEntity(ctx context.Context, entity models.Syncable) error
}

// VersionRepository is the persisted sync-version table: the durable mirror
// of the coordinator's in-memory entity→version map.
type VersionRepository interface {
	// LoadAll reads the full version table.
	LoadAll(ctx context.Context) (map[string]int64, error)

	// ReplaceAll rewrites the table with the given mapping in one
	// transaction.
	ReplaceAll(ctx context.Context, versions map[string]int64) error
}

// RetryQueueRepository is the offline retry queue. The sync engine only ever
// calls Enqueue; Pending/MarkDone/MarkFailed belong to the replay worker.
type RetryQueueRepository interface {
	Enqueue(ctx context.Context, operation string, payload any, opts models.RetryOptions) error
	Pending(ctx context.Context, limit int) ([]models.RetryTask, error)
	MarkDone(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64) error
}
