package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/lingvoro/lingvoro-client/internal/events"
	"github.com/lingvoro/lingvoro-client/internal/logger"
	"github.com/lingvoro/lingvoro-client/internal/store"
	"github.com/lingvoro/lingvoro-client/models"
)

// DeltaStore keeps a capacity-bounded, ordered history of applied change-sets
// per entity key, enabling range queries without a full remote re-fetch.
// History is append-only; once the per-key bound is exceeded the oldest
// entries are evicted first.
type DeltaStore struct {
	capacity int
	entities store.EntityRepository
	emitter  events.Emitter
	logger   *logger.Logger

	mu      sync.RWMutex
	history map[string][]models.DeltaUpdate
}

// NewDeltaStore creates an empty delta store bounded to capacity entries per
// entity key.
func NewDeltaStore(capacity int, entities store.EntityRepository, emitter events.Emitter, log *logger.Logger) *DeltaStore {
	if capacity <= 0 {
		capacity = 50
	}
	return &DeltaStore{
		capacity: capacity,
		entities: entities,
		emitter:  emitter,
		logger:   log,
		history:  make(map[string][]models.DeltaUpdate),
	}
}

// RecordDelta appends the update to its entity's history, evicting the
// oldest entries once the capacity bound is exceeded.
func (d *DeltaStore) RecordDelta(update models.DeltaUpdate) {
	key := update.Key().String()

	d.mu.Lock()
	defer d.mu.Unlock()

	entries := append(d.history[key], update)
	if over := len(entries) - d.capacity; over > 0 {
		entries = entries[over:]
	}
	d.history[key] = entries
}

// GetDeltas returns the ordered subsequence of recorded deltas whose range
// falls within [fromVersion, toVersion]. A toVersion of 0 means "up to the
// newest recorded". The returned slice is a copy; history is never mutated
// by reads.
func (d *DeltaStore) GetDeltas(entityType, entityID string, fromVersion, toVersion int64) []models.DeltaUpdate {
	key := models.EntityKey{Type: entityType, ID: entityID}.String()

	d.mu.RLock()
	defer d.mu.RUnlock()

	entries := d.history[key]
	if toVersion == 0 {
		for _, e := range entries {
			if e.ToVersion > toVersion {
				toVersion = e.ToVersion
			}
		}
	}

	var out []models.DeltaUpdate
	for _, e := range entries {
		if e.FromVersion >= fromVersion && e.ToVersion <= toVersion {
			out = append(out, e)
		}
	}
	return out
}

// Len reports the number of recorded deltas for one entity key.
func (d *DeltaStore) Len(entityType, entityID string) int {
	key := models.EntityKey{Type: entityType, ID: entityID}.String()

	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.history[key])
}

// ApplyDelta overlays a recorded change-set onto its target entity and
// advances the entity to the delta's target version. Any failure leaves the
// entity, the store, and the history completely untouched.
func (d *DeltaStore) ApplyDelta(ctx context.Context, update models.DeltaUpdate) error {
	log := logger.FromContext(ctx)
	key := update.Key()

	entity, err := d.entities.GetEntity(ctx, key)
	if err != nil {
		d.emitFailed(ctx, update, err)
		return fmt.Errorf("resolve delta target %s: %w", key, err)
	}

	if entity.SyncVersion() != update.FromVersion {
		err = fmt.Errorf("%w: entity at %d, delta from %d", ErrDeltaMismatch, entity.SyncVersion(), update.FromVersion)
		d.emitFailed(ctx, update, err)
		return err
	}

	if err = entity.ApplyRemoteChanges(update.Changes); err != nil {
		d.emitFailed(ctx, update, err)
		return fmt.Errorf("apply delta changes %s: %w", key, err)
	}
	entity.SetSyncVersion(update.ToVersion)

	if err = d.entities.SaveEntity(ctx, entity); err != nil {
		log.Err(err).Str("func", "DeltaStore.ApplyDelta").Str("key", key.String()).Msg("failed to persist entity after delta apply")
		d.emitFailed(ctx, update, err)
		return fmt.Errorf("persist delta apply %s: %w", key, err)
	}

	d.RecordDelta(update)
	d.emitter.Emit(ctx, events.NewEntityNotification(events.DeltaApplied, key.Type, key.ID, map[string]any{
		"from_version": update.FromVersion,
		"to_version":   update.ToVersion,
	}))

	return nil
}

func (d *DeltaStore) emitFailed(ctx context.Context, update models.DeltaUpdate, err error) {
	d.emitter.Emit(ctx, events.NewEntityNotification(events.DeltaApplyFailed, update.EntityType, update.EntityID, map[string]any{
		"from_version": update.FromVersion,
		"to_version":   update.ToVersion,
		"error":        err.Error(),
	}))
}
