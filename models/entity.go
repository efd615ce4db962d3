package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Known entity types synchronised by the engine.
const (
	EntityTypeProfile  = "profile"
	EntityTypeProgress = "progress"
	EntityTypeSettings = "settings"
)

// EntityKey uniquely identifies a syncable entity as the pair
// (entity type, entity id).
type EntityKey struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// String returns the canonical "type/id" form used as a map key by the
// coordinator, the delta store, and the persisted version table.
func (k EntityKey) String() string {
	return k.Type + "/" + k.ID
}

// Changes is a dirty change-set: field name → new value. Nested objects are
// represented as nested map[string]any values, exactly as encoding/json
// produces them.
type Changes map[string]any

// Clone returns a shallow copy of the change-set. Nested maps are copied one
// level deep so callers can add or remove top-level fields without affecting
// the original.
func (c Changes) Clone() Changes {
	if c == nil {
		return nil
	}
	out := make(Changes, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Syncable is the capability set every synchronised entity provides. The sync
// engine never creates or destroys entities; it only reads and mutates their
// sync-relevant state through this interface.
type Syncable interface {
	// Key returns the entity's (type, id) identity.
	Key() EntityKey

	// SyncVersion returns the entity's last successfully reconciled version.
	SyncVersion() int64

	// SetSyncVersion advances the entity's version. Versions are monotonic:
	// an attempt to set a lower version is ignored.
	SetSyncVersion(v int64)

	// HasLocalChanges reports whether the entity carries unsynced local edits.
	HasLocalChanges() bool

	// ChangesSinceLastSync returns a copy of the local dirty change-set.
	ChangesSinceLastSync() Changes

	// ClearLocalChanges drops the dirty change-set after a successful sync.
	ClearLocalChanges()

	// ApplyRemoteChanges overlays the given change-set onto the entity.
	// On error the entity is left completely untouched.
	ApplyRemoteChanges(changes Changes) error

	// SerializeForSync returns the entity's full payload as JSON.
	SerializeForSync() ([]byte, error)
}

// SyncState carries the sync-relevant bookkeeping every entity embeds:
// the monotonically increasing sync version and the local dirty change-set.
type SyncState struct {
	Version   int64      `json:"sync_version"`
	Dirty     Changes    `json:"-"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// SyncVersion implements [Syncable].
func (s *SyncState) SyncVersion() int64 { return s.Version }

// SetSyncVersion implements [Syncable]. The version never decreases: a value
// lower than the current one is ignored.
func (s *SyncState) SetSyncVersion(v int64) {
	if v > s.Version {
		s.Version = v
	}
}

// HasLocalChanges implements [Syncable].
func (s *SyncState) HasLocalChanges() bool { return len(s.Dirty) > 0 }

// ChangesSinceLastSync implements [Syncable].
func (s *SyncState) ChangesSinceLastSync() Changes { return s.Dirty.Clone() }

// ClearLocalChanges implements [Syncable].
func (s *SyncState) ClearLocalChanges() { s.Dirty = nil }

// MarkDirty records a local field edit into the dirty change-set and stamps
// UpdatedAt. Entity setters call this for every sync-relevant mutation.
func (s *SyncState) MarkDirty(field string, value any) {
	if s.Dirty == nil {
		s.Dirty = make(Changes)
	}
	s.Dirty[field] = value
	now := time.Now()
	s.UpdatedAt = &now
}

// EntityState is the lightweight descriptor the state source exposes for bulk
// enumeration: identity, version, local-edit flag, and sync priority.
type EntityState struct {
	Key         EntityKey `json:"key"`
	SyncVersion int64     `json:"sync_version"`
	HasChanges  bool      `json:"has_changes"`
	Priority    int       `json:"priority"`
}

// decodeChanges overlays a change-set onto dst by marshalling the change-set
// to JSON and unmarshalling it into dst. encoding/json fills only the fields
// present in the change-set, which gives the overlay semantics the sync
// strategies need. Callers pass a throwaway copy of the entity so that a
// decode error leaves the original untouched.
func decodeChanges(changes Changes, dst any) error {
	raw, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("encode changes: %w", err)
	}
	if err = json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("apply changes: %w", err)
	}
	return nil
}
