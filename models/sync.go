package models

import "time"

// SyncStatus classifies the outcome of a single sync operation.
type SyncStatus string

const (
	// StatusSynced means local and remote state were reconciled.
	StatusSynced SyncStatus = "synced"
	// StatusConflict means the strategy could not reconcile the two sides and
	// a conflict resolver is required.
	StatusConflict SyncStatus = "conflict"
	// StatusError means the operation failed outright.
	StatusError SyncStatus = "error"
)

// SyncResult is the structured outcome of one sync operation for one entity.
type SyncResult struct {
	Key     EntityKey  `json:"key"`
	Success bool       `json:"success"`
	Status  SyncStatus `json:"status"`

	// Merged reports whether remote or merged data was applied to the entity.
	Merged bool `json:"merged,omitempty"`

	// AppliedChanges is the change-set that transitioned the entity to
	// NewVersion: the remote snapshot for a remote apply, the full union for
	// a field merge. Empty for no-op syncs.
	AppliedChanges Changes `json:"applied_changes,omitempty"`

	// NewVersion is the entity's version after a successful sync.
	NewVersion int64 `json:"new_version,omitempty"`

	// LocalChanges and RemoteChanges expose both sides of a conflict so the
	// resolver (or the user) can inspect them.
	LocalChanges  Changes `json:"local_changes,omitempty"`
	RemoteChanges Changes `json:"remote_changes,omitempty"`

	// Err carries the failure for StatusError results.
	Err error `json:"-"`

	Timestamp time.Time `json:"timestamp"`
}

// Resolution names the decision a conflict resolver took.
type Resolution string

const (
	// ResolutionLocalWins keeps the local change-set; nothing is applied.
	ResolutionLocalWins Resolution = "local_wins"
	// ResolutionRemoteWins applies the remote change-set over local state.
	ResolutionRemoteWins Resolution = "remote_wins"
	// ResolutionMerged applies a resolver-computed combination of both sides.
	ResolutionMerged Resolution = "merged"
	// ResolutionCustom applies a resolver-specific payload.
	ResolutionCustom Resolution = "custom"
)

// ResolutionResult is a conflict resolver's decision together with the data
// to apply and a flag telling the UI layer a user-visible merge occurred.
type ResolutionResult struct {
	Resolution   Resolution `json:"resolution"`
	ResolvedData Changes    `json:"resolved_data,omitempty"`
	NotifyUser   bool       `json:"notify_user"`
}

// SyncContext is the per-operation metadata bundle. It is built fresh for
// every operation and never mutated after construction.
type SyncContext struct {
	UserID     int64          `json:"user_id"`
	DeviceID   string         `json:"device_id"`
	IsOnline   bool           `json:"is_online"`
	Priority   int            `json:"priority"`
	RetryCount int            `json:"retry_count"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// SyncOptions carries caller-supplied knobs for a single sync operation.
type SyncOptions struct {
	// Priority orders the entity within a bulk sync; higher syncs first.
	Priority int `json:"priority"`

	// RetryCount is how many times this operation has already been retried
	// through the offline queue.
	RetryCount int `json:"retry_count"`

	// Metadata is merged into the SyncContext verbatim.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// RemoteEntity is the remote source-of-truth snapshot for one entity, as
// returned by the remote data source collaborator.
type RemoteEntity struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Data         Changes   `json:"data"`
	SyncVersion  int64     `json:"sync_version"`
	LastModified time.Time `json:"last_modified"`
}

// Key returns the remote snapshot's entity identity.
func (r RemoteEntity) Key() EntityKey {
	return EntityKey{Type: r.Type, ID: r.ID}
}
