package service

import (
	"context"
	"time"

	"github.com/lingvoro/lingvoro-client/models"
)

// SyncStrategy is a pluggable per-entity-type merge algorithm. Strategies are
// leaf logic: they inspect and mutate the given entity but hold no shared
// state of their own.
type SyncStrategy interface {
	// Sync reconciles the local entity against the remote snapshot under the
	// given per-operation context and reports the outcome. A Conflict status
	// is a structured outcome, not an error.
	Sync(local models.Syncable, remote models.RemoteEntity, syncCtx models.SyncContext) models.SyncResult

	// Supports reports whether the strategy can handle the entity type. Only
	// consulted for wildcard registrations.
	Supports(entityType string) bool
}

// ConflictResolver is a pluggable resolution policy invoked when a strategy
// reports Conflict.
type ConflictResolver interface {
	// Resolve decides how the two divergent change-sets combine. The returned
	// ResolvedData is what the coordinator applies for Merged and Custom
	// resolutions.
	Resolve(localChanges, remoteChanges models.Changes, syncCtx models.SyncContext) models.ResolutionResult

	// Supports reports whether the resolver can handle the entity type. Only
	// consulted for wildcard registrations.
	Supports(entityType string) bool
}

// Coordinator is the sync engine's public surface. One instance owns the
// per-entity pending set, the entity→version map, and the auto-sync timer;
// all interaction goes through these operations.
type Coordinator interface {
	// Initialize loads the persisted sync-version table, starts auto-sync
	// when it is enabled in configuration, and emits SyncInitialized.
	Initialize(ctx context.Context) error

	// SyncEntity synchronises one entity. If a sync for the same key is
	// already in flight the pending operation's eventual result is returned
	// instead of starting a second one.
	SyncEntity(ctx context.Context, entityType, entityID string, opts models.SyncOptions) (models.SyncResult, error)

	// SyncAll synchronises every known entity sequentially in descending
	// priority order. A second bulk run while one is active is rejected with
	// ErrBulkSyncRunning.
	SyncAll(ctx context.Context, opts models.SyncOptions) ([]models.SyncResult, error)

	// StartAutoSync begins timer-driven bulk syncs at the configured
	// interval. StopAutoSync halts them; both are idempotent.
	StartAutoSync(ctx context.Context)
	StopAutoSync()

	// RegisterStrategy and RegisterResolver install pluggable behaviour under
	// an entity-type key. The key "*" registers a wildcard entry consulted,
	// in registration order, when no exact match exists.
	RegisterStrategy(entityType string, strategy SyncStrategy)
	RegisterResolver(entityType string, resolver ConflictResolver)

	// SetConnectivityProbe attaches the network monitor's online flag.
	// Before a probe is attached the coordinator assumes it is online.
	SetConnectivityProbe(probe ConnectivityProbe)
}

// ConnectivityProbe reports whether the client currently has a usable link to
// the sync server. Implemented by the network monitor.
type ConnectivityProbe interface {
	IsOnline() bool
}

// alwaysOnline is the probe used before a network monitor is attached.
type alwaysOnline struct{}

func (alwaysOnline) IsOnline() bool { return true }

// clock abstracts time.Now and sleeping so tests can drive retries without
// real delays.
type clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
