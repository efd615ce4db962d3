// Package events carries the sync engine's lifecycle notifications to
// interested consumers without the engine knowing who listens. The
// coordinator publishes named notifications through a Bus; UI layers and
// loggers subscribe externally and the engine keeps no rendering
// responsibility.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Notification names emitted over the sync lifecycle.
const (
	SyncInitialized             = "SyncInitialized"
	SyncStarted                 = "SyncStarted"
	SyncCompleted               = "SyncCompleted"
	SyncFailed                  = "SyncFailed"
	EntitySyncSuccess           = "EntitySyncSuccess"
	EntitySyncError             = "EntitySyncError"
	ConflictResolutionAttempted = "ConflictResolutionAttempted"
	ConflictNoResolver          = "ConflictNoResolver"
	DeltaApplied                = "DeltaApplied"
	DeltaApplyFailed            = "DeltaApplyFailed"
	BulkSyncCompleted           = "BulkSyncCompleted"
	AutoSyncStarted             = "AutoSyncStarted"
	AutoSyncStopped             = "AutoSyncStopped"
	NetworkRestored             = "NetworkRestored"
)

// Notification is one named lifecycle event. EntityType and EntityID are
// empty for notifications that are not tied to a single entity (bulk and
// lifecycle events); Fields carries counts, versions, and error strings.
type Notification struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	EntityType string         `json:"entity_type,omitempty"`
	EntityID   string         `json:"entity_id,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	Fields     map[string]any `json:"fields,omitempty"`
}

// NewNotification builds a notification stamped with a fresh ID and the
// current time.
func NewNotification(name string, fields map[string]any) Notification {
	return Notification{
		ID:        uuid.New(),
		Name:      name,
		Timestamp: time.Now(),
		Fields:    fields,
	}
}

// NewEntityNotification builds a notification bound to one entity.
func NewEntityNotification(name, entityType, entityID string, fields map[string]any) Notification {
	n := NewNotification(name, fields)
	n.EntityType = entityType
	n.EntityID = entityID
	return n
}

// Handler processes notifications published on a Bus. Handlers must not
// block; slow consumers should hand off to their own goroutine.
type Handler interface {
	HandleNotification(ctx context.Context, n Notification)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, n Notification)

func (f HandlerFunc) HandleNotification(ctx context.Context, n Notification) {
	f(ctx, n)
}

// Emitter is the publishing side of the notification sink.
type Emitter interface {
	Emit(ctx context.Context, n Notification)
}
