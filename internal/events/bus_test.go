package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingvoro/lingvoro-client/internal/logger"
)

func TestBus_EmitFanOut(t *testing.T) {
	bus := NewBus(logger.Nop())

	var first, second []string
	bus.Subscribe(HandlerFunc(func(_ context.Context, n Notification) {
		first = append(first, n.Name)
	}))
	bus.Subscribe(HandlerFunc(func(_ context.Context, n Notification) {
		second = append(second, n.Name)
	}))

	bus.Emit(context.Background(), NewNotification(SyncStarted, nil))
	bus.Emit(context.Background(), NewNotification(SyncCompleted, nil))

	assert.Equal(t, []string{SyncStarted, SyncCompleted}, first)
	assert.Equal(t, []string{SyncStarted, SyncCompleted}, second)
}

func TestBus_EmitWithoutSubscribers(t *testing.T) {
	bus := NewBus(logger.Nop())

	// must not panic or block
	bus.Emit(context.Background(), NewNotification(SyncInitialized, nil))
}

func TestBus_PanickingHandlerIsContained(t *testing.T) {
	bus := NewBus(logger.Nop())

	var delivered bool
	bus.Subscribe(HandlerFunc(func(_ context.Context, _ Notification) {
		panic("bad consumer")
	}))
	bus.Subscribe(HandlerFunc(func(_ context.Context, _ Notification) {
		delivered = true
	}))

	bus.Emit(context.Background(), NewNotification(EntitySyncError, nil))

	assert.True(t, delivered, "panic in first handler must not stop delivery to the second")
}

func TestNewEntityNotification(t *testing.T) {
	n := NewEntityNotification(EntitySyncSuccess, "progress", "42", map[string]any{"new_version": int64(12)})

	require.Equal(t, EntitySyncSuccess, n.Name)
	assert.Equal(t, "progress", n.EntityType)
	assert.Equal(t, "42", n.EntityID)
	assert.Equal(t, int64(12), n.Fields["new_version"])
	assert.False(t, n.Timestamp.IsZero())
	assert.NotEmpty(t, n.ID)
}
