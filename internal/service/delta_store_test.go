package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/lingvoro/lingvoro-client/internal/events"
	"github.com/lingvoro/lingvoro-client/internal/logger"
	"github.com/lingvoro/lingvoro-client/internal/mock"
	"github.com/lingvoro/lingvoro-client/internal/store"
	"github.com/lingvoro/lingvoro-client/models"
)

func delta(from, to int64, changes models.Changes) models.DeltaUpdate {
	return models.DeltaUpdate{
		EntityID:    "42",
		EntityType:  "progress",
		FromVersion: from,
		ToVersion:   to,
		Changes:     changes,
		Timestamp:   time.Now(),
	}
}

// ── RecordDelta / GetDeltas ──────────────────────────────────────────────────

func TestDeltaStore_CapacityBound(t *testing.T) {
	rec := &recordingEmitter{}
	d := NewDeltaStore(3, nil, rec, logger.Nop())

	for v := int64(0); v < 4; v++ {
		d.RecordDelta(delta(v, v+1, models.Changes{"score": float64(v)}))
	}

	got := d.GetDeltas("progress", "42", 0, 0)
	require.Len(t, got, 3, "capacity+1 records must retain exactly capacity entries")
	assert.Equal(t, int64(1), got[0].FromVersion, "oldest entry evicted first")
	assert.Equal(t, int64(4), got[2].ToVersion)
}

func TestDeltaStore_GetDeltas_Range(t *testing.T) {
	d := NewDeltaStore(10, nil, &recordingEmitter{}, logger.Nop())
	for v := int64(0); v < 5; v++ {
		d.RecordDelta(delta(v, v+1, nil))
	}

	got := d.GetDeltas("progress", "42", 2, 4)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].FromVersion)
	assert.Equal(t, int64(4), got[1].ToVersion)
}

func TestDeltaStore_GetDeltas_UnknownKey(t *testing.T) {
	d := NewDeltaStore(10, nil, &recordingEmitter{}, logger.Nop())
	assert.Empty(t, d.GetDeltas("progress", "missing", 0, 0))
}

// ── ApplyDelta ───────────────────────────────────────────────────────────────

func TestDeltaStore_ApplyDelta_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	entities := mock.NewMockEntityRepository(ctrl)
	rec := &recordingEmitter{}
	d := NewDeltaStore(10, entities, rec, logger.Nop())

	progress := &models.Progress{CourseID: "42", Score: 70}
	progress.SetSyncVersion(10)
	key := models.EntityKey{Type: "progress", ID: "42"}

	entities.EXPECT().GetEntity(gomock.Any(), key).Return(progress, nil)
	entities.EXPECT().SaveEntity(gomock.Any(), progress).Return(nil)

	err := d.ApplyDelta(context.Background(), delta(10, 12, models.Changes{"score": 90.0}))
	require.NoError(t, err)

	assert.Equal(t, int64(12), progress.SyncVersion())
	assert.Equal(t, float64(90), progress.Score)
	assert.Equal(t, 1, d.Len("progress", "42"), "applied delta recorded into history")

	n, ok := rec.find(events.DeltaApplied)
	require.True(t, ok)
	assert.Equal(t, int64(12), n.Fields["to_version"])
}

func TestDeltaStore_ApplyDelta_VersionMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	entities := mock.NewMockEntityRepository(ctrl)
	rec := &recordingEmitter{}
	d := NewDeltaStore(10, entities, rec, logger.Nop())

	progress := &models.Progress{CourseID: "42"}
	progress.SetSyncVersion(11)
	entities.EXPECT().GetEntity(gomock.Any(), gomock.Any()).Return(progress, nil)

	err := d.ApplyDelta(context.Background(), delta(10, 12, models.Changes{"score": 90.0}))
	require.ErrorIs(t, err, ErrDeltaMismatch)

	assert.Equal(t, int64(11), progress.SyncVersion())
	assert.Zero(t, d.Len("progress", "42"))
	_, ok := rec.find(events.DeltaApplyFailed)
	assert.True(t, ok)
}

func TestDeltaStore_ApplyDelta_BadChanges_NoOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	entities := mock.NewMockEntityRepository(ctrl)
	rec := &recordingEmitter{}
	d := NewDeltaStore(10, entities, rec, logger.Nop())

	progress := &models.Progress{CourseID: "42", Score: 70}
	progress.SetSyncVersion(10)
	entities.EXPECT().GetEntity(gomock.Any(), gomock.Any()).Return(progress, nil)

	err := d.ApplyDelta(context.Background(), delta(10, 12, models.Changes{"score": "broken"}))
	require.Error(t, err)

	// A failed apply is a complete no-op.
	assert.Equal(t, int64(10), progress.SyncVersion())
	assert.Equal(t, float64(70), progress.Score)
	assert.Zero(t, d.Len("progress", "42"))
}

func TestDeltaStore_ApplyDelta_EntityMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	entities := mock.NewMockEntityRepository(ctrl)
	d := NewDeltaStore(10, entities, &recordingEmitter{}, logger.Nop())

	entities.EXPECT().GetEntity(gomock.Any(), gomock.Any()).Return(nil, store.ErrEntityNotFound)

	err := d.ApplyDelta(context.Background(), delta(10, 12, nil))
	require.ErrorIs(t, err, store.ErrEntityNotFound)
}

func TestDeltaStore_ApplyDelta_SaveFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	entities := mock.NewMockEntityRepository(ctrl)
	rec := &recordingEmitter{}
	d := NewDeltaStore(10, entities, rec, logger.Nop())

	progress := &models.Progress{CourseID: "42"}
	progress.SetSyncVersion(10)
	entities.EXPECT().GetEntity(gomock.Any(), gomock.Any()).Return(progress, nil)
	entities.EXPECT().SaveEntity(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	err := d.ApplyDelta(context.Background(), delta(10, 12, models.Changes{"score": 90.0}))
	require.Error(t, err)
	assert.Zero(t, d.Len("progress", "42"), "history untouched when persistence fails")
}
