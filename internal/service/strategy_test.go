package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingvoro/lingvoro-client/models"
)

func newTestProgress(version int64) *models.Progress {
	p := &models.Progress{CourseID: "42", Score: 70, Completion: 0.4}
	p.SetSyncVersion(version)
	return p
}

// ── LastWriteWins ────────────────────────────────────────────────────────────

func TestLastWriteWins_EqualVersions_NoOp(t *testing.T) {
	s := NewLastWriteWinsStrategy()
	local := newTestProgress(5)
	remote := models.RemoteEntity{Type: "progress", ID: "42", SyncVersion: 5, Data: models.Changes{"score": 99.0}}

	result := s.Sync(local, remote, models.SyncContext{})

	require.Equal(t, models.StatusSynced, result.Status)
	assert.True(t, result.Success)
	assert.False(t, result.Merged)
	assert.Equal(t, int64(5), local.SyncVersion())
	assert.Equal(t, float64(70), local.Score, "equal versions must not mutate the entity")
}

func TestLastWriteWins_RemoteAhead_AppliesRemote(t *testing.T) {
	s := NewLastWriteWinsStrategy()
	local := newTestProgress(4)
	remote := models.RemoteEntity{Type: "progress", ID: "42", SyncVersion: 5, Data: models.Changes{"score": 90.0}}

	result := s.Sync(local, remote, models.SyncContext{})

	require.Equal(t, models.StatusSynced, result.Status)
	assert.True(t, result.Merged)
	assert.Equal(t, int64(5), result.NewVersion)
	assert.Equal(t, int64(5), local.SyncVersion())
	assert.Equal(t, float64(90), local.Score)
	assert.False(t, local.HasLocalChanges())
	assert.Equal(t, remote.Data, result.AppliedChanges)
}

func TestLastWriteWins_LocalAhead_Conflict(t *testing.T) {
	s := NewLastWriteWinsStrategy()
	local := newTestProgress(6)
	local.RecordScore(95)
	remote := models.RemoteEntity{Type: "progress", ID: "42", SyncVersion: 5, Data: models.Changes{"score": 90.0}}

	result := s.Sync(local, remote, models.SyncContext{})

	require.Equal(t, models.StatusConflict, result.Status)
	assert.False(t, result.Success)
	assert.Equal(t, models.Changes{"score": float64(95)}, result.LocalChanges)
	assert.Equal(t, remote.Data, result.RemoteChanges)
	assert.Equal(t, float64(95), local.Score, "conflict must leave local state untouched")
}

func TestLastWriteWins_ApplyError_ErrorResult(t *testing.T) {
	s := NewLastWriteWinsStrategy()
	local := newTestProgress(4)
	remote := models.RemoteEntity{Type: "progress", ID: "42", SyncVersion: 5, Data: models.Changes{"score": "not a number"}}

	result := s.Sync(local, remote, models.SyncContext{})

	require.Equal(t, models.StatusError, result.Status)
	assert.Error(t, result.Err)
	assert.Equal(t, int64(4), local.SyncVersion())
	assert.Equal(t, float64(70), local.Score, "failed apply must be a complete no-op")
}

// ── FieldMerge ───────────────────────────────────────────────────────────────

func TestFieldMerge_DisjointChanges_Merged(t *testing.T) {
	s := NewFieldMergeStrategy()
	local := newTestProgress(10)
	local.RecordScore(80)
	remote := models.RemoteEntity{Type: "progress", ID: "42", SyncVersion: 12, Data: models.Changes{"streak_days": 7.0}}

	result := s.Sync(local, remote, models.SyncContext{})

	require.Equal(t, models.StatusSynced, result.Status)
	assert.True(t, result.Merged)
	assert.Equal(t, float64(80), local.Score, "local side of the union kept")
	assert.Equal(t, 7, local.StreakDays, "remote side of the union applied")
	assert.False(t, local.HasLocalChanges())
	assert.Equal(t, models.Changes{"score": 80.0, "streak_days": 7.0}, result.AppliedChanges,
		"applied change-set carries both sides of the union")
}

func TestFieldMerge_NoChanges_SameVersion_NoOp(t *testing.T) {
	s := NewFieldMergeStrategy()
	local := newTestProgress(10)
	remote := models.RemoteEntity{Type: "progress", ID: "42", SyncVersion: 10, Data: models.Changes{"score": 70.0}}

	result := s.Sync(local, remote, models.SyncContext{})

	require.Equal(t, models.StatusSynced, result.Status)
	assert.False(t, result.Merged)
	assert.Equal(t, int64(10), local.SyncVersion(), "no-op must not inflate the version")
	assert.Equal(t, float64(70), local.Score)
}

func TestFieldMerge_DivergentScalar_Conflict(t *testing.T) {
	s := NewFieldMergeStrategy()
	local := newTestProgress(10)
	local.RecordScore(80)
	remote := models.RemoteEntity{Type: "progress", ID: "42", SyncVersion: 12, Data: models.Changes{"score": 90.0}}

	result := s.Sync(local, remote, models.SyncContext{})

	// A divergent scalar is never silently discarded: both values stay
	// retrievable in the conflict result.
	require.Equal(t, models.StatusConflict, result.Status)
	assert.Equal(t, float64(80), result.LocalChanges["score"])
	assert.Equal(t, float64(90), result.RemoteChanges["score"])
	assert.Equal(t, int64(10), local.SyncVersion())
}

func TestFieldMerge_FreshVersionStrictlyGreater(t *testing.T) {
	s := NewFieldMergeStrategy().(*fieldMergeStrategy)
	// Freeze the clock behind both versions so the guard has to kick in.
	s.now = func() time.Time { return time.UnixMilli(5) }

	local := newTestProgress(10)
	remote := models.RemoteEntity{Type: "progress", ID: "42", SyncVersion: 12, Data: models.Changes{"streak_days": 7.0}}

	result := s.Sync(local, remote, models.SyncContext{})

	require.Equal(t, models.StatusSynced, result.Status)
	assert.Greater(t, result.NewVersion, int64(12))
	assert.Equal(t, result.NewVersion, local.SyncVersion())
}

func TestConflictingFields_NestedAndArrays(t *testing.T) {
	local := models.Changes{
		"prefs":             map[string]any{"theme": "dark", "volume": 3.0},
		"completed_lessons": []any{"l1", "l2"},
		"score":             80.0,
	}
	remote := models.Changes{
		"prefs":             map[string]any{"theme": "light"},
		"completed_lessons": []any{"l1", "l3"},
		"score":             80.0,
	}

	fields := conflictingFields(local, remote, "")

	// Nested maps recurse to the field level; arrays compare as one atomic
	// value; identical scalars are not conflicts.
	assert.ElementsMatch(t, []string{"prefs.theme", "completed_lessons"}, fields)
}

func TestFreshVersion_ClockAhead(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	assert.Equal(t, int64(1_000_000), freshVersion(10, 12, now))
}
