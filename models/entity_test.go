package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── SyncState ────────────────────────────────────────────────────────────────

func TestSyncState_VersionNeverDecreases(t *testing.T) {
	var s SyncState

	s.SetSyncVersion(5)
	assert.Equal(t, int64(5), s.SyncVersion())

	s.SetSyncVersion(3)
	assert.Equal(t, int64(5), s.SyncVersion(), "lower version must be ignored")

	s.SetSyncVersion(12)
	assert.Equal(t, int64(12), s.SyncVersion())
}

func TestSyncState_DirtyTracking(t *testing.T) {
	p := &Progress{CourseID: "de-a1"}
	require.False(t, p.HasLocalChanges())

	p.RecordScore(80)
	p.CompleteLesson("lesson-3")

	require.True(t, p.HasLocalChanges())
	changes := p.ChangesSinceLastSync()
	assert.Equal(t, float64(80), changes["score"])
	assert.Equal(t, []string{"lesson-3"}, changes["completed_lessons"])

	// The returned change-set is a copy: mutating it must not leak back.
	changes["score"] = float64(999)
	assert.Equal(t, float64(80), p.ChangesSinceLastSync()["score"])

	p.ClearLocalChanges()
	assert.False(t, p.HasLocalChanges())
}

// ── ApplyRemoteChanges ───────────────────────────────────────────────────────

func TestProgress_ApplyRemoteChanges(t *testing.T) {
	p := &Progress{CourseID: "de-a1", Score: 70, Completion: 40}
	p.SetSyncVersion(10)

	err := p.ApplyRemoteChanges(Changes{"score": 90, "completion": 55.5})
	require.NoError(t, err)
	assert.Equal(t, float64(90), p.Score)
	assert.Equal(t, 55.5, p.Completion)
	assert.Equal(t, "de-a1", p.CourseID, "untouched fields survive")
	assert.Equal(t, int64(10), p.SyncVersion(), "version is not changed by apply")
}

func TestProgress_ApplyRemoteChanges_BadValueIsNoOp(t *testing.T) {
	p := &Progress{CourseID: "de-a1", Score: 70}

	err := p.ApplyRemoteChanges(Changes{"score": "ninety"})
	require.Error(t, err)
	assert.Equal(t, float64(70), p.Score, "failed apply must leave entity untouched")
}

func TestProfile_ApplyRemoteChanges_ReplacesFields(t *testing.T) {
	p := &Profile{UserID: 42, DisplayName: "Anna", TargetLanguage: "de"}

	err := p.ApplyRemoteChanges(Changes{"display_name": "Anya", "daily_goal_minutes": 25})
	require.NoError(t, err)
	assert.Equal(t, "Anya", p.DisplayName)
	assert.Equal(t, 25, p.DailyGoalMinutes)
	assert.Equal(t, "de", p.TargetLanguage)
}

// ── Keys ─────────────────────────────────────────────────────────────────────

func TestEntityKeys(t *testing.T) {
	profile := &Profile{UserID: 42}
	assert.Equal(t, "profile/42", profile.Key().String())

	progress := &Progress{CourseID: "de-a1"}
	assert.Equal(t, "progress/de-a1", progress.Key().String())

	settings := &Settings{OwnerID: 42}
	assert.Equal(t, "settings/default", settings.Key().String())
}
