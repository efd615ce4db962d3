package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingvoro/lingvoro-client/models"
)

func TestUserPreferenceResolver_AlwaysLocalWins(t *testing.T) {
	r := NewUserPreferenceResolver()
	local := models.Changes{"theme": "dark"}
	remote := models.Changes{"theme": "light"}

	res := r.Resolve(local, remote, models.SyncContext{})

	require.Equal(t, models.ResolutionLocalWins, res.Resolution)
	assert.False(t, res.NotifyUser, "device-local preference wins silently")
	assert.Equal(t, local, res.ResolvedData)
}

func TestUserPreferenceResolver_Supports(t *testing.T) {
	scoped := NewUserPreferenceResolver(models.EntityTypeSettings)
	assert.True(t, scoped.Supports(models.EntityTypeSettings))
	assert.False(t, scoped.Supports(models.EntityTypeProgress))

	unscoped := NewUserPreferenceResolver()
	assert.True(t, unscoped.Supports("anything"))
}

func TestProgressResolver_NumericMax(t *testing.T) {
	r := NewProgressResolver()
	local := models.Changes{"score": 80.0, "completion": 0.9}
	remote := models.Changes{"score": 90.0, "completion": 0.5}

	res := r.Resolve(local, remote, models.SyncContext{})

	require.Equal(t, models.ResolutionMerged, res.Resolution)
	assert.True(t, res.NotifyUser, "user-visible merge must be flagged")
	assert.Equal(t, 90.0, res.ResolvedData["score"])
	assert.Equal(t, 0.9, res.ResolvedData["completion"])
}

func TestProgressResolver_ListUnion(t *testing.T) {
	r := NewProgressResolver()
	local := models.Changes{"completed_lessons": []any{"l1", "l2"}}
	remote := models.Changes{"completed_lessons": []any{"l2", "l3"}}

	res := r.Resolve(local, remote, models.SyncContext{})

	require.Equal(t, models.ResolutionMerged, res.Resolution)
	assert.ElementsMatch(t, []string{"l1", "l2", "l3"}, res.ResolvedData["completed_lessons"])
}

func TestProgressResolver_DisjointFieldsKept(t *testing.T) {
	r := NewProgressResolver()
	local := models.Changes{"streak_days": 4.0}
	remote := models.Changes{"score": 90.0}

	res := r.Resolve(local, remote, models.SyncContext{})

	assert.Equal(t, 4.0, res.ResolvedData["streak_days"])
	assert.Equal(t, 90.0, res.ResolvedData["score"])
}

func TestProgressResolver_NonMergeableFallsBackToRemote(t *testing.T) {
	r := NewProgressResolver()
	local := models.Changes{"course_id": "a"}
	remote := models.Changes{"course_id": "b"}

	res := r.Resolve(local, remote, models.SyncContext{})

	assert.Equal(t, "b", res.ResolvedData["course_id"])
}

func TestMergeProgressField_MixedIntTypes(t *testing.T) {
	assert.Equal(t, 7, mergeProgressField(7, 5.0))
	assert.Equal(t, int64(9), mergeProgressField(3.0, int64(9)))
}
