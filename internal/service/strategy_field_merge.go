package service

import (
	"fmt"
	"reflect"
	"time"

	"dario.cat/mergo"

	"github.com/lingvoro/lingvoro-client/models"
)

// fieldMergeStrategy reconciles collaborative entities (progress records) by
// a shallow key-wise union of the two change-sets. Nested objects recurse;
// a scalar present and differing on both sides is a conflict. Arrays are
// atomic values and are never diffed element-wise.
type fieldMergeStrategy struct {
	entityTypes map[string]bool
	now         func() time.Time
}

// NewFieldMergeStrategy builds a change-set-union strategy whose Supports
// accepts the given entity types (all types when none are given).
func NewFieldMergeStrategy(entityTypes ...string) SyncStrategy {
	s := &fieldMergeStrategy{now: time.Now}
	if len(entityTypes) > 0 {
		s.entityTypes = make(map[string]bool, len(entityTypes))
		for _, t := range entityTypes {
			s.entityTypes[t] = true
		}
	}
	return s
}

func (s *fieldMergeStrategy) Supports(entityType string) bool {
	if s.entityTypes == nil {
		return true
	}
	return s.entityTypes[entityType]
}

func (s *fieldMergeStrategy) Sync(local models.Syncable, remote models.RemoteEntity, syncCtx models.SyncContext) models.SyncResult {
	key := local.Key()
	localChanges := local.ChangesSinceLastSync()

	// Nothing to reconcile: no local edits and no remote version movement.
	if len(localChanges) == 0 && remote.SyncVersion == local.SyncVersion() {
		return syncedResult(key, local.SyncVersion(), false)
	}

	if fields := conflictingFields(localChanges, remote.Data, ""); len(fields) > 0 {
		return conflictResult(key, localChanges, remote.Data)
	}

	union := map[string]any(localChanges.Clone())
	if union == nil {
		union = make(map[string]any)
	}
	if err := mergo.Merge(&union, map[string]any(remote.Data)); err != nil {
		return errorResult(key, fmt.Errorf("merge change-sets: %w", err))
	}
	merged := models.Changes(union)

	if err := local.ApplyRemoteChanges(merged); err != nil {
		return errorResult(key, fmt.Errorf("apply merged changes: %w", err))
	}
	local.SetSyncVersion(freshVersion(local.SyncVersion(), remote.SyncVersion, s.now()))
	local.ClearLocalChanges()

	result := syncedResult(key, local.SyncVersion(), true)
	result.AppliedChanges = merged
	return result
}

// conflictingFields walks both change-sets and collects the dotted paths of
// scalar fields present and differing on both sides. Nested maps recurse;
// everything else, arrays included, compares as one atomic value.
func conflictingFields(local, remote models.Changes, prefix string) []string {
	var fields []string
	for name, localValue := range local {
		remoteValue, ok := remote[name]
		if !ok {
			continue
		}

		path := name
		if prefix != "" {
			path = prefix + "." + name
		}

		localNested, localIsMap := asChanges(localValue)
		remoteNested, remoteIsMap := asChanges(remoteValue)
		if localIsMap && remoteIsMap {
			fields = append(fields, conflictingFields(localNested, remoteNested, path)...)
			continue
		}

		if !reflect.DeepEqual(localValue, remoteValue) {
			fields = append(fields, path)
		}
	}
	return fields
}

func asChanges(v any) (models.Changes, bool) {
	switch m := v.(type) {
	case models.Changes:
		return m, true
	case map[string]any:
		return m, true
	default:
		return nil, false
	}
}

// freshVersion derives the post-merge version from the wall clock while
// guaranteeing it stays strictly above both inputs.
func freshVersion(localVersion, remoteVersion int64, now time.Time) int64 {
	v := now.UnixMilli()
	if localVersion >= v {
		v = localVersion + 1
	}
	if remoteVersion >= v {
		v = remoteVersion + 1
	}
	return v
}
