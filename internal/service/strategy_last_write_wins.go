package service

import (
	"fmt"

	"github.com/lingvoro/lingvoro-client/models"
)

// lastWriteWinsStrategy reconciles singleton-like entities (settings,
// profile) purely by version comparison.
type lastWriteWinsStrategy struct {
	entityTypes map[string]bool
}

// NewLastWriteWinsStrategy builds a version-comparison strategy whose
// Supports accepts the given entity types. With no types it accepts
// everything, which is the form used for wildcard registration.
func NewLastWriteWinsStrategy(entityTypes ...string) SyncStrategy {
	s := &lastWriteWinsStrategy{}
	if len(entityTypes) > 0 {
		s.entityTypes = make(map[string]bool, len(entityTypes))
		for _, t := range entityTypes {
			s.entityTypes[t] = true
		}
	}
	return s
}

func (s *lastWriteWinsStrategy) Supports(entityType string) bool {
	if s.entityTypes == nil {
		return true
	}
	return s.entityTypes[entityType]
}

func (s *lastWriteWinsStrategy) Sync(local models.Syncable, remote models.RemoteEntity, syncCtx models.SyncContext) models.SyncResult {
	key := local.Key()
	localVersion := local.SyncVersion()

	switch {
	case localVersion == remote.SyncVersion:
		// Already reconciled, nothing to do.
		return syncedResult(key, localVersion, false)

	case remote.SyncVersion > localVersion:
		if err := local.ApplyRemoteChanges(remote.Data); err != nil {
			return errorResult(key, fmt.Errorf("apply remote changes: %w", err))
		}
		local.SetSyncVersion(remote.SyncVersion)
		local.ClearLocalChanges()
		result := syncedResult(key, remote.SyncVersion, true)
		result.AppliedChanges = remote.Data
		return result

	default:
		// Local version ahead of remote. An un-pushed local lead is treated
		// as needing reconciliation rather than auto-winning, so the two
		// change-sets are handed to a resolver instead of being pushed.
		return conflictResult(key, local.ChangesSinceLastSync(), remote.Data)
	}
}
