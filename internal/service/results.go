package service

import (
	"time"

	"github.com/lingvoro/lingvoro-client/models"
)

func syncedResult(key models.EntityKey, version int64, merged bool) models.SyncResult {
	return models.SyncResult{
		Key:        key,
		Success:    true,
		Status:     models.StatusSynced,
		Merged:     merged,
		NewVersion: version,
		Timestamp:  time.Now(),
	}
}

func conflictResult(key models.EntityKey, localChanges, remoteChanges models.Changes) models.SyncResult {
	return models.SyncResult{
		Key:           key,
		Status:        models.StatusConflict,
		LocalChanges:  localChanges,
		RemoteChanges: remoteChanges,
		Timestamp:     time.Now(),
	}
}

func errorResult(key models.EntityKey, err error) models.SyncResult {
	return models.SyncResult{
		Key:       key,
		Status:    models.StatusError,
		Err:       err,
		Timestamp: time.Now(),
	}
}
