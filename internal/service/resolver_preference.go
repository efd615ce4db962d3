package service

import "github.com/lingvoro/lingvoro-client/models"

// userPreferenceResolver resolves conflicts on preference-like entities by
// always keeping the device-local side. No user notification: the next sync
// cycle pushes the local state naturally.
type userPreferenceResolver struct {
	entityTypes map[string]bool
}

// NewUserPreferenceResolver builds a local-wins resolver whose Supports
// accepts the given entity types (all types when none are given).
func NewUserPreferenceResolver(entityTypes ...string) ConflictResolver {
	r := &userPreferenceResolver{}
	if len(entityTypes) > 0 {
		r.entityTypes = make(map[string]bool, len(entityTypes))
		for _, t := range entityTypes {
			r.entityTypes[t] = true
		}
	}
	return r
}

func (r *userPreferenceResolver) Supports(entityType string) bool {
	if r.entityTypes == nil {
		return true
	}
	return r.entityTypes[entityType]
}

func (r *userPreferenceResolver) Resolve(localChanges, remoteChanges models.Changes, syncCtx models.SyncContext) models.ResolutionResult {
	return models.ResolutionResult{
		Resolution:   models.ResolutionLocalWins,
		ResolvedData: localChanges.Clone(),
		NotifyUser:   false,
	}
}
