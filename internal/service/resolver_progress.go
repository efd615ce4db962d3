package service

import "github.com/lingvoro/lingvoro-client/models"

// progressResolver merges divergent progress change-sets field by field:
// numeric fields take the maximum of the two sides (progress never goes
// backwards), list-valued fields take the set union, and everything else
// falls back to the remote value. The result is always a user-visible merge.
type progressResolver struct {
	entityTypes map[string]bool
}

// NewProgressResolver builds a merge resolver whose Supports accepts the
// given entity types (all types when none are given).
func NewProgressResolver(entityTypes ...string) ConflictResolver {
	r := &progressResolver{}
	if len(entityTypes) > 0 {
		r.entityTypes = make(map[string]bool, len(entityTypes))
		for _, t := range entityTypes {
			r.entityTypes[t] = true
		}
	}
	return r
}

func (r *progressResolver) Supports(entityType string) bool {
	if r.entityTypes == nil {
		return true
	}
	return r.entityTypes[entityType]
}

func (r *progressResolver) Resolve(localChanges, remoteChanges models.Changes, syncCtx models.SyncContext) models.ResolutionResult {
	resolved := remoteChanges.Clone()
	if resolved == nil {
		resolved = make(models.Changes)
	}

	for name, localValue := range localChanges {
		remoteValue, ok := resolved[name]
		if !ok {
			resolved[name] = localValue
			continue
		}
		resolved[name] = mergeProgressField(localValue, remoteValue)
	}

	return models.ResolutionResult{
		Resolution:   models.ResolutionMerged,
		ResolvedData: resolved,
		NotifyUser:   true,
	}
}

func mergeProgressField(local, remote any) any {
	if l, r, ok := asNumbers(local, remote); ok {
		if l > r {
			return local
		}
		return remote
	}

	if l, r, ok := asStringLists(local, remote); ok {
		return unionStrings(l, r)
	}

	return remote
}

// asNumbers accepts the numeric shapes encoding/json and the entity setters
// produce.
func asNumbers(a, b any) (float64, float64, bool) {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	return af, bf, aok && bok
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func asStringLists(a, b any) ([]string, []string, bool) {
	al, aok := asStringList(a)
	bl, bok := asStringList(b)
	return al, bl, aok && bok
}

func asStringList(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// unionStrings keeps first-occurrence order: all of a, then the members of b
// not already present.
func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}
