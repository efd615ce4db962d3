package models

import "time"

// DeltaUpdate is the recorded change-set transitioning an entity between two
// consecutive sync versions. Immutable once recorded.
type DeltaUpdate struct {
	EntityID    string    `json:"entity_id"`
	EntityType  string    `json:"entity_type"`
	FromVersion int64     `json:"from_version"`
	ToVersion   int64     `json:"to_version"`
	Changes     Changes   `json:"changes"`
	Timestamp   time.Time `json:"timestamp"`
}

// Key returns the identity of the entity this delta belongs to.
func (d DeltaUpdate) Key() EntityKey {
	return EntityKey{Type: d.EntityType, ID: d.EntityID}
}
