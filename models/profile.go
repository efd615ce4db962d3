package models

import (
	"encoding/json"
	"strconv"
)

// Profile is the learner's account profile: identity, language pair, and the
// daily study goal. One record per user, synced with the last-write-wins
// strategy.
type Profile struct {
	SyncState

	// UserID is the owner of this profile.
	UserID int64 `json:"user_id"`

	// DisplayName is the learner's visible name.
	DisplayName string `json:"display_name"`

	// NativeLanguage is the learner's own language (BCP 47 tag, e.g. "ru").
	NativeLanguage string `json:"native_language"`

	// TargetLanguage is the language being studied (e.g. "de").
	TargetLanguage string `json:"target_language"`

	// DailyGoalMinutes is the daily study target in minutes.
	DailyGoalMinutes int `json:"daily_goal_minutes"`
}

// Key implements [Syncable].
func (p *Profile) Key() EntityKey {
	return EntityKey{Type: EntityTypeProfile, ID: strconv.FormatInt(p.UserID, 10)}
}

// SetDisplayName records a local edit of the display name.
func (p *Profile) SetDisplayName(name string) {
	p.DisplayName = name
	p.MarkDirty("display_name", name)
}

// SetDailyGoalMinutes records a local edit of the daily study goal.
func (p *Profile) SetDailyGoalMinutes(minutes int) {
	p.DailyGoalMinutes = minutes
	p.MarkDirty("daily_goal_minutes", minutes)
}

// SetTargetLanguage records a local switch of the studied language.
func (p *Profile) SetTargetLanguage(tag string) {
	p.TargetLanguage = tag
	p.MarkDirty("target_language", tag)
}

// ApplyRemoteChanges implements [Syncable]. The change-set is decoded into a
// throwaway copy first, so a malformed value (e.g. a string where a number is
// expected) leaves the profile untouched.
func (p *Profile) ApplyRemoteChanges(changes Changes) error {
	tmp := *p
	if err := decodeChanges(changes, &tmp); err != nil {
		return err
	}
	tmp.SyncState = p.SyncState
	*p = tmp
	return nil
}

// SerializeForSync implements [Syncable].
func (p *Profile) SerializeForSync() ([]byte, error) {
	return json.Marshal(p)
}
