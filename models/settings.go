package models

import "encoding/json"

// Settings holds device-local application preferences. Preferences sync with
// last-write-wins and resolve conflicts in favour of the local device.
type Settings struct {
	SyncState

	// OwnerID is the user these settings belong to.
	OwnerID int64 `json:"owner_id"`

	// Theme is the UI theme name ("light", "dark", "system").
	Theme string `json:"theme"`

	// NotificationsEnabled toggles study reminders.
	NotificationsEnabled bool `json:"notifications_enabled"`

	// AudioEnabled toggles exercise audio playback.
	AudioEnabled bool `json:"audio_enabled"`

	// ReminderHour is the local hour (0-23) for the daily reminder.
	ReminderHour int `json:"reminder_hour"`
}

// Key implements [Syncable]. Settings are a per-user singleton.
func (s *Settings) Key() EntityKey {
	return EntityKey{Type: EntityTypeSettings, ID: "default"}
}

// SetTheme records a local theme change.
func (s *Settings) SetTheme(theme string) {
	s.Theme = theme
	s.MarkDirty("theme", theme)
}

// SetNotifications records a local toggle of study reminders.
func (s *Settings) SetNotifications(enabled bool) {
	s.NotificationsEnabled = enabled
	s.MarkDirty("notifications_enabled", enabled)
}

// SetReminderHour records a local change of the reminder hour.
func (s *Settings) SetReminderHour(hour int) {
	s.ReminderHour = hour
	s.MarkDirty("reminder_hour", hour)
}

// ApplyRemoteChanges implements [Syncable].
func (s *Settings) ApplyRemoteChanges(changes Changes) error {
	tmp := *s
	if err := decodeChanges(changes, &tmp); err != nil {
		return err
	}
	tmp.SyncState = s.SyncState
	*s = tmp
	return nil
}

// SerializeForSync implements [Syncable].
func (s *Settings) SerializeForSync() ([]byte, error) {
	return json.Marshal(s)
}
