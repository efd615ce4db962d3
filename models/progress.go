package models

import "encoding/json"

// Progress tracks the learner's advancement through one course: completion
// percentage, best score, the set of finished lessons, and the streak.
// Progress records are edited from several devices, so they sync with the
// field-merge strategy and resolve conflicts via the progress resolver.
type Progress struct {
	SyncState

	// CourseID identifies the course this record belongs to.
	CourseID string `json:"course_id"`

	// Completion is the course completion percentage in [0, 100].
	Completion float64 `json:"completion"`

	// Score is the best accumulated score across the course's exercises.
	Score float64 `json:"score"`

	// CompletedLessons holds the identifiers of finished lessons.
	CompletedLessons []string `json:"completed_lessons"`

	// StreakDays is the current uninterrupted study streak.
	StreakDays int `json:"streak_days"`
}

// Key implements [Syncable].
func (p *Progress) Key() EntityKey {
	return EntityKey{Type: EntityTypeProgress, ID: p.CourseID}
}

// RecordScore records a locally achieved score.
func (p *Progress) RecordScore(score float64) {
	p.Score = score
	p.MarkDirty("score", score)
}

// RecordCompletion records the locally observed completion percentage.
func (p *Progress) RecordCompletion(percent float64) {
	p.Completion = percent
	p.MarkDirty("completion", percent)
}

// CompleteLesson appends a lesson to the completed set if it is not already
// present and records the edit.
func (p *Progress) CompleteLesson(lessonID string) {
	for _, id := range p.CompletedLessons {
		if id == lessonID {
			return
		}
	}
	p.CompletedLessons = append(p.CompletedLessons, lessonID)
	p.MarkDirty("completed_lessons", append([]string(nil), p.CompletedLessons...))
}

// ApplyRemoteChanges implements [Syncable]. Decodes into a throwaway copy so
// that a failed decode is a complete no-op.
func (p *Progress) ApplyRemoteChanges(changes Changes) error {
	tmp := *p
	if err := decodeChanges(changes, &tmp); err != nil {
		return err
	}
	tmp.SyncState = p.SyncState
	*p = tmp
	return nil
}

// SerializeForSync implements [Syncable].
func (p *Progress) SerializeForSync() ([]byte, error) {
	return json.Marshal(p)
}
