package model

import "time"

// ProgressNote is an append-only log entry attached to a portion.
// Notes are written by the portion's assignee together with a
// percentage snapshot and are never mutated or deleted; they survive
// as a historical record independent of the portion's current state.
type ProgressNote struct {
	ID                 uint64    // progress_notes.id
	PortionID          uint64    // progress_notes.portion_id
	UserID             uint64    // progress_notes.user_id
	ProgressPercentage int       // progress_notes.progress_percentage
	Notes              *string   // progress_notes.notes (nullable free text)
	CreatedAt          time.Time // progress_notes.created_at
}
