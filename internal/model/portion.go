package model

import "time"

// Portion is one numbered unit of a recitation.  All portion rows for
// a recitation are pre-created, unassigned, when the recitation is
// created; the set never grows or shrinks afterward.  A portion moves
// Unassigned -> Assigned -> Completed; there is no transition out of
// Completed and no release back to Unassigned.
type Portion struct {
	ID                 uint64     // portions.id
	RecitationID       uint64     // portions.recitation_id
	UserID             *uint64    // portions.user_id (nil while unassigned)
	PortionNumber      int        // portions.portion_number (1..total_portions)
	ProgressPercentage int        // portions.progress_percentage (0..100 snapshot)
	IsCompleted        bool       // portions.is_completed
	AssignedAt         *time.Time // portions.assigned_at (nullable)
	CompletedAt        *time.Time // portions.completed_at (nullable)
	LastProgressUpdate *time.Time // portions.last_progress_update (nullable)
}
