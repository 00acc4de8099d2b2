package model

import "time"

// Recitation statuses.  A recitation starts active and flips to
// completed once every one of its portions is completed; there is no
// transition back.
const (
	RecitationActive    = "active"
	RecitationCompleted = "completed"
)

// Recitation is a group activity dividing a work into TotalPortions
// numbered portions for collective completion.  TotalPortions is
// resolved from the content catalog exactly once, at creation, and is
// immutable afterward even if the catalog entry later changes.
type Recitation struct {
	ID            uint64     // recitations.id
	Title         string     // recitations.title
	Description   *string    // recitations.description (nullable)
	CreatorID     uint64     // recitations.creator_id
	ContentType   string     // recitations.content_type (catalog name, e.g. "quran")
	PortionType   string     // recitations.portion_type (e.g. "juz")
	TotalPortions int        // recitations.total_portions
	Status        string     // recitations.status (active|completed)
	Language      string     // recitations.language
	Deadline      *time.Time // recitations.deadline (nullable)
	CreatedAt     time.Time  // recitations.created_at
}

// Participant records membership of a user in a recitation.  The
// (recitation, user) pair is unique; the creator is auto-joined at
// creation time.
type Participant struct {
	ID           uint64    // participants.id
	RecitationID uint64    // participants.recitation_id
	UserID       uint64    // participants.user_id
	JoinedAt     time.Time // participants.joined_at
}
