package repository

import (
	"context"
	"database/sql"
	"time"
)

// ProgressNoteRepo reads the progress history of a portion.  Writes
// happen inside PortionRepo.UpdateProgress, next to the percentage
// update they belong to.
type ProgressNoteRepo struct{ DB *sql.DB }

func NewProgressNoteRepo(db *sql.DB) *ProgressNoteRepo { return &ProgressNoteRepo{DB: db} }

// ProgressNoteEntry is one note in a portion's history, with the
// author's name joined in.
type ProgressNoteEntry struct {
	ID                 uint64  `json:"id"`
	UserID             uint64  `json:"user_id"`
	UserName           string  `json:"user_name"`
	ProgressPercentage int     `json:"progress_percentage"`
	Notes              *string `json:"notes,omitempty"`
	CreatedAt          string  `json:"created_at"`
}

// ListByPortion returns the notes of a portion, newest first.
func (r *ProgressNoteRepo) ListByPortion(ctx context.Context, portionID uint64) ([]ProgressNoteEntry, error) {
	const q = `SELECT n.id, n.user_id, u.name, n.progress_percentage, n.notes, n.created_at
	           FROM progress_notes n
	           JOIN users u ON u.id = n.user_id
	           WHERE n.portion_id = ?
	           ORDER BY n.created_at DESC, n.id DESC`
	rows, err := r.DB.QueryContext(ctx, q, portionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ProgressNoteEntry, 0)
	for rows.Next() {
		var e ProgressNoteEntry
		var createdAt time.Time
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserName,
			&e.ProgressPercentage, &e.Notes, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		out = append(out, e)
	}
	return out, rows.Err()
}
