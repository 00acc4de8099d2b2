package repository

import (
	"context"
	"database/sql"
)

// ParticipantRepo provides data access to recitation membership.
type ParticipantRepo struct{ DB *sql.DB }

func NewParticipantRepo(db *sql.DB) *ParticipantRepo { return &ParticipantRepo{DB: db} }

// Join adds the user to a recitation.  The unique (recitation_id,
// user_id) key makes the operation race-safe: a concurrent double
// join surfaces as a duplicate error, reported as
// ErrAlreadyParticipant.
func (r *ParticipantRepo) Join(ctx context.Context, recitationID, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO participants (recitation_id, user_id) VALUES (?,?)",
		recitationID, userID)
	if err != nil {
		if isDuplicate(err) {
			return ErrAlreadyParticipant
		}
		return err
	}
	return nil
}

// Exists reports whether the user has joined the recitation.
func (r *ParticipantRepo) Exists(ctx context.Context, recitationID, userID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM participants WHERE recitation_id=? AND user_id=? LIMIT 1",
		recitationID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
