package repository

import (
	"context"
	"database/sql"
)

// PortionRepo implements the portion state machine.  A portion moves
// Unassigned -> Assigned -> Completed; both transitions are single
// conditional UPDATEs so concurrent callers race at the database and
// exactly one wins.
type PortionRepo struct{ DB *sql.DB }

func NewPortionRepo(db *sql.DB) *PortionRepo { return &PortionRepo{DB: db} }

// Assign claims an unassigned portion for the user.  The WHERE clause
// is the whole locking story: the update only matches while user_id
// is still NULL, so of any number of simultaneous claims exactly one
// affects a row.  Losers get ErrPortionTaken, which also covers a
// portion number that does not exist.
func (r *PortionRepo) Assign(ctx context.Context, recitationID uint64, portionNumber int, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE portions SET user_id = ?, assigned_at = UTC_TIMESTAMP()
		 WHERE recitation_id = ? AND portion_number = ? AND user_id IS NULL`,
		userID, recitationID, portionNumber)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPortionTaken
	}
	return nil
}

// Complete marks the caller's portion done and, when it was the last
// one, flips the recitation to completed.  The first update is
// conditional on the caller being the current assignee; the recount
// that follows is self-correcting under races, since whichever
// completion lands last still sees the full count and performs the
// flip.  Returns whether the recitation just completed.
func (r *PortionRepo) Complete(ctx context.Context, recitationID uint64, portionNumber int, userID uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE portions
		 SET is_completed = 1, progress_percentage = 100,
		     completed_at = UTC_TIMESTAMP(), last_progress_update = UTC_TIMESTAMP()
		 WHERE recitation_id = ? AND portion_number = ? AND user_id = ? AND is_completed = 0`,
		recitationID, portionNumber, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, ErrNotAssignee
	}

	var total, done int
	err = r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(is_completed), 0)
		 FROM portions WHERE recitation_id = ?`, recitationID).Scan(&total, &done)
	if err != nil {
		return false, err
	}
	if total == 0 || done < total {
		return false, nil
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE recitations SET status = 'completed' WHERE id = ? AND status = 'active'",
		recitationID)
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateProgress records a partial-progress report on the caller's
// portion and appends a progress-note row.  Only the current assignee
// of an uncompleted portion may report; anything else is
// ErrNotAssignee.  The percentage must already be validated to 0..100
// by the handler.
func (r *PortionRepo) UpdateProgress(ctx context.Context, recitationID uint64, portionNumber int, userID uint64, percentage int, notes *string) error {
	var portionID uint64
	err := r.DB.QueryRowContext(ctx,
		`SELECT id FROM portions
		 WHERE recitation_id = ? AND portion_number = ? AND user_id = ? AND is_completed = 0
		 LIMIT 1`,
		recitationID, portionNumber, userID).Scan(&portionID)
	if err == sql.ErrNoRows {
		return ErrNotAssignee
	}
	if err != nil {
		return err
	}

	res, err := r.DB.ExecContext(ctx,
		`UPDATE portions SET progress_percentage = ?, last_progress_update = UTC_TIMESTAMP()
		 WHERE id = ? AND user_id = ? AND is_completed = 0`,
		percentage, portionID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotAssignee
	}

	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO progress_notes (portion_id, user_id, progress_percentage, notes) VALUES (?,?,?,?)",
		portionID, userID, percentage, notes)
	return err
}

// PortionID resolves a (recitation, portion number) pair to the
// portion row id.  ErrNotFound when no such portion exists.
func (r *PortionRepo) PortionID(ctx context.Context, recitationID uint64, portionNumber int) (uint64, error) {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM portions WHERE recitation_id=? AND portion_number=? LIMIT 1",
		recitationID, portionNumber).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}
