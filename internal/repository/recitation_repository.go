package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/collective-recitation/internal/model"
)

// RecitationRepo provides data access to recitations and their
// fixed portion sets.  All timestamps are stored in UTC.
type RecitationRepo struct{ DB *sql.DB }

func NewRecitationRepo(db *sql.DB) *RecitationRepo { return &RecitationRepo{DB: db} }

// CreateAll inserts a recitation, auto-joins the creator and
// pre-creates all portion rows 1..totalPortions, unassigned, inside
// one transaction.  Either every row lands or none does; a recitation
// can never be observed with a partial portion set.
func (r *RecitationRepo) CreateAll(ctx context.Context, rec *model.Recitation) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO recitations (title, description, creator_id, content_type, portion_type, total_portions, language, deadline)
		 VALUES (?,?,?,?,?,?,?,?)`,
		rec.Title, rec.Description, rec.CreatorID, rec.ContentType, rec.PortionType,
		rec.TotalPortions, rec.Language, rec.Deadline)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	recitationID := uint64(id)

	// Creator automatically joins.
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO participants (recitation_id, user_id) VALUES (?,?)",
		recitationID, rec.CreatorID); err != nil {
		return 0, err
	}

	// Pre-create the whole portion set in one bulk statement.
	query := "INSERT INTO portions (recitation_id, portion_number) VALUES "
	args := make([]interface{}, 0, rec.TotalPortions*2)
	for i := 1; i <= rec.TotalPortions; i++ {
		if i > 1 {
			query += ","
		}
		query += "(?,?)"
		args = append(args, recitationID, i)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return recitationID, nil
}

// RecitationSummary is one row of the active-recitation listing,
// combining the recitation with derived aggregate counts.
type RecitationSummary struct {
	ID               uint64  `json:"id"`
	Title            string  `json:"title"`
	Description      *string `json:"description,omitempty"`
	CreatorID        uint64  `json:"creator_id"`
	CreatorName      string  `json:"creator_name"`
	ContentType      string  `json:"content_type"`
	PortionType      string  `json:"portion_type"`
	Status           string  `json:"status"`
	Language         string  `json:"language"`
	Deadline         *string `json:"deadline,omitempty"`
	CreatedAt        string  `json:"created_at"`
	ParticipantCount int     `json:"participant_count"`
	CompletedCount   int     `json:"completed_count"`
	TotalPortions    int     `json:"total_portions"`
}

// ListActive returns all active recitations, newest first, with
// participant and completion aggregates computed in the store.
func (r *RecitationRepo) ListActive(ctx context.Context) ([]RecitationSummary, error) {
	const q = `SELECT k.id, k.title, k.description, k.creator_id, u.name,
	                  k.content_type, k.portion_type, k.status, k.language,
	                  k.deadline, k.created_at, k.total_portions,
	                  (SELECT COUNT(*) FROM participants p WHERE p.recitation_id = k.id),
	                  (SELECT COUNT(*) FROM portions po WHERE po.recitation_id = k.id AND po.is_completed = 1)
	           FROM recitations k
	           JOIN users u ON u.id = k.creator_id
	           WHERE k.status = 'active'
	           ORDER BY k.created_at DESC, k.id DESC`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]RecitationSummary, 0)
	for rows.Next() {
		var s RecitationSummary
		var deadline sql.NullTime
		var createdAt time.Time
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.CreatorID, &s.CreatorName,
			&s.ContentType, &s.PortionType, &s.Status, &s.Language,
			&deadline, &createdAt, &s.TotalPortions,
			&s.ParticipantCount, &s.CompletedCount); err != nil {
			return nil, err
		}
		if deadline.Valid {
			iso := deadline.Time.UTC().Format(time.RFC3339)
			s.Deadline = &iso
		}
		s.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		out = append(out, s)
	}
	return out, rows.Err()
}

// PortionStatus is one portion row of a recitation detail, with the
// assignee's name joined in when the portion is taken.
type PortionStatus struct {
	PortionNumber      int     `json:"portion_number"`
	UserID             *uint64 `json:"user_id,omitempty"`
	UserName           *string `json:"user_name,omitempty"`
	ProgressPercentage int     `json:"progress_percentage"`
	IsCompleted        bool    `json:"is_completed"`
	AssignedAt         *string `json:"assigned_at,omitempty"`
	CompletedAt        *string `json:"completed_at,omitempty"`
}

// RecitationDetail bundles a recitation with its full ordered portion
// set for the detail endpoint.
type RecitationDetail struct {
	ID            uint64          `json:"id"`
	Title         string          `json:"title"`
	Description   *string         `json:"description,omitempty"`
	CreatorID     uint64          `json:"creator_id"`
	CreatorName   string          `json:"creator_name"`
	ContentType   string          `json:"content_type"`
	PortionType   string          `json:"portion_type"`
	TotalPortions int             `json:"total_portions"`
	Status        string          `json:"status"`
	Language      string          `json:"language"`
	Deadline      *string         `json:"deadline,omitempty"`
	CreatedAt     string          `json:"created_at"`
	Portions      []PortionStatus `json:"portions"`
}

// GetDetail loads a recitation and all of its portions ordered by
// portion number.  Unknown ids yield ErrNotFound.
func (r *RecitationRepo) GetDetail(ctx context.Context, id uint64) (*RecitationDetail, error) {
	const q = `SELECT k.id, k.title, k.description, k.creator_id, u.name,
	                  k.content_type, k.portion_type, k.total_portions,
	                  k.status, k.language, k.deadline, k.created_at
	           FROM recitations k
	           JOIN users u ON u.id = k.creator_id
	           WHERE k.id = ?`
	var det RecitationDetail
	var deadline sql.NullTime
	var createdAt time.Time
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&det.ID, &det.Title, &det.Description, &det.CreatorID, &det.CreatorName,
		&det.ContentType, &det.PortionType, &det.TotalPortions,
		&det.Status, &det.Language, &deadline, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if deadline.Valid {
		iso := deadline.Time.UTC().Format(time.RFC3339)
		det.Deadline = &iso
	}
	det.CreatedAt = createdAt.UTC().Format(time.RFC3339)

	const portionQ = `SELECT p.portion_number, p.user_id, u.name,
	                         p.progress_percentage, p.is_completed, p.assigned_at, p.completed_at
	                  FROM portions p
	                  LEFT JOIN users u ON u.id = p.user_id
	                  WHERE p.recitation_id = ?
	                  ORDER BY p.portion_number`
	rows, err := r.DB.QueryContext(ctx, portionQ, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	det.Portions = make([]PortionStatus, 0, det.TotalPortions)
	for rows.Next() {
		var ps PortionStatus
		var assignedAt, completedAt sql.NullTime
		if err := rows.Scan(&ps.PortionNumber, &ps.UserID, &ps.UserName,
			&ps.ProgressPercentage, &ps.IsCompleted, &assignedAt, &completedAt); err != nil {
			return nil, err
		}
		if assignedAt.Valid {
			iso := assignedAt.Time.UTC().Format(time.RFC3339)
			ps.AssignedAt = &iso
		}
		if completedAt.Valid {
			iso := completedAt.Time.UTC().Format(time.RFC3339)
			ps.CompletedAt = &iso
		}
		det.Portions = append(det.Portions, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &det, nil
}

// Brief returns just the title and total portion count, enough to
// fill an event payload without loading the full detail.
func (r *RecitationRepo) Brief(ctx context.Context, id uint64) (string, int, error) {
	var title string
	var total int
	err := r.DB.QueryRowContext(ctx,
		"SELECT title, total_portions FROM recitations WHERE id=? LIMIT 1", id).Scan(&title, &total)
	if err == sql.ErrNoRows {
		return "", 0, ErrNotFound
	}
	if err != nil {
		return "", 0, err
	}
	return title, total, nil
}

// Exists reports whether a recitation with the given id exists.
func (r *RecitationRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM recitations WHERE id=? LIMIT 1", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
