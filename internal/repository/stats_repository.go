package repository

import (
	"context"
	"database/sql"
)

// StatsRepo computes the reporting aggregates.  Everything is derived
// from portion rows at read time; no counters are maintained.
type StatsRepo struct{ DB *sql.DB }

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{DB: db} }

// RecitationStats is the per-recitation progress summary.
type RecitationStats struct {
	RecitationID         uint64  `json:"recitation_id"`
	Title                string  `json:"title"`
	Status               string  `json:"status"`
	TotalPortions        int     `json:"total_portions"`
	AssignedPortions     int     `json:"assigned_portions"`
	CompletedPortions    int     `json:"completed_portions"`
	UnassignedPortions   int     `json:"unassigned_portions"`
	ActiveReciters       int     `json:"active_reciters"`
	ParticipantCount     int     `json:"participant_count"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

// ForRecitation computes a recitation's progress summary.  Unknown id
// yields ErrNotFound.  The percentage guard keeps a zero-portion row,
// should one ever exist, from dividing by zero.
func (r *StatsRepo) ForRecitation(ctx context.Context, id uint64) (*RecitationStats, error) {
	var s RecitationStats
	err := r.DB.QueryRowContext(ctx,
		`SELECT k.id, k.title, k.status, k.total_portions,
		        (SELECT COUNT(*) FROM portions p WHERE p.recitation_id = k.id AND p.user_id IS NOT NULL),
		        (SELECT COUNT(*) FROM portions p WHERE p.recitation_id = k.id AND p.is_completed = 1),
		        (SELECT COUNT(DISTINCT p.user_id) FROM portions p WHERE p.recitation_id = k.id AND p.user_id IS NOT NULL AND p.is_completed = 0),
		        (SELECT COUNT(*) FROM participants pt WHERE pt.recitation_id = k.id)
		 FROM recitations k WHERE k.id = ?`, id).Scan(
		&s.RecitationID, &s.Title, &s.Status, &s.TotalPortions,
		&s.AssignedPortions, &s.CompletedPortions, &s.ActiveReciters, &s.ParticipantCount)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.UnassignedPortions = s.TotalPortions - s.AssignedPortions
	if s.TotalPortions > 0 {
		s.CompletionPercentage = float64(s.CompletedPortions) / float64(s.TotalPortions) * 100
	}
	return &s, nil
}

// UserStats is a user's cross-recitation activity summary.
type UserStats struct {
	UserID             uint64 `json:"user_id"`
	RecitationsCreated int    `json:"recitations_created"`
	RecitationsJoined  int    `json:"recitations_joined"`
	PortionsAssigned   int    `json:"portions_assigned"`
	PortionsCompleted  int    `json:"portions_completed"`
	PortionsInProgress int    `json:"portions_in_progress"`
}

// ForUser computes a user's activity summary across all recitations.
// RecitationsJoined counts distinct recitations the user holds at
// least one portion in, not mere membership rows.
func (r *StatsRepo) ForUser(ctx context.Context, userID uint64) (*UserStats, error) {
	s := UserStats{UserID: userID}
	err := r.DB.QueryRowContext(ctx,
		`SELECT
		  (SELECT COUNT(*) FROM recitations WHERE creator_id = ?),
		  (SELECT COUNT(DISTINCT recitation_id) FROM portions WHERE user_id = ?),
		  (SELECT COUNT(*) FROM portions WHERE user_id = ?),
		  (SELECT COUNT(*) FROM portions WHERE user_id = ? AND is_completed = 1)`,
		userID, userID, userID, userID).Scan(
		&s.RecitationsCreated, &s.RecitationsJoined,
		&s.PortionsAssigned, &s.PortionsCompleted)
	if err != nil {
		return nil, err
	}
	s.PortionsInProgress = s.PortionsAssigned - s.PortionsCompleted
	return &s, nil
}
