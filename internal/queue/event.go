// Package queue defines message payloads exchanged over the message broker.
package queue

// PortionCompletedEvent is published when a participant finishes a
// portion. It carries enough for downstream consumers (notifications,
// analytics) without querying the primary database.
type PortionCompletedEvent struct {
	RecitationID  uint64 `json:"recitation_id"`
	Title         string `json:"title"`
	PortionNumber int    `json:"portion_number"`
	UserID        uint64 `json:"user_id"`
	CompletedAt   string `json:"completed_at"`
}

// RecitationCompletedEvent is published when the last portion of a
// recitation is completed and the recitation flips to completed.
type RecitationCompletedEvent struct {
	RecitationID  uint64 `json:"recitation_id"`
	Title         string `json:"title"`
	TotalPortions int    `json:"total_portions"`
	CompletedAt   string `json:"completed_at"`
}
