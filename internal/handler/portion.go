package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/collective-recitation/internal/queue"
	"github.com/iliyamo/collective-recitation/internal/repository"
	publisher "github.com/iliyamo/collective-recitation/internal/service"
)

// PortionHandler serves the portion state machine: assign, complete
// and progress reporting, plus the note history. The claim and
// complete operations are single conditional updates in the
// repository, so handlers never lock anything themselves.
type PortionHandler struct {
	Portions     *repository.PortionRepo
	Participants *repository.ParticipantRepo
	Recitations  *repository.RecitationRepo
	Notes        *repository.ProgressNoteRepo
	RabbitURL    string
}

func NewPortionHandler(p *repository.PortionRepo, pa *repository.ParticipantRepo, r *repository.RecitationRepo, n *repository.ProgressNoteRepo, rabbitURL string) *PortionHandler {
	return &PortionHandler{Portions: p, Participants: pa, Recitations: r, Notes: n, RabbitURL: rabbitURL}
}

type assignReq struct {
	PortionNumber int `json:"portion_number"`
}

// Assign handles POST /v1/recitations/:id/assign. Only participants
// may claim; of concurrent claims on the same portion exactly one
// succeeds and the rest get a 400.
func (h *PortionHandler) Assign(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	recitationID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req assignReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.PortionNumber <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "portion_number required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	exists, err := h.Recitations.Exists(ctx, recitationID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !exists {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "recitation not found"})
	}
	member, err := h.Participants.Exists(ctx, recitationID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !member {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "must join recitation first"})
	}

	if err := h.Portions.Assign(ctx, recitationID, req.PortionNumber, userID); err != nil {
		if err == repository.ErrPortionTaken {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assign failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"assigned": true, "portion_number": req.PortionNumber})
}

// Complete handles PUT /v1/recitations/:id/portions/:n/complete. Only
// the current assignee may complete. When the last portion goes, the
// recitation flips to completed and both events are published, best
// effort, off the request path.
func (h *PortionHandler) Complete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	recitationID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	portionNumber, err := pathInt(c, "n")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	recitationDone, err := h.Portions.Complete(ctx, recitationID, portionNumber, userID)
	if err != nil {
		if err == repository.ErrNotAssignee {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "complete failed"})
	}

	title, total, berr := h.Recitations.Brief(ctx, recitationID)
	if berr == nil {
		now := time.Now().UTC().Format(time.RFC3339)
		go func() {
			pubCtx, pubCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer pubCancel()
			_ = publisher.PublishPortionCompleted(pubCtx, h.RabbitURL, queue.PortionCompletedEvent{
				RecitationID:  recitationID,
				Title:         title,
				PortionNumber: portionNumber,
				UserID:        userID,
				CompletedAt:   now,
			})
			if recitationDone {
				_ = publisher.PublishRecitationCompleted(pubCtx, h.RabbitURL, queue.RecitationCompletedEvent{
					RecitationID:  recitationID,
					Title:         title,
					TotalPortions: total,
					CompletedAt:   now,
				})
			}
		}()
	}

	return c.JSON(http.StatusOK, echo.Map{
		"completed":            true,
		"recitation_completed": recitationDone,
	})
}

type progressReq struct {
	ProgressPercentage int     `json:"progress_percentage"`
	Notes              *string `json:"notes"`
}

// Progress handles PUT /v1/recitations/:id/portions/:n/progress.
func (h *PortionHandler) Progress(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	recitationID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	portionNumber, err := pathInt(c, "n")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req progressReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ProgressPercentage < 0 || req.ProgressPercentage > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "progress_percentage must be between 0 and 100"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Portions.UpdateProgress(ctx, recitationID, portionNumber, userID, req.ProgressPercentage, req.Notes); err != nil {
		if err == repository.ErrNotAssignee {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update progress failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"progress_percentage": req.ProgressPercentage})
}

// NoteHistory handles GET /v1/recitations/:id/portions/:n/notes.
func (h *PortionHandler) NoteHistory(c echo.Context) error {
	recitationID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	portionNumber, err := pathInt(c, "n")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	portionID, err := h.Portions.PortionID(ctx, recitationID, portionNumber)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "portion not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	notes, err := h.Notes.ListByPortion(ctx, portionID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"notes": notes})
}
