package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/collective-recitation/internal/model"
	"github.com/iliyamo/collective-recitation/internal/repository"
)

// maxCustomPortions caps explicit portion counts so a single create
// cannot ask the store for an absurd number of rows.
const maxCustomPortions = 10000

// RecitationHandler serves recitation creation, listing, detail and
// join. Portion-count resolution is delegated to the catalog
// repository, injected here rather than reached for globally.
type RecitationHandler struct {
	Recitations  *repository.RecitationRepo
	Participants *repository.ParticipantRepo
	Catalog      *repository.ContentTypeRepo
}

func NewRecitationHandler(r *repository.RecitationRepo, p *repository.ParticipantRepo, ct *repository.ContentTypeRepo) *RecitationHandler {
	return &RecitationHandler{Recitations: r, Participants: p, Catalog: ct}
}

type createRecitationReq struct {
	Title         string  `json:"title"`
	Description   *string `json:"description"`
	ContentType   string  `json:"content_type"`
	PortionType   string  `json:"portion_type"`
	TotalPortions *int    `json:"total_portions"`
	Language      string  `json:"language"`
	Deadline      *string `json:"deadline"`
}

// Create handles POST /v1/recitations. The portion count is resolved
// exactly once, here; the recitation, the creator's membership and
// every portion row are inserted in a single transaction.
func (h *RecitationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createRecitationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.ContentType = strings.ToLower(strings.TrimSpace(req.ContentType))
	req.PortionType = strings.ToLower(strings.TrimSpace(req.PortionType))
	if req.Title == "" || req.ContentType == "" || req.PortionType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title, content_type and portion_type required"})
	}
	if req.TotalPortions != nil && (*req.TotalPortions <= 0 || *req.TotalPortions > maxCustomPortions) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_portions out of range"})
	}
	lang := strings.TrimSpace(req.Language)
	if lang == "" {
		lang = "en"
	}
	var deadline *time.Time
	if req.Deadline != nil && strings.TrimSpace(*req.Deadline) != "" {
		t, err := time.Parse(time.RFC3339, *req.Deadline)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "deadline must be RFC3339"})
		}
		utc := t.UTC()
		deadline = &utc
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	total, err := h.Catalog.ResolvePortionCount(ctx, req.ContentType, req.PortionType, req.TotalPortions)
	if err != nil {
		if errors.Is(err, repository.ErrTotalRequired) || errors.Is(err, repository.ErrUnsupportedCombination) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "resolve portion count failed"})
	}

	rec := &model.Recitation{
		Title:         req.Title,
		Description:   req.Description,
		CreatorID:     userID,
		ContentType:   req.ContentType,
		PortionType:   req.PortionType,
		TotalPortions: total,
		Language:      lang,
		Deadline:      deadline,
	}
	id, err := h.Recitations.CreateAll(ctx, rec)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create recitation failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"recitation_id": id, "total_portions": total})
}

// List handles GET /v1/recitations: all active recitations with their
// aggregates, newest first.
func (h *RecitationHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Recitations.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"recitations": list})
}

// Get handles GET /v1/recitations/:id.
func (h *RecitationHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	det, err := h.Recitations.GetDetail(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "recitation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, det)
}

// Join handles POST /v1/recitations/:id/join.
func (h *RecitationHandler) Join(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	exists, err := h.Recitations.Exists(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !exists {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "recitation not found"})
	}
	if err := h.Participants.Join(ctx, id, userID); err != nil {
		if err == repository.ErrAlreadyParticipant {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "join failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"joined": true})
}
