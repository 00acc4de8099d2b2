package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/collective-recitation/internal/model"
	"github.com/iliyamo/collective-recitation/internal/repository"
)

// namePattern constrains catalog names to lowercase identifiers, the
// same shape as the seeded entries ("quran", "nahj_balagha").
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{1,63}$`)

// ContentTypeHandler serves the content catalog: public listing plus
// the admin-only create/update/toggle operations. Admin gating is done
// by middleware before these methods run.
type ContentTypeHandler struct {
	Catalog *repository.ContentTypeRepo
}

func NewContentTypeHandler(catalog *repository.ContentTypeRepo) *ContentTypeHandler {
	return &ContentTypeHandler{Catalog: catalog}
}

type contentTypeResp struct {
	ID           uint64         `json:"id"`
	Name         string         `json:"name"`
	DisplayName  string         `json:"display_name"`
	Description  *string        `json:"description,omitempty"`
	PortionTypes map[string]int `json:"portion_types"`
	IsActive     bool           `json:"is_active"`
}

func toContentTypeResp(ct model.ContentType) contentTypeResp {
	resp := contentTypeResp{
		ID:           ct.ID,
		Name:         ct.Name,
		DisplayName:  ct.DisplayName,
		Description:  ct.Description,
		PortionTypes: map[string]int{},
		IsActive:     ct.IsActive,
	}
	if ct.PortionTypes != "" {
		// Malformed stored JSON degrades to an empty mapping.
		_ = json.Unmarshal([]byte(ct.PortionTypes), &resp.PortionTypes)
	}
	return resp
}

// List handles GET /v1/content-types. Inactive entries are included
// only when ?include_inactive=true, which the admin UI uses.
func (h *ContentTypeHandler) List(c echo.Context) error {
	includeInactive := c.QueryParam("include_inactive") == "true"

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Catalog.List(ctx, includeInactive)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]contentTypeResp, 0, len(list))
	for _, ct := range list {
		out = append(out, toContentTypeResp(ct))
	}
	return c.JSON(http.StatusOK, echo.Map{"content_types": out})
}

type createContentTypeReq struct {
	Name         string         `json:"name"`
	DisplayName  string         `json:"display_name"`
	Description  *string        `json:"description"`
	PortionTypes map[string]int `json:"portion_types"`
}

// Create handles POST /v1/admin/content-types.
func (h *ContentTypeHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createContentTypeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.ToLower(strings.TrimSpace(req.Name))
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if !namePattern.MatchString(req.Name) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid name"})
	}
	if req.DisplayName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "display_name required"})
	}
	if req.PortionTypes == nil {
		req.PortionTypes = map[string]int{}
	}
	for label, n := range req.PortionTypes {
		if strings.TrimSpace(label) == "" || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "portion_types values must be positive"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Catalog.Create(ctx, req.Name, req.DisplayName, req.Description, req.PortionTypes, userID)
	if err != nil {
		if err == repository.ErrNameExists {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create content type failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "name": req.Name})
}

type updateContentTypeReq struct {
	DisplayName  *string        `json:"display_name"`
	Description  *string        `json:"description"`
	PortionTypes map[string]int `json:"portion_types"`
	IsActive     *bool          `json:"is_active"`
}

// Update handles PATCH /v1/admin/content-types/:id, a partial update.
func (h *ContentTypeHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req updateContentTypeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	upd := repository.ContentTypeUpdate{
		DisplayName:  req.DisplayName,
		Description:  req.Description,
		PortionTypes: req.PortionTypes,
		IsActive:     req.IsActive,
	}
	if upd.Empty() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no valid fields to update"})
	}
	for label, n := range req.PortionTypes {
		if strings.TrimSpace(label) == "" || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "portion_types values must be positive"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Catalog.Update(ctx, id, upd); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "content type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update content type failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": true})
}

// Toggle handles POST /v1/admin/content-types/:id/toggle and returns
// the new active state.
func (h *ContentTypeHandler) Toggle(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	active, err := h.Catalog.ToggleActive(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "content type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "toggle content type failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"is_active": active})
}
