package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/collective-recitation/internal/config"
	"github.com/iliyamo/collective-recitation/internal/model"
	"github.com/iliyamo/collective-recitation/internal/repository"
	"github.com/iliyamo/collective-recitation/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type registerReq struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Password          string `json:"password"`
	PreferredLanguage string `json:"preferred_language"`
}
type loginReq struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type authResp struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
	UserID  uint64    `json:"user_id"`
}

// Register creates a user and returns a token immediately. A user is
// identified by email, phone, or both; at least one is required.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and password required"})
	}
	if req.Email == "" && strings.TrimSpace(req.Phone) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email or phone required"})
	}

	var email, phone *string
	if req.Email != "" {
		email = &req.Email
	}
	if strings.TrimSpace(req.Phone) != "" {
		normalized, err := utils.NormalizePhone(req.Phone)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid phone number"})
		}
		phone = &normalized
	}
	lang := strings.TrimSpace(req.PreferredLanguage)
	if lang == "" {
		lang = "en"
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Name, email, phone, req.Password, lang, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrIdentityExists {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	token, err := utils.NewToken(h.Cfg.JWTSecret, uid, h.Cfg.TokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusOK, authResp{Token: token.Token, Expires: token.Exp, UserID: uid})
}

// Login verifies credentials against email or phone and returns a
// fresh token. Unknown identity and wrong password produce the same
// 401 so the endpoint does not leak which accounts exist.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Password == "" || (req.Email == "" && strings.TrimSpace(req.Phone) == "") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email or phone and password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.lookup(ctx, req)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(user.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := utils.NewToken(h.Cfg.JWTSecret, user.ID, h.Cfg.TokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusOK, authResp{Token: token.Token, Expires: token.Exp, UserID: user.ID})
}

// lookup resolves the login identity, email first. A phone that fails
// normalization maps to ErrNotFound so the caller still answers with
// the uniform 401.
func (h *AuthHandler) lookup(ctx context.Context, req loginReq) (model.User, error) {
	if req.Email != "" {
		return h.Users.GetByEmail(ctx, req.Email)
	}
	normalized, err := utils.NormalizePhone(req.Phone)
	if err != nil {
		return model.User{}, repository.ErrNotFound
	}
	return h.Users.GetByPhone(ctx, normalized)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":                 u.ID,
		"name":               u.Name,
		"email":              u.Email,
		"phone":              u.Phone,
		"preferred_language": u.PreferredLanguage,
		"is_admin":           u.IsAdmin,
		"created_at":         u.CreatedAt,
	})
}
