// Package router wires handlers and middleware onto the Echo routes.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/collective-recitation/internal/config"
	"github.com/iliyamo/collective-recitation/internal/handler"
	"github.com/iliyamo/collective-recitation/internal/middleware"
	"github.com/iliyamo/collective-recitation/internal/repository"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	ContentTypes *handler.ContentTypeHandler
	Recitations  *handler.RecitationHandler
	Portions     *handler.PortionHandler
	Stats        *handler.StatsHandler
}

// Register mounts all routes. The layout is three tiers: public
// (health, auth, catalog listing), token-protected (/v1 recitation
// surface) and admin (/v1/admin catalog management). Rate limiting
// wraps everything under /v1; the response cache covers only the
// public catalog listing.
func Register(e *echo.Echo, h Handlers, users *repository.UserRepo, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	limiter := middleware.RateLimit(rdb, config.LoadRateLimitConfig())

	// Public tier.
	pub := e.Group("/v1", limiter)
	pub.POST("/auth/register", h.Auth.Register)
	pub.POST("/auth/login", h.Auth.Login)
	pub.GET("/content-types", h.ContentTypes.List,
		middleware.CacheJSON(rdb, config.LoadCacheConfig()))

	// Token-protected tier.
	auth := e.Group("/v1", limiter, middleware.JWTAuth(cfg.JWTSecret))
	auth.GET("/auth/me", h.Auth.Me)
	auth.POST("/recitations", h.Recitations.Create)
	auth.GET("/recitations", h.Recitations.List)
	auth.GET("/recitations/:id", h.Recitations.Get)
	auth.POST("/recitations/:id/join", h.Recitations.Join)
	auth.POST("/recitations/:id/assign", h.Portions.Assign)
	auth.PUT("/recitations/:id/portions/:n/complete", h.Portions.Complete)
	auth.PUT("/recitations/:id/portions/:n/progress", h.Portions.Progress)
	auth.GET("/recitations/:id/portions/:n/notes", h.Portions.NoteHistory)
	auth.GET("/recitations/:id/stats", h.Stats.Recitation)
	auth.GET("/users/me/stats", h.Stats.Me)

	// Admin tier.
	admin := e.Group("/v1/admin", limiter, middleware.JWTAuth(cfg.JWTSecret), middleware.RequireAdmin(users))
	admin.POST("/content-types", h.ContentTypes.Create)
	admin.PATCH("/content-types/:id", h.ContentTypes.Update)
	admin.POST("/content-types/:id/toggle", h.ContentTypes.Toggle)
}
