package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/collective-recitation/internal/config"
	"github.com/iliyamo/collective-recitation/internal/database"
	"github.com/iliyamo/collective-recitation/internal/handler"
	"github.com/iliyamo/collective-recitation/internal/repository"
	"github.com/iliyamo/collective-recitation/internal/router"
)

func main() {
	// .env is a convenience for local runs; in deployment the
	// variables come from the environment and the file is absent.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database open failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := database.PromoteAdmin(ctx, db, cfg.AdminEmail); err != nil {
		log.Fatalf("admin promotion failed: %v", err)
	}

	// Redis is optional: without it the cache and the rate limiter
	// become pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	catalog := repository.NewContentTypeRepo(db)
	recitations := repository.NewRecitationRepo(db)
	participants := repository.NewParticipantRepo(db)
	portions := repository.NewPortionRepo(db)
	notes := repository.NewProgressNoteRepo(db)
	stats := repository.NewStatsRepo(db)

	h := router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users),
		ContentTypes: handler.NewContentTypeHandler(catalog),
		Recitations:  handler.NewRecitationHandler(recitations, participants, catalog),
		Portions:     handler.NewPortionHandler(portions, participants, recitations, notes, cfg.RabbitURL),
		Stats:        handler.NewStatsHandler(stats),
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, h, users, cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
