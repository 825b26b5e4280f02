// Command seed provisions the test identity used by the login page.
package main

import (
	"context"
	"os"
	"time"

	"github.com/geolocate/backend/internal/config"
	"github.com/geolocate/backend/internal/db"
	"github.com/geolocate/backend/internal/logging"
	"github.com/geolocate/backend/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Error("database seeding failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := db.NewPostgres(pool)
	if err := repo.EnsureAuthSchema(ctx); err != nil {
		logger.Error("database seeding failed", "error", err)
		os.Exit(1)
	}

	created, err := service.Provision(ctx, repo, cfg.Seed.Email, cfg.Seed.Password)
	if err != nil {
		logger.Error("database seeding failed", "error", err)
		os.Exit(1)
	}

	if created {
		logger.Info("test user created", "email", cfg.Seed.Email)
	} else {
		logger.Info("test user already exists, skipping insertion", "email", cfg.Seed.Email)
	}
}
