package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geolocate/backend/internal/config"
	"github.com/geolocate/backend/internal/db"
	"github.com/geolocate/backend/internal/handler"
	"github.com/geolocate/backend/internal/logging"
	"github.com/geolocate/backend/internal/policy"
	"github.com/geolocate/backend/internal/service"
	"github.com/gin-gonic/gin"
)

// @title geolocate API
// @version 1.0
// @description Login and session API for the IP geolocation client.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Error("postgres unavailable", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := db.NewPostgres(pool)
	if err := repo.EnsureAuthSchema(ctx); err != nil {
		logger.Error("failed to ensure auth schema", "error", err)
		os.Exit(1)
	}

	authService, err := service.NewAuthService(repo, cfg.Auth, logger)
	if err != nil {
		logger.Error("auth service misconfigured", "error", err)
		os.Exit(1)
	}

	origins, err := policy.NewOriginPolicy(cfg.CORS.AllowedOrigins, cfg.CORS.TrustedPatterns)
	if err != nil {
		logger.Error("origin policy misconfigured", "error", err)
		os.Exit(1)
	}

	router := handler.NewRouter(handler.RouterDeps{
		Auth:      authService,
		Origins:   origins,
		RateLimit: cfg.RateLimit,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced shutdown", "error", err)
	}
	logger.Info("server stopped")
}
