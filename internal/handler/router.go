package handler

import (
	"log/slog"

	"github.com/geolocate/backend/internal/config"
	"github.com/geolocate/backend/internal/logging"
	"github.com/geolocate/backend/internal/policy"
	"github.com/geolocate/backend/internal/service"
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Auth      *service.AuthService
	Origins   *policy.OriginPolicy
	RateLimit config.RateLimitConfig
	Logger    *slog.Logger
}

// NewRouter wires the middleware chain and routes. The origin gate runs
// before every route, including unknown ones and preflights.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.RequestLogger(deps.Logger))
	r.Use(CORSMiddleware(deps.Origins, deps.Logger))

	r.GET("/", Root)
	r.GET("/ping", Ping)
	r.GET("/openapi.json", OpenAPIDoc)

	authHandler := NewAuthHandler(deps.Auth, deps.Logger)

	api := r.Group("/api")
	api.POST("/login", RateLimitMiddleware(deps.RateLimit.RPS, deps.RateLimit.Burst), authHandler.Login)
	api.GET("/me", AuthMiddleware(deps.Auth), authHandler.Me)

	return r
}
