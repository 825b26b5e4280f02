package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/geolocate/backend/internal/config"
	"github.com/geolocate/backend/internal/db"
	"github.com/geolocate/backend/internal/handler"
	"github.com/geolocate/backend/internal/policy"
	"github.com/geolocate/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := db.NewMemory()
	_, err := service.Provision(context.Background(), repo, "test@example.com", "password123")
	require.NoError(t, err)

	svc, err := service.NewAuthService(repo, config.AuthConfig{
		JWTSecret:   "cli-test-secret",
		JWTTTL:      "1h",
		RepoTimeout: "5s",
	}, logger)
	require.NoError(t, err)

	origins, err := policy.NewOriginPolicy(nil, nil)
	require.NoError(t, err)

	srv := httptest.NewServer(handler.NewRouter(handler.RouterDeps{
		Auth:      svc,
		Origins:   origins,
		RateLimit: config.RateLimitConfig{RPS: 100, Burst: 100},
		Logger:    logger,
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func runCLI(t *testing.T, cfg config.ClientConfig, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), cfg, args, &out, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return out.String(), err
}

func TestCLISessionLifecycle(t *testing.T) {
	for _, store := range []string{"sqlite", "file"} {
		t.Run(store, func(t *testing.T) {
			cfg := config.ClientConfig{
				APIBaseURL:   newBackend(t),
				Timeout:      "5s",
				SessionStore: store,
				SessionPath:  filepath.Join(t.TempDir(), "session"),
			}

			out, err := runCLI(t, cfg, "status")
			require.NoError(t, err)
			assert.Equal(t, "unauthenticated\n", out)

			out, err = runCLI(t, cfg, "open", "/home")
			require.NoError(t, err)
			assert.Equal(t, "login view at /login\n", out)

			_, err = runCLI(t, cfg, "login", "-email", "test@example.com", "-password", "wrong")
			assert.EqualError(t, err, "Invalid Credentials")

			out, err = runCLI(t, cfg, "login", "-email", "test@example.com", "-password", "password123")
			require.NoError(t, err)
			assert.Equal(t, "signed in, at /home\n", out)

			out, err = runCLI(t, cfg, "login", "-email", "test@example.com", "-password", "password123")
			require.NoError(t, err)
			assert.Equal(t, "already signed in, at /home\n", out)

			out, err = runCLI(t, cfg, "status", "-verify")
			require.NoError(t, err)
			assert.Equal(t, "authenticated\ntoken accepted for test@example.com\n", out)

			out, err = runCLI(t, cfg, "open", "/login")
			require.NoError(t, err)
			assert.Equal(t, "home view at /home\n", out)

			out, err = runCLI(t, cfg, "open", "/missing")
			require.NoError(t, err)
			assert.Equal(t, "404: /missing\n", out)

			_, err = runCLI(t, cfg, "logout")
			require.NoError(t, err)

			out, err = runCLI(t, cfg, "status")
			require.NoError(t, err)
			assert.Equal(t, "unauthenticated\n", out)
		})
	}
}

func TestCLIMissingFields(t *testing.T) {
	cfg := config.ClientConfig{
		APIBaseURL:   "http://127.0.0.1:1",
		SessionStore: "file",
		SessionPath:  filepath.Join(t.TempDir(), "session.json"),
	}

	_, err := runCLI(t, cfg, "login", "-email", "test@example.com")
	assert.EqualError(t, err, "Please enter both email and password.")
}

func TestCLIUsage(t *testing.T) {
	cfg := config.ClientConfig{
		APIBaseURL:   "http://127.0.0.1:1",
		SessionStore: "file",
		SessionPath:  filepath.Join(t.TempDir(), "session.json"),
	}

	for _, args := range [][]string{{}, {"dance"}, {"open"}, {"login", "-bogus"}} {
		_, err := runCLI(t, cfg, args...)
		assert.ErrorIs(t, err, errUsage)
	}

	_, err := runCLI(t, config.ClientConfig{APIBaseURL: "http://x", SessionStore: "redis"}, "status")
	assert.Error(t, err)
}
