package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geolocate/backend/internal/config"
	"github.com/geolocate/backend/internal/db"
	"github.com/geolocate/backend/internal/handler"
	"github.com/geolocate/backend/internal/policy"
	"github.com/geolocate/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "test@example.com"
	testPassword = "password123"
)

// newBackend runs the real API router against an in-memory repository.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := db.NewMemory()
	_, err := service.Provision(context.Background(), repo, testEmail, testPassword)
	require.NoError(t, err)

	svc, err := service.NewAuthService(repo, config.AuthConfig{
		JWTSecret:   "client-test-secret",
		JWTTTL:      "1h",
		RepoTimeout: "5s",
	}, logger)
	require.NoError(t, err)

	origins, err := policy.NewOriginPolicy([]string{"http://localhost:3000"}, nil)
	require.NoError(t, err)

	srv := httptest.NewServer(handler.NewRouter(handler.RouterDeps{
		Auth:      svc,
		Origins:   origins,
		RateLimit: config.RateLimitConfig{RPS: 100, Burst: 100},
		Logger:    logger,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL, timeout string) *APIClient {
	t.Helper()
	c, err := NewAPIClient(config.ClientConfig{APIBaseURL: baseURL, Timeout: timeout})
	require.NoError(t, err)
	return c
}

func TestNewAPIClientValidation(t *testing.T) {
	_, err := NewAPIClient(config.ClientConfig{})
	assert.Error(t, err)

	_, err = NewAPIClient(config.ClientConfig{APIBaseURL: "http://x", Timeout: "soon"})
	assert.Error(t, err)

	c, err := NewAPIClient(config.ClientConfig{APIBaseURL: "http://x/"})
	require.NoError(t, err)
	assert.Equal(t, "http://x", c.baseURL)
	assert.Equal(t, defaultTimeout, c.httpClient.Timeout)
}

func TestLoginAgainstBackend(t *testing.T) {
	srv := newBackend(t)
	c := newTestClient(t, srv.URL, "5s")
	ctx := context.Background()

	resp, err := c.Login(ctx, testEmail, testPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, testEmail, resp.User.Email)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	me, err := c.Me(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, me.ID)

	_, err = c.Me(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLoginCarriesServerMessage(t *testing.T) {
	srv := newBackend(t)
	c := newTestClient(t, srv.URL, "5s")

	tests := []struct {
		name     string
		email    string
		password string
		status   int
		message  string
	}{
		{"wrong password", testEmail, "nope", http.StatusUnauthorized, "Invalid Credentials"},
		{"unknown email", "ghost@example.com", testPassword, http.StatusUnauthorized, "Invalid Credentials"},
		{"missing password", testEmail, "", http.StatusBadRequest, MsgMissingFields},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Login(context.Background(), tc.email, tc.password)

			var loginErr *LoginError
			require.True(t, errors.As(err, &loginErr))
			assert.Equal(t, tc.status, loginErr.Status)
			assert.Equal(t, tc.message, loginErr.Message)
			assert.Equal(t, tc.message, UserMessage(err))
		})
	}
}

func TestLoginServerFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"internal error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"msg":"Server Error during login process"}`))
		}},
		{"forbidden origin", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"token":`))
		}},
		{"missing token", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"expiresIn":3600}`))
		}},
		{"unauthorized without message", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			_, err := newTestClient(t, srv.URL, "5s").Login(context.Background(), testEmail, testPassword)

			require.Error(t, err)
			assert.Equal(t, MsgServerFailure, UserMessage(err))
		})
	}
}

func TestLoginUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t, url, "1s").Login(context.Background(), testEmail, testPassword)

	require.Error(t, err)
	assert.Equal(t, MsgServerFailure, UserMessage(err))
}

func TestLoginTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := newTestClient(t, srv.URL, "50ms").Login(context.Background(), testEmail, testPassword)

	require.Error(t, err)
	assert.Equal(t, MsgServerFailure, UserMessage(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestUserMessageFallback(t *testing.T) {
	assert.Equal(t, MsgServerFailure, UserMessage(errors.New("boom")))
}
