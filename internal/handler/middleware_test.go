package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCORSAdmittedOrigin(t *testing.T) {
	s := newTestServer(t, defaultLimits())

	w := s.do(http.MethodGet, "/ping", "", map[string]string{"Origin": allowedOrigin})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, allowedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))
}

func TestCORSTrustedPatternOrigin(t *testing.T) {
	s := newTestServer(t, defaultLimits())
	origin := "https://frontend-zeta-gilt-20.vercel.app"

	w := s.do(http.MethodGet, "/ping", "", map[string]string{"Origin": origin})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, origin, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSMissingOriginAdmittedWithoutHeaders(t *testing.T) {
	s := newTestServer(t, defaultLimits())

	w := s.login(testEmail, testPassword)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSRejectedOriginNeverReachesHandler(t *testing.T) {
	s := newTestServer(t, defaultLimits())
	origin := "https://evil.example.org"

	w := s.do(http.MethodPost, "/api/login",
		`{"email":"test@example.com","password":"password123"}`,
		map[string]string{"Origin": origin},
	)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"msg":"Not allowed by CORS policy."}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), allowedOrigin)
	assert.NotContains(t, w.Body.String(), "token")

	assert.Contains(t, s.logs.String(), "CORS blocked request from disallowed origin")
	assert.Contains(t, s.logs.String(), origin)
	assert.NotContains(t, s.logs.String(), "login succeeded")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, defaultLimits())

	w := s.do(http.MethodOptions, "/api/login", "", map[string]string{
		"Origin":                        allowedOrigin,
		"Access-Control-Request-Method": http.MethodPost,
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, allowedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)

	w = s.do(http.MethodOptions, "/api/login", "", map[string]string{"Origin": "https://evil.example.org"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestIPRateLimiterIsPerClient(t *testing.T) {
	rl := newIPRateLimiter(0.001, 1)

	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"))
}

func TestIPRateLimiterEvictsIdleVisitors(t *testing.T) {
	rl := newIPRateLimiter(0.001, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("10.0.0.1"))
	assert.Len(t, rl.visitors, 1)

	now = now.Add(rl.idleTTL + time.Minute)
	assert.True(t, rl.allow("10.0.0.2"))
	assert.Len(t, rl.visitors, 1)
	assert.Contains(t, rl.visitors, "10.0.0.2")
}
