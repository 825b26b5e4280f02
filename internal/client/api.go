// Package client talks to the geolocate API and drives the login flow on the
// client side.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/geolocate/backend/internal/config"
	"github.com/geolocate/backend/internal/model"
)

const (
	MsgMissingFields = "Please enter both email and password."
	MsgServerFailure = "Login failed due to a server error."

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

var ErrUnauthorized = errors.New("unauthorized")

// LoginError is a failed login attempt. Message is safe to show to the user.
type LoginError struct {
	Status  int
	Message string
	Err     error
}

func (e *LoginError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *LoginError) Unwrap() error { return e.Err }

// UserMessage returns the text a login form shows for err.
func UserMessage(err error) string {
	var loginErr *LoginError
	if errors.As(err, &loginErr) {
		return loginErr.Message
	}
	return MsgServerFailure
}

type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPIClient(cfg config.ClientConfig) (*APIClient, error) {
	baseURL := strings.TrimRight(cfg.APIBaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("api base url is required")
	}

	timeout := defaultTimeout
	if cfg.Timeout != "" {
		parsed, err := time.ParseDuration(cfg.Timeout)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid client timeout %q", cfg.Timeout)
		}
		timeout = parsed
	}

	return &APIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// POST /api/login
func (c *APIClient) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	payload, err := json.Marshal(model.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, &LoginError{Message: MsgServerFailure, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/login", bytes.NewReader(payload))
	if err != nil {
		return nil, &LoginError{Message: MsgServerFailure, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &LoginError{Message: MsgServerFailure, Err: fmt.Errorf("failed to send login request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &LoginError{Status: resp.StatusCode, Message: MsgServerFailure, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest, http.StatusUnauthorized:
		var errResp model.ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Msg == "" {
			return nil, &LoginError{Status: resp.StatusCode, Message: MsgServerFailure}
		}
		return nil, &LoginError{Status: resp.StatusCode, Message: errResp.Msg}
	default:
		return nil, &LoginError{Status: resp.StatusCode, Message: MsgServerFailure, Err: fmt.Errorf("api returned status %d", resp.StatusCode)}
	}

	var loginResp model.LoginResponse
	if err := json.Unmarshal(body, &loginResp); err != nil {
		return nil, &LoginError{Status: resp.StatusCode, Message: MsgServerFailure, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	if loginResp.Token == "" {
		return nil, &LoginError{Status: resp.StatusCode, Message: MsgServerFailure, Err: errors.New("response carried no token")}
	}
	return &loginResp, nil
}

// GET /api/me
func (c *APIClient) Me(ctx context.Context, token string) (*model.UserResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api returned status: %d", resp.StatusCode)
	}

	var meResp model.MeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&meResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &meResp.User, nil
}
