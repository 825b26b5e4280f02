package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/geolocate/backend/internal/guard"
	"github.com/geolocate/backend/internal/model"
)

var ErrSubmitInFlight = errors.New("login already in progress")

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*model.LoginResponse, error)
}

// TokenSink receives the token after a successful login.
type TokenSink interface {
	Login(ctx context.Context, token string) error
}

type Router interface {
	Replace(route string) guard.Decision
}

// LoginForm submits credentials, stores the issued token and moves the user
// to the home view. Only one submission runs at a time.
type LoginForm struct {
	api     Authenticator
	session TokenSink
	router  Router

	mu         sync.Mutex
	submitting bool
	message    string
}

func NewLoginForm(api Authenticator, session TokenSink, router Router) *LoginForm {
	return &LoginForm{api: api, session: session, router: router}
}

func (f *LoginForm) Submit(ctx context.Context, email, password string) (guard.Decision, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		err := &LoginError{Message: MsgMissingFields}
		f.setMessage(err.Message)
		return guard.Decision{}, err
	}

	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return guard.Decision{}, ErrSubmitInFlight
	}
	f.submitting = true
	f.message = ""
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	resp, err := f.api.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		f.setMessage(UserMessage(err))
		return guard.Decision{}, err
	}

	if err := f.session.Login(ctx, resp.Token); err != nil {
		f.setMessage(MsgServerFailure)
		return guard.Decision{}, fmt.Errorf("failed to store session: %w", err)
	}

	return f.router.Replace(guard.HomePath), nil
}

// Submitting reports whether a submission is pending; inputs stay disabled
// while it is true.
func (f *LoginForm) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Message is the error text from the last failed submission.
func (f *LoginForm) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

func (f *LoginForm) setMessage(msg string) {
	f.mu.Lock()
	f.message = msg
	f.mu.Unlock()
}
