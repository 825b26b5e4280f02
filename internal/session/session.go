// Package session tracks whether the client holds a usable bearer token.
//
// A Session starts Initializing, resolves exactly once to Authenticated or
// Unauthenticated by reading its Store, and afterwards only changes through
// Login and Logout. Authentication is decided by token presence; the token is
// never decoded or checked for expiry on the client.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type State int

const (
	Initializing State = iota
	Unauthenticated
	Authenticated
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrEmptyToken  = errors.New("session: empty token")
	ErrNotRestored = errors.New("session: restore has not completed")
)

// Store persists the single token string between process runs.
// Load returns "" and no error when nothing is stored.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Snapshot is a consistent view of the session at one point in time.
type Snapshot struct {
	State State
	Token string
}

func (s Snapshot) IsAuthenticated() bool { return s.State == Authenticated }

func (s Snapshot) Loading() bool { return s.State == Initializing }

type Session struct {
	mu       sync.Mutex
	store    Store
	state    State
	token    string
	once     sync.Once
	restored chan struct{}
}

func New(store Store) *Session {
	return &Session{
		store:    store,
		state:    Initializing,
		restored: make(chan struct{}),
	}
}

// Restore reads the persisted token and leaves Initializing. Only the first
// call does any work. A store error resolves the session to Unauthenticated
// and is returned.
func (s *Session) Restore(ctx context.Context) error {
	var restoreErr error
	s.once.Do(func() {
		token, err := s.store.Load(ctx)

		s.mu.Lock()
		if err != nil || token == "" {
			s.state = Unauthenticated
			s.token = ""
		} else {
			s.state = Authenticated
			s.token = token
		}
		s.mu.Unlock()
		close(s.restored)

		if err != nil {
			restoreErr = fmt.Errorf("session: restore: %w", err)
		}
	})
	return restoreErr
}

// Ready is closed once Restore has resolved the initial state.
func (s *Session) Ready() <-chan struct{} {
	return s.restored
}

// Wait blocks until the session has left Initializing or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.restored:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Login persists token and moves the session to Authenticated. The state
// does not change if persisting fails.
func (s *Session) Login(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Initializing {
		return ErrNotRestored
	}
	if err := s.store.Save(ctx, token); err != nil {
		return fmt.Errorf("session: save token: %w", err)
	}
	s.token = token
	s.state = Authenticated
	return nil
}

// Logout erases the persisted token and moves the session to
// Unauthenticated. The in-memory state is cleared even when the store
// fails; the store error is returned.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Initializing {
		return ErrNotRestored
	}
	err := s.store.Clear(ctx)
	s.token = ""
	s.state = Unauthenticated
	if err != nil {
		return fmt.Errorf("session: clear token: %w", err)
	}
	return nil
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{State: s.state, Token: s.token}
}

func (s *Session) State() State { return s.Snapshot().State }

func (s *Session) Token() string { return s.Snapshot().Token }

func (s *Session) IsAuthenticated() bool { return s.Snapshot().IsAuthenticated() }

func (s *Session) Loading() bool { return s.Snapshot().Loading() }
