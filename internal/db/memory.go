package db

import (
	"context"
	"sync"
	"time"

	"github.com/geolocate/backend/internal/model"
	"github.com/google/uuid"
)

// Memory is an in-process credential store with the same contract as Postgres.
type Memory struct {
	mu      sync.RWMutex
	byEmail map[string]*model.User
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		byEmail: make(map[string]*model.User),
		now:     time.Now,
	}
}

func (m *Memory) CreateUser(ctx context.Context, email, passwordHash string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := NormalizeEmail(email)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[key]; exists {
		return nil, ErrDuplicateEmail
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        key,
		PasswordHash: passwordHash,
		CreatedAt:    m.now(),
	}
	m.byEmail[key] = user

	out := *user
	out.PasswordHash = ""
	return &out, nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *user
	return &out, nil
}

func (m *Memory) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.byEmail {
		if user.ID == id {
			out := *user
			out.PasswordHash = ""
			return &out, nil
		}
	}
	return nil, ErrUserNotFound
}
