package model

import (
	"time"

	"github.com/google/uuid"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expiresIn"`
	User      UserResponse `json:"user"`
}

// AuthUser is the identity carried by a verified bearer token.
type AuthUser struct {
	ID    uuid.UUID
	Email string
}

// User is the stored identity record. PasswordHash is only populated by
// lookups that explicitly ask for it.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

func (u *User) Response() UserResponse {
	return UserResponse{
		ID:    u.ID.String(),
		Email: u.Email,
	}
}
