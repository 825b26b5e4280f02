package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/geolocate/backend/internal/config"
	"github.com/geolocate/backend/internal/db"
	"github.com/geolocate/backend/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	maxEmailLength    = 254
	maxPasswordLength = 1024
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrMisconfigured      = errors.New("auth config invalid")
)

// UserRepository is the credential store the service reads identities from.
type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	CreateUser(ctx context.Context, email, passwordHash string) (*model.User, error)
}

type AuthService struct {
	repo        UserRepository
	jwtSecret   []byte
	tokenTTL    time.Duration
	repoTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

type authClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func NewAuthService(repo UserRepository, cfg config.AuthConfig, logger *slog.Logger) (*AuthService, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}

	tokenTTL, err := time.ParseDuration(cfg.JWTTTL)
	if err != nil || tokenTTL <= 0 {
		return nil, fmt.Errorf("%w: invalid JWT_TTL", ErrMisconfigured)
	}

	repoTimeout, err := time.ParseDuration(cfg.RepoTimeout)
	if err != nil || repoTimeout <= 0 {
		return nil, fmt.Errorf("%w: invalid AUTH_TIMEOUT", ErrMisconfigured)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &AuthService{
		repo:        repo,
		jwtSecret:   []byte(cfg.JWTSecret),
		tokenTTL:    tokenTTL,
		repoTimeout: repoTimeout,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// Login verifies the credentials and issues a bearer token. Unknown email and
// wrong password both return ErrInvalidCredentials; the reason is only logged.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	email, err := validateCredentials(email, password)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.repoTimeout)
	defer cancel()

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			burnPasswordCheck(password)
			s.logger.WarnContext(ctx, "login failed", "email", email, "reason", "email not found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("credential lookup: %w", err)
	}

	if err := CheckPassword(user.PasswordHash, password); err != nil {
		s.logger.WarnContext(ctx, "login failed", "email", email, "reason", "password mismatch")
		return nil, ErrInvalidCredentials
	}

	token, expiresIn, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "login succeeded", "user_id", user.ID.String())
	return &model.LoginResponse{
		Token:     token,
		ExpiresIn: expiresIn,
		User:      user.Response(),
	}, nil
}

// ParseAccessToken checks signature and expiry and returns the token's identity.
func (s *AuthService) ParseAccessToken(tokenStr string) (*model.AuthUser, error) {
	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &model.AuthUser{
		ID:    userID,
		Email: claims.Email,
	}, nil
}

// Me returns the stored identity behind a verified token.
func (s *AuthService) Me(ctx context.Context, user *model.AuthUser) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.repoTimeout)
	defer cancel()

	stored, err := s.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return stored, nil
}

// EnsureUser provisions an identity if none exists for the email. It reports
// whether a record was created.
func (s *AuthService) EnsureUser(ctx context.Context, email, password string) (bool, error) {
	return Provision(ctx, s.repo, email, password)
}

// Provision is the seed routine: it hashes password and stores the identity
// unless one already exists for the normalized email.
func Provision(ctx context.Context, repo UserRepository, email, password string) (bool, error) {
	email, err := validateCredentials(email, password)
	if err != nil {
		return false, err
	}

	_, err = repo.GetUserByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, db.ErrUserNotFound) {
		return false, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}

	if _, err := repo.CreateUser(ctx, email, hash); err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *AuthService) generateAccessToken(user *model.User) (string, int64, error) {
	if len(s.jwtSecret) == 0 {
		return "", 0, fmt.Errorf("%w: signing key missing", ErrMisconfigured)
	}

	now := s.now()
	claims := authClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", 0, fmt.Errorf("%w: sign token: %v", ErrMisconfigured, err)
	}

	return signed, int64(s.tokenTTL.Seconds()), nil
}

// validateCredentials rejects obviously malformed input and returns the
// normalized email.
func validateCredentials(email, password string) (string, error) {
	email = db.NormalizeEmail(email)

	if email == "" || password == "" {
		return "", ErrInvalidInput
	}
	if len(email) > maxEmailLength || len(password) > maxPasswordLength {
		return "", ErrInvalidInput
	}

	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" || strings.ContainsAny(email, " \t\r\n") {
		return "", ErrInvalidInput
	}
	return email, nil
}
