package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/cascadiaherp/shellwatch/internal/validate"
)

// Password constraints.
const (
	MinPasswordLength = 8
	// bcrypt silently truncates beyond 72 bytes, so reject longer inputs.
	MaxPasswordLength = 72
)

// Registration and sign-in errors.
var (
	ErrInvalidEmail       = errors.New("email is invalid")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong    = fmt.Errorf("password must be at most %d characters", MaxPasswordLength)
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Session is the token pair issued after a successful sign-up or sign-in.
type Session struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Service implements sign-up, sign-in, and token refresh for observers.
type Service struct {
	users  UserRepository
	tokens *JWTService
	logger *slog.Logger
}

// ServiceConfig holds dependencies for creating a Service.
type ServiceConfig struct {
	Users  UserRepository
	Tokens *JWTService
	Logger *slog.Logger
}

// NewService creates an auth service, validating required dependencies.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Users == nil {
		return nil, errors.New("user repository is required")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("jwt service is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: cfg.Users, tokens: cfg.Tokens, logger: logger}, nil
}

// SignUp registers a new observer and issues a session.
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (*Session, error) {
	normalized, err := validate.Email(email)
	if err != nil {
		return nil, ErrInvalidEmail
	}
	name, err := validate.DisplayName(displayName)
	if err != nil {
		return nil, fmt.Errorf("display name is invalid: %w", err)
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Email:        normalized,
		DisplayName:  name,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("observer registered", slog.String("user_id", user.ID))
	return s.issueSession(user)
}

// SignIn verifies credentials and issues a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		// Burn a comparison so missing accounts take as long as bad passwords.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000000000000000000000000000000000"), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueSession(user)
}

// Refresh exchanges a valid refresh token for a new session.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.tokens.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	return s.issueSession(user)
}

func (s *Service) issueSession(user *User) (*Session, error) {
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &Session{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}
