package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/bearer-auth/internal/auth"
	"github.com/spec-kit/bearer-auth/internal/domain"
	"github.com/spec-kit/bearer-auth/internal/events"
	"github.com/spec-kit/bearer-auth/internal/repository"
)

// ErrUsernameTaken is returned by Signup for duplicate usernames.
var ErrUsernameTaken = repository.ErrUsernameTaken

// AuthService coordinates signup, login and logout flows.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenService
	dispatcher events.Dispatcher
	bcryptCost int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenService
	Dispatcher events.Dispatcher
	BcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		bcryptCost: deps.BcryptCost,
	}
}

// Signup creates a new account. An empty role defaults to USER.
func (s *AuthService) Signup(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.New("username and password required")
	}
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{Username: username, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks credentials and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.Username, user.Role)
	if err != nil {
		return nil, "", err
	}
	s.publish(ctx, events.EventTokenIssued, user.Username, events.TokenIssuedPayload{Role: string(user.Role)})
	return user, token, nil
}

// Logout revokes the presented raw token.
func (s *AuthService) Logout(ctx context.Context, subject, token string) error {
	if err := s.tokens.Revoke(ctx, token); err != nil {
		return err
	}
	s.publish(ctx, events.EventTokenRevoked, subject, events.TokenRevokedPayload{Reason: "logout"})
	return nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, subject string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}
