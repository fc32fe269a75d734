package service

import (
	"context"
	"errors"

	"github.com/spec-kit/bearer-auth/internal/auth"
	"github.com/spec-kit/bearer-auth/internal/domain"
	"github.com/spec-kit/bearer-auth/internal/repository"
)

// UserDetailsService resolves token subjects to user records.
type UserDetailsService struct {
	users repository.UserRepository
}

// NewUserDetailsService builds the service.
func NewUserDetailsService(users repository.UserRepository) *UserDetailsService {
	return &UserDetailsService{users: users}
}

// ByUsername implements auth.IdentityLookup.
func (s *UserDetailsService) ByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, auth.ErrSubjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
