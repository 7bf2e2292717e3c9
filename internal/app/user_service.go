package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"quizcraft-service/internal/domain"
	"quizcraft-service/internal/logger"
)

// UserService covers the admin-facing account operations.
type UserService struct {
	users UserRepository
	log   *logger.Logger
}

func NewUserService(users UserRepository, log *logger.Logger) *UserService {
	return &UserService{users: users, log: log}
}

// List returns all accounts.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// UpdateUserInput carries optional field rewrites; nil means keep.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	IsActive  *bool
}

// Update applies the provided fields to an account.
func (s *UserService) Update(ctx context.Context, userID uuid.UUID, in UpdateUserInput) (*domain.User, error) {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Email != nil {
		user.Email = NormalizeEmail(*in.Email)
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.log.Info("user updated", "userID", userID)
	return user, nil
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	s.log.Info("user deleted", "userID", userID)
	return user, nil
}
