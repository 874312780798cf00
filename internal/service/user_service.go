package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wak1e7/todolistapp/internal/cache"
	apperrors "github.com/wak1e7/todolistapp/internal/errors"
	"github.com/wak1e7/todolistapp/internal/model"
	"github.com/wak1e7/todolistapp/internal/repository"
)

// UserService exposes the admin-only user operations. Route policy enforces
// the ADMIN requirement; these methods carry no ownership checks of their own.
type UserService interface {
	Promote(ctx context.Context, username string) error
	Delete(ctx context.Context, id uint) error
}

type userService struct {
	users repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService.
func NewUserService(users repository.UserRepository, cache *cache.Client) UserService {
	return &userService{users: users, cache: cache}
}

// Promote sets the user's role to ADMIN. Tokens issued before the promotion
// pick up the new role immediately because the authenticator re-resolves the
// user record per request.
func (s *userService) Promote(ctx context.Context, username string) error {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	user.Role = model.RoleAdmin
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Delete removes the user and, in the same transaction, every task they own.
func (s *userService) Delete(ctx context.Context, id uint) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	if err := s.users.DeleteWithTasks(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	_ = s.cache.Delete(ctx, taskListKeys(id)...)
	return nil
}
