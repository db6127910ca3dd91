package service

import (
	"context"

	"github.com/tastetrail/tastetrail/internal/core/domain"
	"github.com/tastetrail/tastetrail/internal/core/ports"
)

// UserService implements the account management used by admins.
type UserService struct {
	repo ports.UserRepository
}

func NewUserService(repo ports.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns all users, or only admins when role is RoleAdmin.
func (s *UserService) List(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	return s.repo.List(ctx, role)
}

// Promote grants the admin role. Promoting an admin is a no-op.
func (s *UserService) Promote(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role.IsAdmin() {
		return user, nil
	}
	return s.repo.SetRole(ctx, id, domain.RoleAdmin)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
