package ports

import (
	"context"
	"time"

	"github.com/tastetrail/tastetrail/internal/core/domain"
)

// UserRepository defines persistence for user accounts.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// List returns every user, or only those holding role when role is non-empty.
	List(ctx context.Context, role domain.Role) ([]*domain.User, error)
	SetRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

// TokenRevoker records tokens invalidated by logout until they would have
// expired on their own.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
