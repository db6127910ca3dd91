package ports

import (
	"context"
	"time"

	"github.com/tastetrail/tastetrail/internal/core/domain"
)

// RegisterInput carries the signup payload.
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	ProfileImage string
}

// Claims is the verified content of a bearer token.
type Claims struct {
	UserID    string
	Email     string
	Role      domain.Role
	TokenID   string
	ExpiresAt time.Time
}

// AuthService issues and verifies session tokens.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Logout(ctx context.Context, claims Claims) error
	Verify(ctx context.Context, token string) (Claims, error)
}

// UserService holds the admin-only account operations.
type UserService interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, role domain.Role) ([]*domain.User, error)
	Promote(ctx context.Context, id string) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
