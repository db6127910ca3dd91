package ports

import (
	"context"

	"github.com/tastetrail/tastetrail/internal/core/domain"
)

// LoginForm is what the login page submits.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// SignupForm is what the signup page submits. Role is never sent; the
// backend assigns it.
type SignupForm struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	ProfileImage string `json:"profileImage" validate:"required,url"`
}

// AuthResult is the backend's answer to a successful login or signup.
type AuthResult struct {
	User  *domain.Identity `json:"user"`
	Token string           `json:"token"`
}

// AuthAPI is the slice of the backend the auth flow talks to.
type AuthAPI interface {
	Login(ctx context.Context, form LoginForm) (*AuthResult, error)
	Register(ctx context.Context, form SignupForm) (*AuthResult, error)
	Logout(ctx context.Context) error
}

// SessionWriter is the part of the session store the auth flow mutates.
type SessionWriter interface {
	Login(user *domain.Identity, token string) error
	Logout() domain.Decision
}
