package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tastetrail/tastetrail/internal/core/domain"
	"github.com/tastetrail/tastetrail/internal/core/ports"
)

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, form ports.LoginForm) (*ports.AuthResult, error) {
	var out ports.AuthResult
	if err := c.send(ctx, http.MethodPost, "/login", form, &out, false); err != nil {
		return nil, err
	}
	if out.User == nil || out.Token == "" {
		return nil, &APIError{Status: http.StatusOK, Message: "login response missing user or token", Err: domain.ErrUnexpected}
	}
	return &out, nil
}

// Register creates an account and returns its first session.
func (c *Client) Register(ctx context.Context, form ports.SignupForm) (*ports.AuthResult, error) {
	var out ports.AuthResult
	if err := c.send(ctx, http.MethodPost, "/register", form, &out, false); err != nil {
		return nil, err
	}
	if out.User == nil || out.Token == "" {
		return nil, &APIError{Status: http.StatusCreated, Message: "register response missing user or token", Err: domain.ErrUnexpected}
	}
	return &out, nil
}

// Logout asks the backend to revoke the current token.
func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, "/logout", nil, nil)
}

// Me fetches the identity behind the current token.
func (c *Client) Me(ctx context.Context) (*domain.Identity, error) {
	var out domain.Identity
	if err := c.Do(ctx, http.MethodGet, "/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers returns every user, or only admins when adminsOnly is set.
func (c *Client) ListUsers(ctx context.Context, adminsOnly bool) ([]domain.Identity, error) {
	path := "/users"
	if adminsOnly {
		path += "?" + url.Values{"role": {string(domain.RoleAdmin)}}.Encode()
	}
	var out []domain.Identity
	if err := c.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PromoteUser grants the admin role to id.
func (c *Client) PromoteUser(ctx context.Context, id string) (*domain.Identity, error) {
	var out domain.Identity
	if err := c.Do(ctx, http.MethodPatch, "/users/admin/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes the account id.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil)
}

var _ ports.AuthAPI = (*Client)(nil)
