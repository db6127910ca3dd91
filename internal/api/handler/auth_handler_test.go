package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tastetrail/tastetrail/internal/api/middleware"
	"github.com/tastetrail/tastetrail/internal/core/domain"
	"github.com/tastetrail/tastetrail/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (string, *domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, *domain.User, error)
	logoutFn   func(ctx context.Context, claims ports.Claims) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (string, *domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(ctx context.Context, claims ports.Claims) error {
	return s.logoutFn(ctx, claims)
}

func (s *stubAuthService) Verify(context.Context, string) (ports.Claims, error) {
	return ports.Claims{}, domain.ErrTokenInvalid
}

type stubUserService struct {
	users map[string]*domain.User
}

func (s *stubUserService) Get(_ context.Context, id string) (*domain.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUserService) List(_ context.Context, role domain.Role) ([]*domain.User, error) {
	var out []*domain.User
	for _, id := range []string{"u1", "u2", "u3"} {
		if u, ok := s.users[id]; ok && (role == "" || u.Role == role) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *stubUserService) Promote(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Role = domain.RoleAdmin
	return u, nil
}

func (s *stubUserService) Delete(_ context.Context, id string) error {
	if _, ok := s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (string, *domain.User, error) {
			if in.Name != "Alice" || in.ProfileImage != "https://img.example/a.png" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return "tok", &domain.User{ID: "u1", Name: in.Name, Email: in.Email, Role: domain.RoleUser, PasswordHash: "hash"}, nil
		},
	}
	handler := NewAuthHandler(stub, &stubUserService{})

	req := jsonRequest(http.MethodPost, "/register", `{"name":"Alice","email":"a@example.com","password":"secret1","profileImage":"https://img.example/a.png","role":"admin"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "tok" {
		t.Fatalf("expected token in response, got %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user object, got %v", resp["user"])
	}
	if user["role"] != "user" || user["id"] != "u1" {
		t.Fatalf("unexpected user: %v", user)
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Fatalf("password hash must not be serialised")
	}
}

func TestAuthHandler_Register_ValidationError(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{}, &stubUserService{})

	req := jsonRequest(http.MethodPost, "/register", `{"name":"","email":"bad","password":"1","profileImage":"x"}`)
	c := e.NewContext(req, httptest.NewRecorder())

	err := handler.Register(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, f := range []string{"name", "email", "password", "profileImage"} {
		if ve.Fields[f] == "" {
			t.Fatalf("expected error for %s, got %v", f, ve.Fields)
		}
	}
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (string, *domain.User, error) {
			return "", nil, domain.ErrUserExists
		},
	}
	handler := NewAuthHandler(stub, &stubUserService{})

	req := jsonRequest(http.MethodPost, "/register", `{"name":"A","email":"a@example.com","password":"secret1","profileImage":"https://img.example/a.png"}`)
	if err := handler.Register(e.NewContext(req, httptest.NewRecorder())); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			if email != "bob@example.com" || password != "secret1" {
				t.Fatalf("unexpected credentials %s/%s", email, password)
			}
			return "token123", &domain.User{ID: "u2", Email: email, Role: domain.RoleAdmin}, nil
		},
	}
	handler := NewAuthHandler(stub, &stubUserService{})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/login", `{"email":"bob@example.com","password":"secret1"}`), rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "token123" || resp.User == nil || resp.User.Role != domain.RoleAdmin {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub, &stubUserService{})

	c := e.NewContext(jsonRequest(http.MethodPost, "/login", `{"email":"bob@example.com","password":"nope"}`), httptest.NewRecorder())
	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{}, &stubUserService{})

	c := e.NewContext(jsonRequest(http.MethodPost, "/login", `{"email":`), httptest.NewRecorder())
	var he *echo.HTTPError
	if err := handler.Login(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newEcho()
	var revoked ports.Claims
	stub := &stubAuthService{
		logoutFn: func(_ context.Context, claims ports.Claims) error {
			revoked = claims
			return nil
		},
	}
	handler := NewAuthHandler(stub, &stubUserService{})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/logout", nil), rec)
	c.Set(middleware.ClaimsKey, ports.Claims{UserID: "u1", TokenID: "j1"})

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if revoked.TokenID != "j1" {
		t.Fatalf("expected token j1 to be revoked, got %+v", revoked)
	}
}

func TestAuthHandler_MissingClaims(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{}, &stubUserService{})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/me", nil), httptest.NewRecorder())
	var he *echo.HTTPError
	if err := handler.Me(c); !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	e := newEcho()
	users := &stubUserService{users: map[string]*domain.User{
		"u1": {ID: "u1", Name: "Ana", Email: "ana@example.com", Role: domain.RoleUser},
	}}
	handler := NewAuthHandler(&stubAuthService{}, users)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/me", nil), rec)
	c.Set(middleware.ClaimsKey, ports.Claims{UserID: "u1"})

	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var id domain.Identity
	if err := json.Unmarshal(rec.Body.Bytes(), &id); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if id.ID != "u1" || id.Name != "Ana" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}
