package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tastetrail/tastetrail/internal/core/domain"
	"github.com/tastetrail/tastetrail/internal/core/ports"
	"github.com/tastetrail/tastetrail/internal/navigation"
	"github.com/tastetrail/tastetrail/internal/pkg/validate"
)

// AuthFlow drives the login, signup and logout pages: it validates the
// form, talks to the backend and only then touches the session.
type AuthFlow struct {
	api      ports.AuthAPI
	sessions ports.SessionWriter
	log      zerolog.Logger
}

func NewAuthFlow(api ports.AuthAPI, sessions ports.SessionWriter, log zerolog.Logger) *AuthFlow {
	return &AuthFlow{
		api:      api,
		sessions: sessions,
		log:      log.With().Str("component", "auth_flow").Logger(),
	}
}

// Login signs in and returns where to go next: returnTo when it is a safe
// local path, the dashboard otherwise. On any failure the session is left
// as it was.
func (f *AuthFlow) Login(ctx context.Context, form ports.LoginForm, returnTo string) (string, error) {
	form.Email = NormalizeEmail(form.Email)
	if err := validate.Struct(form); err != nil {
		return "", err
	}

	res, err := f.api.Login(ctx, form)
	if err != nil {
		f.log.Debug().Err(err).Str("email", form.Email).Msg("login rejected")
		return "", err
	}
	if err := f.sessions.Login(res.User, res.Token); err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}

	dest := navigation.Destination(returnTo)
	f.log.Info().Str("user_id", res.User.ID).Str("dest", dest).Msg("logged in")
	return dest, nil
}

// Register creates an account, signs it in and returns the dashboard path.
func (f *AuthFlow) Register(ctx context.Context, form ports.SignupForm) (string, error) {
	form.Email = NormalizeEmail(form.Email)
	if err := validate.Struct(form); err != nil {
		return "", err
	}

	res, err := f.api.Register(ctx, form)
	if err != nil {
		f.log.Debug().Err(err).Str("email", form.Email).Msg("signup rejected")
		return "", err
	}
	if err := f.sessions.Login(res.User, res.Token); err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}

	f.log.Info().Str("user_id", res.User.ID).Msg("signed up")
	return domain.PathDashboard, nil
}

// Logout asks the backend to revoke the token, then clears the session
// whatever the backend answered.
func (f *AuthFlow) Logout(ctx context.Context) domain.Decision {
	if err := f.api.Logout(ctx); err != nil {
		f.log.Warn().Err(err).Msg("backend logout failed, clearing local session anyway")
	}
	return f.sessions.Logout()
}
