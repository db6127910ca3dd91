package domain

import (
	"errors"
	"sort"
	"strings"
)

// Client-side taxonomy.
var (
	// ErrAuthRejected means login/signup credentials were refused. The
	// session is left untouched.
	ErrAuthRejected = errors.New("authentication rejected")

	// ErrCredentialExpired means the backend no longer accepts the current
	// token. It is the only error allowed to force a logout.
	ErrCredentialExpired = errors.New("credential expired")

	// ErrForbidden means the session is valid but its role is insufficient.
	ErrForbidden = errors.New("access forbidden")

	ErrNotFound   = errors.New("not found")
	ErrUnexpected = errors.New("unexpected api failure")
	ErrValidation = errors.New("validation failed")
)

// Backend taxonomy.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// FieldErrors maps a form field to its human-readable message.
type FieldErrors map[string]string

// ValidationError carries per-field messages for inline display.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
