package apiclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tastetrail/tastetrail/internal/core/domain"
)

// Backend rejection codes carried in the error envelope.
const (
	CodeTokenExpired       = "token_expired"
	CodeTokenInvalid       = "token_invalid"
	CodeUnauthorized       = "unauthorized"
	CodeInvalidCredentials = "invalid_credentials"
)

// APIError is a non-2xx response. It unwraps to one of the domain sentinels
// so callers can branch with errors.Is.
type APIError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v: %s (status %d)", e.Err, e.Message, e.Status)
	}
	return fmt.Sprintf("%v (status %d)", e.Err, e.Status)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// classify maps a failed response to the error taxonomy. withToken reports
// whether the request carried a credential: only then can a 401 mean the
// credential itself was rejected.
func classify(resp *http.Response, withToken bool) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var env errorEnvelope
	_ = json.Unmarshal(body, &env)
	msg := env.Message
	if msg == "" {
		msg = env.Error
	}

	apiErr := &APIError{Status: resp.StatusCode, Code: env.Code, Message: msg}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		switch {
		case env.Code == CodeTokenExpired, env.Code == CodeTokenInvalid:
			apiErr.Err = domain.ErrCredentialExpired
		case withToken && env.Code == "":
			apiErr.Err = domain.ErrCredentialExpired
		default:
			apiErr.Err = domain.ErrAuthRejected
		}
	case resp.StatusCode == http.StatusForbidden:
		apiErr.Err = domain.ErrForbidden
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnprocessableEntity:
		apiErr.Err = domain.ErrValidation
	case resp.StatusCode == http.StatusConflict:
		apiErr.Err = domain.ErrUserExists
	case resp.StatusCode == http.StatusNotFound:
		apiErr.Err = domain.ErrNotFound
	default:
		apiErr.Err = domain.ErrUnexpected
	}
	return apiErr
}
