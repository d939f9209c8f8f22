package backend

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/soremed/portal/internal/core/domain"
)

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Method string
	Route  string
	Code   int
	Body   string
	kind   error
}

func newStatusError(method, route string, code int, body []byte) *StatusError {
	return &StatusError{
		Method: method,
		Route:  route,
		Code:   code,
		Body:   strings.TrimSpace(string(body)),
		kind:   kindOf(code),
	}
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend %s %s: status %d", e.Method, e.Route, e.Code)
	}
	return fmt.Sprintf("backend %s %s: status %d: %s", e.Method, e.Route, e.Code, e.Body)
}

// Unwrap exposes the domain sentinel so callers can use errors.Is.
func (e *StatusError) Unwrap() error { return e.kind }

func kindOf(code int) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthorized
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.ErrBadRequest
	default:
		return domain.ErrBackendUnavailable
	}
}
