package domain

import "errors"

// Session errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoCredential       = errors.New("no stored credential")
)

// Backend errors. The backend client wraps every non-2xx answer in one of these.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrBadRequest         = errors.New("bad request")
	ErrBackendUnavailable = errors.New("backend unavailable")
)
