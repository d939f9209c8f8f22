package ports

import (
	"context"

	"github.com/soremed/portal/internal/core/domain"
)

// LoginResult is what the backend answers to a successful login. Token is only
// set by backends that issue bearer tokens.
type LoginResult struct {
	User  *domain.User
	Token string
}

// AuthAPI is the slice of the backend the session store talks to. Calls carry
// whatever credential the context resolves to (see domain.WithCredential).
type AuthAPI interface {
	Me(ctx context.Context) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context) error
	Register(ctx context.Context, reg domain.Registration) error
}
