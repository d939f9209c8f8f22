package ports

import (
	"context"
	"time"

	"github.com/soremed/portal/internal/core/domain"
)

// CredentialStore persists one credential per session key. It is the only
// shared mutable resource of the session subsystem.
type CredentialStore interface {
	// Load returns domain.ErrNoCredential when nothing is stored under key.
	Load(ctx context.Context, key string) (domain.Credential, error)
	// Save replaces the credential under key. A zero ttl means no expiry.
	Save(ctx context.Context, key string, cred domain.Credential, ttl time.Duration) error
	// Delete is a no-op when nothing is stored.
	Delete(ctx context.Context, key string) error
}
