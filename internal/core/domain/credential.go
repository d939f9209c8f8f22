package domain

import (
	"context"
	"encoding/base64"
	"strings"
)

// Credential is the opaque value sent as the Authorization header to the backend.
// It is either "Basic <base64(user:pass)>" or "Bearer <token>".
type Credential string

const (
	SchemeBasic  = "basic"
	SchemeBearer = "bearer"
)

// BasicCredential encodes username and password the way HTTP Basic auth expects.
func BasicCredential(username, password string) Credential {
	return Credential("Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password)))
}

// BearerCredential wraps an access token.
func BearerCredential(token string) Credential {
	return Credential("Bearer " + token)
}

// IsZero reports whether the credential is empty.
func (c Credential) IsZero() bool { return strings.TrimSpace(string(c)) == "" }

// Scheme returns the lower-cased auth scheme, or "" when the value has none.
func (c Credential) Scheme() string {
	scheme, _, ok := strings.Cut(string(c), " ")
	if !ok {
		return ""
	}
	return strings.ToLower(scheme)
}

// Token returns the part after the scheme.
func (c Credential) Token() string {
	_, token, _ := strings.Cut(string(c), " ")
	return token
}

type sessionKeyCtx struct{}
type credentialCtx struct{}
type anonymousCtx struct{}

// WithSessionKey tags ctx with the session whose stored credential outgoing
// backend calls should carry.
func WithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKeyCtx{}, key)
}

// SessionKeyFromContext returns the session key set by WithSessionKey.
func SessionKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(sessionKeyCtx{}).(string)
	return key, ok && key != ""
}

// WithCredential pins an explicit credential on ctx. It takes precedence over
// the stored one and is never persisted.
func WithCredential(ctx context.Context, cred Credential) context.Context {
	return context.WithValue(ctx, credentialCtx{}, cred)
}

// CredentialFromContext returns the credential pinned by WithCredential.
func CredentialFromContext(ctx context.Context) (Credential, bool) {
	cred, ok := ctx.Value(credentialCtx{}).(Credential)
	return cred, ok && !cred.IsZero()
}

// WithAnonymous marks ctx so that outgoing backend calls carry no credential,
// even when a session key is present.
func WithAnonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousCtx{}, true)
}

// IsAnonymous reports whether ctx was marked by WithAnonymous.
func IsAnonymous(ctx context.Context) bool {
	v, _ := ctx.Value(anonymousCtx{}).(bool)
	return v
}
