package backend

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/soremed/portal/internal/core/domain"
	"github.com/soremed/portal/internal/core/ports"
)

// credentialTransport sets Authorization on every outgoing request. Resolution
// order: anonymous marker, pinned credential, stored credential of the session
// key on the context. Finding nothing is a valid anonymous request.
type credentialTransport struct {
	next  http.RoundTripper
	creds ports.CredentialStore
	log   zerolog.Logger
}

func newCredentialTransport(next http.RoundTripper, creds ports.CredentialStore, log zerolog.Logger) *credentialTransport {
	return &credentialTransport{next: next, creds: creds, log: log}
}

func (t *credentialTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cred, ok := t.resolve(req)

	// RoundTrippers must not modify the caller's request.
	out := req.Clone(req.Context())
	if ok {
		out.Header.Set("Authorization", string(cred))
	} else {
		out.Header.Del("Authorization")
	}
	return t.next.RoundTrip(out)
}

func (t *credentialTransport) resolve(req *http.Request) (domain.Credential, bool) {
	ctx := req.Context()
	if domain.IsAnonymous(ctx) {
		return "", false
	}
	if cred, ok := domain.CredentialFromContext(ctx); ok {
		return cred, true
	}

	key, ok := domain.SessionKeyFromContext(ctx)
	if !ok || t.creds == nil {
		return "", false
	}
	cred, err := t.creds.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNoCredential) {
			t.log.Warn().Err(err).Str("path", req.URL.Path).Msg("credential lookup failed, sending request anonymously")
		}
		return "", false
	}
	return cred, true
}
