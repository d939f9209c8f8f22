package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// credentialTTL shortens ttl to the token's own expiry when the token is a JWT
// carrying an exp claim. The signature is not checked: the portal only needs
// to know when the backend will stop honouring the token.
func credentialTTL(token string, ttl time.Duration, now time.Time) time.Duration {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return ttl
	}
	if claims.ExpiresAt == nil {
		return ttl
	}

	remaining := claims.ExpiresAt.Sub(now)
	if remaining <= 0 {
		// Already expired: keep it just long enough for hydration to reject it.
		return time.Second
	}
	if ttl <= 0 || remaining < ttl {
		return remaining
	}
	return ttl
}
