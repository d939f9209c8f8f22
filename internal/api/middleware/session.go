package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/soremed/portal/internal/api/metrics"
	"github.com/soremed/portal/internal/core/domain"
	"github.com/soremed/portal/internal/core/service"
)

const sessionContextKey = "session"

// SessionSource hands out the live session for a key.
type SessionSource interface {
	Acquire(key string) *service.Session
	Mint() *service.Session
	Anonymous() *service.Session
	Drop(ctx context.Context, key string)
	Len() int
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// Sessions binds each browser to a session through an HttpOnly cookie.
type Sessions struct {
	source SessionSource
	cookie CookieConfig
}

func NewSessions(source SessionSource, cookie CookieConfig) *Sessions {
	if cookie.Name == "" {
		cookie.Name = "soremed_session"
	}
	return &Sessions{source: source, cookie: cookie}
}

// Middleware resolves the session of every request and puts its key on the
// request context, so backend calls made while serving it carry the session's
// credential.
func (s *Sessions) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s.Resolve(c)
			return next(c)
		}
	}
}

// Resolve returns the request's session. A request without a valid cookie gets
// an anonymous session that is neither registered nor given a cookie; keys are
// only handed out by Login. It is idempotent within a request.
func (s *Sessions) Resolve(c echo.Context) *service.Session {
	if sess, ok := c.Get(sessionContextKey).(*service.Session); ok {
		return sess
	}

	key := s.keyFromCookie(c)
	if key == "" {
		sess := s.source.Anonymous()
		c.Set(sessionContextKey, sess)
		return sess
	}

	sess := s.source.Acquire(key)
	metrics.ActiveSessions.Set(float64(s.source.Len()))
	s.bind(c, sess)
	return sess
}

// Login authenticates on a session under a freshly minted key and, on success,
// moves the browser onto it. The key the request arrived with is dropped along
// with any credential stored under it, so a key set before login never becomes
// authenticated. On failure the browser keeps its cookie and nothing is stored.
func (s *Sessions) Login(c echo.Context, username, password string) (*domain.User, error) {
	ctx := c.Request().Context()
	next := s.source.Mint()

	user, err := next.Login(domain.WithSessionKey(ctx, next.Key()), username, password)
	if err != nil {
		s.source.Drop(ctx, next.Key())
		return nil, err
	}

	if prev := s.keyFromCookie(c); prev != "" {
		s.source.Drop(ctx, prev)
	}
	c.SetCookie(s.newCookie(next.Key()))
	s.bind(c, next)
	metrics.ActiveSessions.Set(float64(s.source.Len()))
	return user, nil
}

func (s *Sessions) bind(c echo.Context, sess *service.Session) {
	c.Set(sessionContextKey, sess)
	req := c.Request()
	c.SetRequest(req.WithContext(domain.WithSessionKey(req.Context(), sess.Key())))
}

// keyFromCookie only accepts keys this portal could have minted.
func (s *Sessions) keyFromCookie(c echo.Context) string {
	ck, err := c.Cookie(s.cookie.Name)
	if err != nil || ck.Value == "" {
		return ""
	}
	if _, err := uuid.Parse(ck.Value); err != nil {
		return ""
	}
	return ck.Value
}

func (s *Sessions) newCookie(key string) *http.Cookie {
	ck := &http.Cookie{
		Name:     s.cookie.Name,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if s.cookie.MaxAge > 0 {
		ck.MaxAge = int(s.cookie.MaxAge.Seconds())
	}
	return ck
}

// SessionFrom returns the session resolved for this request, if any.
func SessionFrom(c echo.Context) (*service.Session, bool) {
	sess, ok := c.Get(sessionContextKey).(*service.Session)
	return sess, ok
}
