package middleware

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/soremed/portal/internal/api/metrics"
	"github.com/soremed/portal/internal/core/domain"
)

// UserContextKey is where guards leave the authorized user for handlers.
const UserContextKey = "user"

// LoginPath is where unauthorized requests are sent.
const LoginPath = "/login"

type loadingResponse struct {
	Status string `json:"status"`
}

// Guards builds the route guards. Each guard renders one of three outcomes:
// a loading placeholder while the session hydrates, a redirect to the login
// page, or the protected handler.
type Guards struct {
	sessions *Sessions
	wait     time.Duration
	log      zerolog.Logger
}

// NewGuards returns guards that resolve sessions through sessions and give
// hydration up to wait before answering with the placeholder.
func NewGuards(sessions *Sessions, wait time.Duration, log zerolog.Logger) *Guards {
	return &Guards{sessions: sessions, wait: wait, log: log}
}

// RequireAuth lets any logged-in user through.
func (g *Guards) RequireAuth() echo.MiddlewareFunc {
	return g.guard("auth", func(u *domain.User) bool { return u != nil })
}

// RequireAdmin lets only ADMIN users through.
func (g *Guards) RequireAdmin() echo.MiddlewareFunc {
	return g.guard("admin", func(u *domain.User) bool { return u.HasRole(domain.RoleAdmin) })
}

// RequireServiceAchat lets only SERVICE_ACHAT users through.
func (g *Guards) RequireServiceAchat() echo.MiddlewareFunc {
	return g.guard("service_achat", func(u *domain.User) bool { return u.HasRole(domain.RoleServiceAchat) })
}

func (g *Guards) guard(name string, allowed func(*domain.User) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := g.sessions.Resolve(c)

			st := sess.Snapshot()
			if st.Loading && g.wait > 0 {
				ctx, cancel := context.WithTimeout(c.Request().Context(), g.wait)
				_ = sess.Wait(ctx)
				cancel()
				st = sess.Snapshot()
			}

			if st.Loading {
				metrics.GuardDecisionsTotal.WithLabelValues(name, "loading").Inc()
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusAccepted, loadingResponse{Status: "loading"})
			}

			if !allowed(st.User) {
				metrics.GuardDecisionsTotal.WithLabelValues(name, "redirect").Inc()
				g.log.Debug().
					Str("guard", name).
					Str("path", c.Request().URL.Path).
					Bool("anonymous", st.User == nil).
					Msg("redirecting to login")
				return c.Redirect(http.StatusFound, loginURL(c.Request().URL.RequestURI()))
			}

			metrics.GuardDecisionsTotal.WithLabelValues(name, "allow").Inc()
			c.Set(UserContextKey, st.User)
			return next(c)
		}
	}
}

func loginURL(from string) string {
	return LoginPath + "?" + url.Values{"from": {from}}.Encode()
}
