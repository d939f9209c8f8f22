package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/soremed/portal/internal/api/metrics"
	"github.com/soremed/portal/internal/api/view"
	"github.com/soremed/portal/internal/core/domain"
	"github.com/soremed/portal/internal/core/ports"
	"github.com/soremed/portal/internal/core/service"
)

// SessionManager resolves the session bound to a request and logs browsers in.
type SessionManager interface {
	Resolve(c echo.Context) *service.Session
	Login(c echo.Context, username, password string) (*domain.User, error)
}

type AuthHandler struct {
	sessions SessionManager
	auth     ports.AuthAPI
	log      zerolog.Logger
}

func NewAuthHandler(sessions SessionManager, auth ports.AuthAPI, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, auth: auth, log: log}
}

type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
	From     string `json:"from"     form:"from"`
}

type loginResponse struct {
	User     *domain.User `json:"user"`
	Redirect string       `json:"redirect"`
}

type loginPageResponse struct {
	Loading bool   `json:"loading"`
	From    string `json:"from,omitempty"`
}

type registerRequest struct {
	ICENumber string `json:"iceNumber" validate:"required"`
	Address   string `json:"address"   validate:"required"`
	Phone     string `json:"phone"     validate:"required"`
	Username  string `json:"username"  validate:"required"`
	Password  string `json:"password"  validate:"required,min=6"`
}

type redirectResponse struct {
	Redirect string `json:"redirect"`
}

// LoginPage handles GET /login.
//
// @Summary      Login page state
// @Description  Returns the current user (if any) and whether the session is still restoring.
// @Tags         auth
// @Produce      json
// @Param        from  query     string  false  "Page to return to after login"
// @Success      200   {object}  view.Page
// @Router       /login [get]
func (h *AuthHandler) LoginPage(c echo.Context) error {
	st := h.sessions.Resolve(c).Snapshot()
	page := view.New(view.LayoutPublic, "Login", st.User, c.Request().URL.Path, loginPageResponse{
		Loading: st.Loading,
		From:    safeRedirect(c.QueryParam("from")),
	})
	return c.JSON(http.StatusOK, page)
}

// Login handles POST /login. The credential is stored only once the backend
// accepted it, under a session key issued by this login.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	user, err := h.sessions.Login(c, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		} else {
			metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		}
		return err
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()

	redirect := safeRedirect(req.From)
	if redirect == "" {
		redirect = view.HomePath(view.LayoutFor(user))
	}
	return c.JSON(http.StatusOK, loginResponse{User: user, Redirect: redirect})
}

// Logout handles POST /logout. It always succeeds.
//
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  redirectResponse
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.Resolve(c).Logout(c.Request().Context())
	metrics.LogoutsTotal.Inc()
	return c.JSON(http.StatusOK, redirectResponse{Redirect: "/login"})
}

// Register handles POST /register and creates a CLIENT account.
//
// @Summary      Register a pharmacy
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Pharmacy details"
// @Success      201   {object}  redirectResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	err := h.auth.Register(c.Request().Context(), domain.Registration{
		ICENumber: req.ICENumber,
		Address:   req.Address,
		Phone:     req.Phone,
		Username:  req.Username,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}

	h.log.Info().Str("user", req.Username).Msg("pharmacy registered")
	return c.JSON(http.StatusCreated, redirectResponse{Redirect: "/login"})
}

// safeRedirect keeps only local paths, so "from" cannot send the browser to
// another site or back to the login page.
func safeRedirect(from string) string {
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return ""
	}
	if from == "/login" || strings.HasPrefix(from, "/login?") {
		return ""
	}
	return from
}
