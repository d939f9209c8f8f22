package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/soremed/portal/internal/api/view"
	"github.com/soremed/portal/internal/core/domain"
	"github.com/soremed/portal/internal/core/ports"
)

const usersPerPage = 10

// UserHandler serves back-office user management.
type UserHandler struct {
	users ports.UserAPI
	log   zerolog.Logger
}

func NewUserHandler(users ports.UserAPI, log zerolog.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

type createUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	ICE      string `json:"ice"`
	Role     string `json:"role"     validate:"required,role"`
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,role"`
}

type usersData struct {
	Users      []domain.UserAccount `json:"users"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"totalPages"`
	Total      int                  `json:"total"`
}

// List handles GET /admin/users.
//
// @Summary      Users
// @Tags         admin
// @Produce      json
// @Param        search  query     string  false  "Username fragment"
// @Param        page    query     int     false  "1-based page"
// @Success      200     {object}  view.Page
// @Router       /admin/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}

	search := strings.ToLower(strings.TrimSpace(c.QueryParam("search")))
	filtered := make([]domain.UserAccount, 0, len(users))
	for _, u := range users {
		if search == "" || strings.Contains(strings.ToLower(u.Username), search) {
			filtered = append(filtered, u)
		}
	}

	total := len(filtered)
	page := max(queryInt(c, "page", 1), 1)
	start, end := pageBounds(page, usersPerPage, total)

	return render(c, view.LayoutAdmin, "Users", usersData{
		Users:      filtered[start:end],
		Page:       page,
		TotalPages: (total + usersPerPage - 1) / usersPerPage,
		Total:      total,
	})
}

// Create handles POST /admin/users.
//
// @Summary      Create a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "Account"
// @Success      201   {object}  domain.UserAccount
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	u, err := h.users.CreateUser(c.Request().Context(), domain.NewUserAccount{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
		ICE:      req.ICE,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	h.log.Info().Str("user", u.Username).Str("role", u.Role).Msg("user created")
	return c.JSON(http.StatusCreated, u)
}

// ChangeRole handles PUT /admin/users/:id/role.
//
// @Summary      Change a user's role
// @Tags         admin
// @Accept       json
// @Param        id    path  int                true  "User id"
// @Param        body  body  changeRoleRequest  true  "New role"
// @Success      204
// @Failure      422  {object}  errorResponse
// @Router       /admin/users/{id}/role [put]
func (h *UserHandler) ChangeRole(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req changeRoleRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	if me, err := currentUser(c); err == nil && me.ID == id && req.Role != domain.RoleAdmin {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "you cannot demote yourself")
	}

	if err := h.users.ChangeUserRole(c.Request().Context(), id, req.Role); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /admin/users/:id.
//
// @Summary      Delete a user
// @Tags         admin
// @Param        id  path  int  true  "User id"
// @Success      204
// @Failure      422  {object}  errorResponse
// @Router       /admin/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if me, err := currentUser(c); err == nil && me.ID == id {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "you cannot delete your own account")
	}

	if err := h.users.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
