package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/soremed/portal/internal/api/middleware"
	"github.com/soremed/portal/internal/api/view"
	"github.com/soremed/portal/internal/core/domain"
)

// currentUser returns the user a guard placed on the context. Handlers mounted
// behind a guard always find one; anything else is a routing mistake and is
// answered like an expired session.
func currentUser(c echo.Context) (*domain.User, error) {
	u, _ := c.Get(middleware.UserContextKey).(*domain.User)
	if u == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return u, nil
}

// render answers with data wrapped in the given layout.
func render(c echo.Context, layout, title string, data any) error {
	u, _ := c.Get(middleware.UserContextKey).(*domain.User)
	return c.JSON(http.StatusOK, view.New(layout, title, u, c.Request().URL.Path, data))
}

func paramID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// queryInt reads a non-negative integer query parameter, falling back to def
// when it is absent or malformed.
func queryInt(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v < 0 {
		return def
	}
	return v
}

// pageBounds returns the [start, end) bounds of the 1-based page over total
// items. Pages past the end are empty.
func pageBounds(page, perPage, total int) (start, end int) {
	if page < 1 || page-1 > total/perPage {
		return total, total
	}
	start = (page - 1) * perPage
	return start, min(start+perPage, total)
}

// bindValid binds the request into req and validates it. Bind failures are
// 400s, validation failures 422s.
func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}
