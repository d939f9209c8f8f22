package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/soremed/portal/internal/core/domain"
	"github.com/soremed/portal/internal/core/ports"
)

var _ ports.UserAPI = (*Client)(nil)

func (c *Client) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	var out []domain.UserAccount
	if err := c.do(ctx, call{method: http.MethodGet, route: "/admin/users", path: "/admin/users"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateUser(ctx context.Context, u domain.NewUserAccount) (*domain.UserAccount, error) {
	var out domain.UserAccount
	if err := c.do(ctx, call{method: http.MethodPost, route: "/admin/users", path: "/admin/users", body: u}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangeUserRole(ctx context.Context, id int64, role string) error {
	return c.do(ctx, call{
		method: http.MethodPut,
		route:  "/admin/users/{id}/role",
		path:   "/admin/users/" + strconv.FormatInt(id, 10) + "/role",
		query:  url.Values{"newRole": {role}},
	}, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		route:  "/admin/users/{id}",
		path:   "/admin/users/" + strconv.FormatInt(id, 10),
	}, nil)
}
