package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/soremed/portal/internal/core/domain"
	"github.com/soremed/portal/internal/core/ports"
)

var _ ports.AuthAPI = (*Client)(nil)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse accepts both backend flavours: the bare user projection, and
// {"token": "...", "user": {...}}.
type loginResponse struct {
	domain.User
	Token       string       `json:"token"`
	AccessToken string       `json:"accessToken"`
	Nested      *domain.User `json:"user"`
}

// Me calls the whoami endpoint. An answer naming nobody is treated as a
// backend failure.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.do(ctx, call{method: http.MethodGet, route: "/users/me", path: "/users/me"}, &u); err != nil {
		return nil, err
	}
	if u.IsZero() {
		return nil, fmt.Errorf("whoami: empty user in response: %w", domain.ErrBackendUnavailable)
	}
	return &u, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	var resp loginResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/login",
		path:   "/login",
		body:   loginRequest{Username: username, Password: password},
	}, &resp)
	if err != nil {
		return nil, err
	}

	res := &ports.LoginResult{Token: resp.Token}
	if res.Token == "" {
		res.Token = resp.AccessToken
	}
	switch {
	case resp.Nested != nil:
		res.User = resp.Nested
	case resp.User.ID != 0 || resp.User.Username != "":
		u := resp.User
		res.User = &u
	}
	return res, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, call{method: http.MethodPost, route: "/logout", path: "/logout"}, nil)
}

// Register creates a CLIENT account. It is always sent anonymously.
func (c *Client) Register(ctx context.Context, reg domain.Registration) error {
	return c.do(domain.WithAnonymous(ctx), call{
		method: http.MethodPost,
		route:  "/users/register",
		path:   "/users/register",
		body:   reg,
	}, nil)
}
