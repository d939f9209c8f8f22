package backend

import (
	"context"
	"net/http"
	"strconv"

	"github.com/soremed/portal/internal/core/domain"
	"github.com/soremed/portal/internal/core/ports"
)

var _ ports.NotificationAPI = (*Client)(nil)

func (c *Client) ClientNotifications(ctx context.Context) ([]domain.Notification, error) {
	var out []domain.Notification
	err := c.do(ctx, call{method: http.MethodGet, route: "/notifications/orders", path: "/notifications/orders"}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MarkClientNotificationRead(ctx context.Context, id int64) error {
	return c.do(ctx, call{
		method: http.MethodPut,
		route:  "/notifications/orders/{id}/read",
		path:   "/notifications/orders/" + strconv.FormatInt(id, 10) + "/read",
	}, nil)
}

func (c *Client) DeleteClientNotification(ctx context.Context, id int64) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		route:  "/notifications/orders/{id}",
		path:   "/notifications/orders/" + strconv.FormatInt(id, 10),
	}, nil)
}

func (c *Client) RecentAdminNotifications(ctx context.Context) ([]domain.Notification, error) {
	var out []domain.Notification
	err := c.do(ctx, call{method: http.MethodGet, route: "/admin/notifications/recent", path: "/admin/notifications/recent"}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MarkAdminNotificationRead(ctx context.Context, id int64) error {
	return c.do(ctx, call{
		method: http.MethodPut,
		route:  "/admin/notifications/{id}/read",
		path:   "/admin/notifications/" + strconv.FormatInt(id, 10) + "/read",
	}, nil)
}

func (c *Client) DeleteAdminNotification(ctx context.Context, id int64) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		route:  "/admin/notifications/{id}",
		path:   "/admin/notifications/" + strconv.FormatInt(id, 10),
	}, nil)
}

func (c *Client) NotificationSettings(ctx context.Context) (*domain.NotificationSettings, error) {
	var out domain.NotificationSettings
	err := c.do(ctx, call{method: http.MethodGet, route: "/admin/notifications/settings", path: "/admin/notifications/settings"}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateNotificationSettings(ctx context.Context, s domain.NotificationSettings) error {
	return c.do(ctx, call{
		method: http.MethodPut,
		route:  "/admin/notifications/settings",
		path:   "/admin/notifications/settings",
		body:   s,
	}, nil)
}
