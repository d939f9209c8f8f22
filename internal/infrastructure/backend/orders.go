package backend

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/soremed/portal/internal/core/domain"
	"github.com/soremed/portal/internal/core/ports"
)

var (
	_ ports.OrderAPI     = (*Client)(nil)
	_ ports.DashboardAPI = (*Client)(nil)
)

func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	if err := c.do(ctx, call{method: http.MethodGet, route: "/orders", path: "/orders"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var out domain.Order
	err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/orders/{id}",
		path:   "/orders/" + strconv.FormatInt(id, 10),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateOrder(ctx context.Context, userID int64, items []domain.OrderItem) (*domain.CreatedOrder, error) {
	var out domain.CreatedOrder
	err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/orders",
		path:   "/orders",
		query:  url.Values{"userId": {strconv.FormatInt(userID, 10)}},
		body:   items,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListAdminOrders(ctx context.Context) ([]domain.AdminOrder, error) {
	var out []domain.AdminOrder
	if err := c.do(ctx, call{method: http.MethodGet, route: "/admin/orders", path: "/admin/orders"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string) error {
	return c.do(ctx, call{
		method: http.MethodPut,
		route:  "/admin/orders/{id}/status",
		path:   "/admin/orders/" + url.PathEscape(id) + "/status",
		query:  url.Values{"status": {status}},
	}, nil)
}

// ExportOrders returns the raw export body and its content type.
func (c *Client) ExportOrders(ctx context.Context) (io.ReadCloser, string, error) {
	resp, err := c.send(ctx, call{method: http.MethodGet, route: "/admin/orders/export", path: "/admin/orders/export"})
	if err != nil {
		return nil, "", err
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "text/csv"
	}
	return resp.Body, ct, nil
}

func (c *Client) TopProducts(ctx context.Context) ([]domain.TopProduct, error) {
	var out []domain.TopProduct
	err := c.do(ctx, call{method: http.MethodGet, route: "/client/dashboard/top-products", path: "/client/dashboard/top-products"}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) StatusDistribution(ctx context.Context) ([]domain.OrderStatusCount, error) {
	var out []domain.OrderStatusCount
	err := c.do(ctx, call{method: http.MethodGet, route: "/client/dashboard/status-distribution", path: "/client/dashboard/status-distribution"}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}
