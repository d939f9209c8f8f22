package backend

import (
	"context"
	"net/http"
	"strconv"

	"github.com/soremed/portal/internal/core/domain"
	"github.com/soremed/portal/internal/core/ports"
)

var _ ports.NewsAPI = (*Client)(nil)

func (c *Client) ListNews(ctx context.Context) ([]domain.News, error) {
	var out []domain.News
	if err := c.do(ctx, call{method: http.MethodGet, route: "/news", path: "/news"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateNews posts JSON, or multipart form data when an image is attached.
func (c *Client) CreateNews(ctx context.Context, n domain.News, image *ports.NewsImage) (*domain.News, error) {
	var body any = n
	if image != nil {
		body = NewMultipart().
			Field("title", n.Title).
			Field("description", n.Description).
			Field("category", n.Category).
			Field("date", n.Date).
			File("image", image.Filename, image.Content)
	}

	var out domain.News
	if err := c.do(ctx, call{method: http.MethodPost, route: "/news", path: "/news", body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateNews(ctx context.Context, id int64, n domain.News) (*domain.News, error) {
	var out domain.News
	err := c.do(ctx, call{
		method: http.MethodPut,
		route:  "/news/{id}",
		path:   "/news/" + strconv.FormatInt(id, 10),
		body:   n,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteNews(ctx context.Context, id int64) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		route:  "/news/{id}",
		path:   "/news/" + strconv.FormatInt(id, 10),
	}, nil)
}
