package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/soremed/portal/internal/core/domain"
	"github.com/soremed/portal/internal/core/ports"
)

var _ ports.CatalogAPI = (*Client)(nil)

func (c *Client) ListMedications(ctx context.Context, q domain.MedicationQuery) (*domain.MedicationPage, error) {
	params := url.Values{}
	params.Set("search", q.Search)
	params.Set("minQuantity", strconv.Itoa(q.MinQuantity))
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("size", strconv.Itoa(q.Size))

	var page domain.MedicationPage
	err := c.do(ctx, call{method: http.MethodGet, route: "/medications", path: "/medications", query: params}, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) MedicationStats(ctx context.Context) (*domain.MedicationStats, error) {
	var stats domain.MedicationStats
	if err := c.do(ctx, call{method: http.MethodGet, route: "/medications/stats", path: "/medications/stats"}, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) CreateMedication(ctx context.Context, m domain.Medication) (*domain.Medication, error) {
	var out domain.Medication
	if err := c.do(ctx, call{method: http.MethodPost, route: "/medications", path: "/medications", body: m}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMedication(ctx context.Context, id int64, m domain.Medication) (*domain.Medication, error) {
	var out domain.Medication
	err := c.do(ctx, call{
		method: http.MethodPut,
		route:  "/medications/{id}",
		path:   "/medications/" + strconv.FormatInt(id, 10),
		body:   m,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteMedication(ctx context.Context, id int64) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		route:  "/medications/{id}",
		path:   "/medications/" + strconv.FormatInt(id, 10),
	}, nil)
}
