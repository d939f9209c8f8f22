package handler

import (
	"sort"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/soremed/portal/internal/api/view"
	"github.com/soremed/portal/internal/core/domain"
	"github.com/soremed/portal/internal/core/ports"
)

// DashboardHandler assembles the three dashboards. Each one fans out to the
// backend concurrently and fails as a whole when any call fails.
type DashboardHandler struct {
	dashboard ports.DashboardAPI
	orders    ports.OrderAPI
	users     ports.UserAPI
	catalog   ports.CatalogAPI
}

func NewDashboardHandler(dashboard ports.DashboardAPI, orders ports.OrderAPI, users ports.UserAPI, catalog ports.CatalogAPI) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, orders: orders, users: users, catalog: catalog}
}

type clientDashboardData struct {
	TopProducts        []domain.TopProduct       `json:"topProducts"`
	StatusDistribution []domain.OrderStatusCount `json:"statusDistribution"`
}

type staffDashboardData struct {
	TotalUsers     int                       `json:"totalUsers,omitempty"`
	TotalOrders    int                       `json:"totalOrders"`
	OrdersByStatus []domain.OrderStatusCount `json:"ordersByStatus"`
	Medications    *domain.MedicationStats   `json:"medications"`
}

// Client handles GET /dashboard.
//
// @Summary      Client dashboard
// @Tags         client
// @Produce      json
// @Success      200  {object}  view.Page
// @Router       /dashboard [get]
func (h *DashboardHandler) Client(c echo.Context) error {
	var data clientDashboardData
	g, ctx := errgroup.WithContext(c.Request().Context())

	g.Go(func() error {
		top, err := h.dashboard.TopProducts(ctx)
		data.TopProducts = top
		return err
	})
	g.Go(func() error {
		dist, err := h.dashboard.StatusDistribution(ctx)
		data.StatusDistribution = dist
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return render(c, view.LayoutClient, "Dashboard", data)
}

// Admin handles GET /admin.
//
// @Summary      Back-office dashboard
// @Tags         admin
// @Produce      json
// @Success      200  {object}  view.Page
// @Router       /admin [get]
func (h *DashboardHandler) Admin(c echo.Context) error {
	var (
		data   staffDashboardData
		orders []domain.AdminOrder
	)
	g, ctx := errgroup.WithContext(c.Request().Context())

	g.Go(func() error {
		users, err := h.users.ListUsers(ctx)
		data.TotalUsers = len(users)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = h.orders.ListAdminOrders(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		data.Medications, err = h.catalog.MedicationStats(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	data.TotalOrders = len(orders)
	data.OrdersByStatus = countByStatus(orders)
	return render(c, view.LayoutAdmin, "Dashboard", data)
}

// Achat handles GET /achat.
//
// @Summary      Purchasing dashboard
// @Tags         achat
// @Produce      json
// @Success      200  {object}  view.Page
// @Router       /achat [get]
func (h *DashboardHandler) Achat(c echo.Context) error {
	var (
		data   staffDashboardData
		orders []domain.AdminOrder
	)
	g, ctx := errgroup.WithContext(c.Request().Context())

	g.Go(func() error {
		var err error
		orders, err = h.orders.ListAdminOrders(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		data.Medications, err = h.catalog.MedicationStats(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	data.TotalOrders = len(orders)
	data.OrdersByStatus = countByStatus(orders)
	return render(c, view.LayoutServiceAchat, "Dashboard", data)
}

// countByStatus returns one entry per status present, sorted by status name.
func countByStatus(orders []domain.AdminOrder) []domain.OrderStatusCount {
	counts := make(map[string]int)
	for _, o := range orders {
		counts[o.Status]++
	}

	out := make([]domain.OrderStatusCount, 0, len(counts))
	for status, n := range counts {
		out = append(out, domain.OrderStatusCount{Status: status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out
}
