package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/soremed/portal/internal/api/view"
	"github.com/soremed/portal/internal/core/domain"
	"github.com/soremed/portal/internal/core/ports"
)

// orderBuilderSize is how many medications the order form offers.
const orderBuilderSize = 1000

// OrderHandler serves the client order form and tracking pages.
type OrderHandler struct {
	orders  ports.OrderAPI
	catalog ports.CatalogAPI
}

func NewOrderHandler(orders ports.OrderAPI, catalog ports.CatalogAPI) *OrderHandler {
	return &OrderHandler{orders: orders, catalog: catalog}
}

type orderItemRequest struct {
	MedicationID int64   `json:"medicationId" validate:"gt=0"`
	Quantity     int     `json:"quantity"     validate:"gte=1"`
	Price        float64 `json:"price"        validate:"gte=0"`
}

type createOrderRequest struct {
	Items []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type orderLinks struct {
	Tracking string `json:"tracking"`
}

type createOrderResponse struct {
	ID    int64      `json:"id"`
	Links orderLinks `json:"_links"`
}

type orderFormData struct {
	Medications []domain.Medication `json:"medications"`
}

type trackingData struct {
	Orders []domain.Order `json:"orders"`
	Total  int            `json:"total"`
}

// OrderForm handles GET /order.
//
// @Summary      Order builder
// @Tags         client
// @Produce      json
// @Success      200  {object}  view.Page
// @Router       /order [get]
func (h *OrderHandler) OrderForm(c echo.Context) error {
	page, err := h.catalog.ListMedications(c.Request().Context(), domain.MedicationQuery{Size: orderBuilderSize})
	if err != nil {
		return err
	}
	return render(c, view.LayoutClient, "New order", orderFormData{Medications: page.Content})
}

// Create handles POST /order for the logged-in client.
//
// @Summary      Place an order
// @Tags         client
// @Accept       json
// @Produce      json
// @Param        body  body      createOrderRequest  true  "Order lines"
// @Success      201   {object}  createOrderResponse
// @Failure      422   {object}  errorResponse
// @Router       /order [post]
func (h *OrderHandler) Create(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.OrderItem{MedicationID: it.MedicationID, Quantity: it.Quantity, Price: it.Price})
	}

	created, err := h.orders.CreateOrder(c.Request().Context(), user.ID, items)
	if err != nil {
		return err
	}

	id := strconv.FormatInt(created.ID, 10)
	return c.JSON(http.StatusCreated, createOrderResponse{
		ID:    created.ID,
		Links: orderLinks{Tracking: "/tracking/" + id},
	})
}

// Tracking handles GET /tracking. Filters are applied locally.
//
// @Summary      Order tracking
// @Tags         client
// @Produce      json
// @Param        status  query     string  false  "in_progress, completed or canceled"
// @Param        q       query     string  false  "Order id fragment"
// @Param        from    query     string  false  "Earliest order date (YYYY-MM-DD)"
// @Param        to      query     string  false  "Latest order date (YYYY-MM-DD)"
// @Success      200     {object}  view.Page
// @Router       /tracking [get]
func (h *OrderHandler) Tracking(c echo.Context) error {
	orders, err := h.orders.ListOrders(c.Request().Context())
	if err != nil {
		return err
	}

	status := c.QueryParam("status")
	q := strings.TrimSpace(c.QueryParam("q"))
	window := dateWindowFrom(c)

	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if status != "" && o.Status != status {
			continue
		}
		if q != "" && !strings.Contains(strconv.FormatInt(o.ID, 10), q) {
			continue
		}
		if !window.contains(o.Date) {
			continue
		}
		out = append(out, o)
	}
	return render(c, view.LayoutClient, "Tracking", trackingData{Orders: out, Total: len(out)})
}

// TrackingDetail handles GET /tracking/:id.
//
// @Summary      One tracked order
// @Tags         client
// @Produce      json
// @Param        id   path      int  true  "Order id"
// @Success      200  {object}  view.Page
// @Failure      404  {object}  errorResponse
// @Router       /tracking/{id} [get]
func (h *OrderHandler) TrackingDetail(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	order, err := h.orders.GetOrder(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return render(c, view.LayoutClient, "Order "+c.Param("id"), order)
}

// dateWindow is an inclusive day range; zero bounds are open.
type dateWindow struct {
	from, to time.Time
}

func dateWindowFrom(c echo.Context) dateWindow {
	var w dateWindow
	if t, err := time.Parse(time.DateOnly, c.QueryParam("from")); err == nil {
		w.from = t
	}
	if t, err := time.Parse(time.DateOnly, c.QueryParam("to")); err == nil {
		w.to = t.Add(24*time.Hour - time.Nanosecond)
	}
	return w
}

func (w dateWindow) contains(date string) bool {
	if w.from.IsZero() && w.to.IsZero() {
		return true
	}
	t, ok := parseOrderDate(date)
	if !ok {
		return false
	}
	if !w.from.IsZero() && t.Before(w.from) {
		return false
	}
	if !w.to.IsZero() && t.After(w.to) {
		return false
	}
	return true
}

var orderDateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", time.DateTime, time.DateOnly}

func parseOrderDate(s string) (time.Time, bool) {
	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
