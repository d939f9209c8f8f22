package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/soremed/portal/internal/api/view"
	"github.com/soremed/portal/internal/core/domain"
	"github.com/soremed/portal/internal/core/ports"
)

const ordersPerPage = 10

// AdminOrderHandler serves back-office order handling to admins and to the
// purchasing service.
type AdminOrderHandler struct {
	orders ports.OrderAPI
	log    zerolog.Logger
}

func NewAdminOrderHandler(orders ports.OrderAPI, log zerolog.Logger) *AdminOrderHandler {
	return &AdminOrderHandler{orders: orders, log: log}
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required,order_status"`
}

type adminOrdersData struct {
	Orders     []domain.AdminOrder `json:"orders"`
	Page       int                 `json:"page"`
	TotalPages int                 `json:"totalPages"`
	Total      int                 `json:"total"`
}

// AdminList handles GET /admin/orders.
//
// @Summary      Back-office orders
// @Tags         admin
// @Produce      json
// @Param        search  query     string  false  "Order id or username fragment"
// @Param        from    query     string  false  "Earliest order date (YYYY-MM-DD)"
// @Param        to      query     string  false  "Latest order date (YYYY-MM-DD)"
// @Param        page    query     int     false  "1-based page"
// @Success      200     {object}  view.Page
// @Router       /admin/orders [get]
func (h *AdminOrderHandler) AdminList(c echo.Context) error {
	data, err := h.list(c)
	if err != nil {
		return err
	}
	return render(c, view.LayoutAdmin, "Orders", data)
}

// AchatList handles GET /achat/orders.
//
// @Summary      Purchasing orders
// @Tags         achat
// @Produce      json
// @Param        search  query     string  false  "Order id or username fragment"
// @Param        page    query     int     false  "1-based page"
// @Success      200     {object}  view.Page
// @Router       /achat/orders [get]
func (h *AdminOrderHandler) AchatList(c echo.Context) error {
	data, err := h.list(c)
	if err != nil {
		return err
	}
	return render(c, view.LayoutServiceAchat, "Orders", data)
}

func (h *AdminOrderHandler) list(c echo.Context) (*adminOrdersData, error) {
	orders, err := h.orders.ListAdminOrders(c.Request().Context())
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(c.QueryParam("search")))
	window := dateWindowFrom(c)

	filtered := make([]domain.AdminOrder, 0, len(orders))
	for _, o := range orders {
		if search != "" &&
			!strings.Contains(strings.ToLower(o.ID), search) &&
			!strings.Contains(strings.ToLower(o.Username), search) {
			continue
		}
		if !window.contains(o.OrderDate) {
			continue
		}
		filtered = append(filtered, o)
	}

	total := len(filtered)
	totalPages := (total + ordersPerPage - 1) / ordersPerPage
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}

	start, end := pageBounds(page, ordersPerPage, total)
	return &adminOrdersData{
		Orders:     filtered[start:end],
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	}, nil
}

// UpdateStatus handles PUT /admin/orders/:id/status and PUT /achat/orders/:id/status.
//
// @Summary      Change an order status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Order id"
// @Param        body  body      orderStatusRequest  true  "New status"
// @Success      200   {object}  messageResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin/orders/{id}/status [put]
func (h *AdminOrderHandler) UpdateStatus(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req orderStatusRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	if err := h.orders.UpdateOrderStatus(c.Request().Context(), id, req.Status); err != nil {
		return err
	}
	evt := h.log.Info().Str("order", id).Str("status", req.Status)
	if u, err := currentUser(c); err == nil {
		evt = evt.Str("by", u.Username)
	}
	evt.Msg("order status changed")
	return c.JSON(http.StatusOK, messageResponse{Message: "status updated"})
}

// Export handles GET /admin/orders/export by streaming the backend export.
//
// @Summary      Export orders
// @Tags         admin
// @Produce      text/csv
// @Success      200
// @Router       /admin/orders/export [get]
func (h *AdminOrderHandler) Export(c echo.Context) error {
	body, contentType, err := h.orders.ExportOrders(c.Request().Context())
	if err != nil {
		return err
	}
	defer body.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.csv"`)
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().WriteHeader(http.StatusOK)
	if _, err := io.Copy(c.Response(), body); err != nil {
		h.log.Warn().Err(err).Msg("order export interrupted")
	}
	return nil
}
