package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/soremed/portal/internal/api/view"
	"github.com/soremed/portal/internal/core/domain"
	"github.com/soremed/portal/internal/core/ports"
)

// NotificationHandler serves the client and admin notification bells and the
// admin notification settings.
type NotificationHandler struct {
	notifications ports.NotificationAPI
}

func NewNotificationHandler(notifications ports.NotificationAPI) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

type notificationsData struct {
	Notifications []domain.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

type settingsRequest struct {
	LowStock            bool `json:"lowStock"`
	NewOrder            bool `json:"newOrder"`
	OrderStatusChange   bool `json:"orderStatusChange"`
	NewUser             bool `json:"newUser"`
	SystemUpdates       bool `json:"systemUpdates"`
	LowStockThreshold   int  `json:"lowStockThreshold"   validate:"gte=0"`
	OrderDelayThreshold int  `json:"orderDelayThreshold" validate:"gte=0"`
}

func newNotificationsData(list []domain.Notification) notificationsData {
	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}
	return notificationsData{Notifications: list, Unread: unread}
}

// Client handles GET /notifications.
//
// @Summary      Client notifications
// @Tags         client
// @Produce      json
// @Success      200  {object}  view.Page
// @Router       /notifications [get]
func (h *NotificationHandler) Client(c echo.Context) error {
	list, err := h.notifications.ClientNotifications(c.Request().Context())
	if err != nil {
		return err
	}
	return render(c, view.LayoutClient, "Notifications", newNotificationsData(list))
}

// ClientMarkRead handles PUT /notifications/:id/read.
//
// @Summary      Mark a client notification read
// @Tags         client
// @Param        id  path  int  true  "Notification id"
// @Success      204
// @Router       /notifications/{id}/read [put]
func (h *NotificationHandler) ClientMarkRead(c echo.Context) error {
	return h.byID(c, h.notifications.MarkClientNotificationRead)
}

// ClientDelete handles DELETE /notifications/:id.
//
// @Summary      Delete a client notification
// @Tags         client
// @Param        id  path  int  true  "Notification id"
// @Success      204
// @Router       /notifications/{id} [delete]
func (h *NotificationHandler) ClientDelete(c echo.Context) error {
	return h.byID(c, h.notifications.DeleteClientNotification)
}

// Admin handles GET /admin/notifications.
//
// @Summary      Recent back-office notifications
// @Tags         admin
// @Produce      json
// @Success      200  {object}  view.Page
// @Router       /admin/notifications [get]
func (h *NotificationHandler) Admin(c echo.Context) error {
	list, err := h.notifications.RecentAdminNotifications(c.Request().Context())
	if err != nil {
		return err
	}
	return render(c, view.LayoutAdmin, "Notifications", newNotificationsData(list))
}

// AdminMarkRead handles PUT /admin/notifications/:id/read.
//
// @Summary      Mark a back-office notification read
// @Tags         admin
// @Param        id  path  int  true  "Notification id"
// @Success      204
// @Router       /admin/notifications/{id}/read [put]
func (h *NotificationHandler) AdminMarkRead(c echo.Context) error {
	return h.byID(c, h.notifications.MarkAdminNotificationRead)
}

// AdminDelete handles DELETE /admin/notifications/:id.
//
// @Summary      Delete a back-office notification
// @Tags         admin
// @Param        id  path  int  true  "Notification id"
// @Success      204
// @Router       /admin/notifications/{id} [delete]
func (h *NotificationHandler) AdminDelete(c echo.Context) error {
	return h.byID(c, h.notifications.DeleteAdminNotification)
}

// Settings handles GET /admin/notifications/settings.
//
// @Summary      Notification settings
// @Tags         admin
// @Produce      json
// @Success      200  {object}  view.Page
// @Router       /admin/notifications/settings [get]
func (h *NotificationHandler) Settings(c echo.Context) error {
	s, err := h.notifications.NotificationSettings(c.Request().Context())
	if err != nil {
		return err
	}
	return render(c, view.LayoutAdmin, "Notification settings", s)
}

// UpdateSettings handles PUT /admin/notifications/settings.
//
// @Summary      Update notification settings
// @Tags         admin
// @Accept       json
// @Param        body  body  settingsRequest  true  "Settings"
// @Success      204
// @Failure      422  {object}  errorResponse
// @Router       /admin/notifications/settings [put]
func (h *NotificationHandler) UpdateSettings(c echo.Context) error {
	var req settingsRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	err := h.notifications.UpdateNotificationSettings(c.Request().Context(), domain.NotificationSettings{
		LowStock:            req.LowStock,
		NewOrder:            req.NewOrder,
		OrderStatusChange:   req.OrderStatusChange,
		NewUser:             req.NewUser,
		SystemUpdates:       req.SystemUpdates,
		LowStockThreshold:   req.LowStockThreshold,
		OrderDelayThreshold: req.OrderDelayThreshold,
	})
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) byID(c echo.Context, fn func(ctx context.Context, id int64) error) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := fn(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
