package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/soremed/portal/internal/api/view"
	"github.com/soremed/portal/internal/core/domain"
)

func TestNotificationHandler_CountsUnread(t *testing.T) {
	stub := &stubPortal{notifications: []domain.Notification{
		{ID: 1, Read: true},
		{ID: 2},
		{ID: 3},
	}}
	h := NewNotificationHandler(stub)

	c, rec := newContext(http.MethodGet, "/notifications", "", clientUser)
	if err := h.Client(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	d := decodePage[notificationsData](t, rec.Body.Bytes()).Data
	if d.Unread != 2 || len(d.Notifications) != 3 {
		t.Fatalf("unexpected data: %+v", d)
	}

	c, rec = newContext(http.MethodGet, "/admin/notifications", "", adminUser)
	if err := h.Admin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if p := decodePage[notificationsData](t, rec.Body.Bytes()); p.Layout != view.LayoutAdmin {
		t.Fatalf("expected admin layout, got %q", p.Layout)
	}
}

func TestNotificationHandler_ByID(t *testing.T) {
	stub := &stubPortal{}
	h := NewNotificationHandler(stub)

	cases := []struct {
		id string
		fn echo.HandlerFunc
	}{
		{"4", h.ClientMarkRead},
		{"5", h.ClientDelete},
		{"6", h.AdminMarkRead},
		{"7", h.AdminDelete},
	}
	for _, tc := range cases {
		c, rec := newContext(http.MethodPut, "/notifications/"+tc.id, "", clientUser)
		c.SetParamNames("id")
		c.SetParamValues(tc.id)
		if err := tc.fn(c); err != nil {
			t.Fatalf("%s: handler error: %v", tc.id, err)
		}
		if rec.Code != http.StatusNoContent {
			t.Fatalf("%s: expected 204, got %d", tc.id, rec.Code)
		}
	}

	if len(stub.touched) != 4 || stub.touched[0] != 4 || stub.touched[3] != 7 {
		t.Fatalf("unexpected calls: %+v", stub.touched)
	}

	c, _ := newContext(http.MethodDelete, "/notifications/x", "", clientUser)
	c.SetParamNames("id")
	c.SetParamValues("x")
	if code := httpCode(t, h.ClientDelete(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestNotificationHandler_Settings(t *testing.T) {
	stub := &stubPortal{settings: &domain.NotificationSettings{ID: 1, LowStockThreshold: 10}}
	h := NewNotificationHandler(stub)

	c, rec := newContext(http.MethodGet, "/admin/notifications/settings", "", adminUser)
	if err := h.Settings(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if d := decodePage[domain.NotificationSettings](t, rec.Body.Bytes()).Data; d.LowStockThreshold != 10 {
		t.Fatalf("unexpected settings: %+v", d)
	}

	c, rec = newContext(http.MethodPut, "/admin/notifications/settings", `{"lowStock":true,"lowStockThreshold":5,"orderDelayThreshold":2}`, adminUser)
	if err := h.UpdateSettings(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if !stub.settings.LowStock || stub.settings.LowStockThreshold != 5 || stub.settings.OrderDelayThreshold != 2 {
		t.Fatalf("unexpected saved settings: %+v", stub.settings)
	}

	c, _ = newContext(http.MethodPut, "/admin/notifications/settings", `{"lowStockThreshold":-1}`, adminUser)
	if code := httpCode(t, h.UpdateSettings(c)); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
}

func TestNotificationHandler_BackendError(t *testing.T) {
	h := NewNotificationHandler(&stubPortal{err: domain.ErrNotFound})

	c, rec := newContext(http.MethodPut, "/admin/notifications/9/read", "", adminUser)
	c.SetParamNames("id")
	c.SetParamValues("9")
	if err := h.AdminMarkRead(c); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("nothing should be written on failure")
	}
}
