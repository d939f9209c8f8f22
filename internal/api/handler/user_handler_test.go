package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/soremed/portal/internal/core/domain"
)

func TestUserHandler_List(t *testing.T) {
	users := make([]domain.UserAccount, 0, 14)
	for i := 1; i <= 14; i++ {
		users = append(users, domain.UserAccount{ID: int64(i), Username: fmt.Sprintf("pharma%02d", i), Role: domain.RoleClient})
	}
	users = append(users, domain.UserAccount{ID: 99, Username: "Root", Role: domain.RoleAdmin})
	stub := &stubPortal{users: users}
	h := NewUserHandler(stub, zerolog.Nop())

	c, rec := newContext(http.MethodGet, "/admin/users?page=2", "", adminUser)
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	d := decodePage[usersData](t, rec.Body.Bytes()).Data
	if d.Total != 15 || d.TotalPages != 2 || len(d.Users) != 5 || d.Page != 2 {
		t.Fatalf("unexpected page: %+v", d)
	}

	c, rec = newContext(http.MethodGet, "/admin/users?page=922337203685477581", "", adminUser)
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	d = decodePage[usersData](t, rec.Body.Bytes()).Data
	if d.Total != 15 || len(d.Users) != 0 {
		t.Fatalf("expected an empty page past the end, got %+v", d)
	}

	c, rec = newContext(http.MethodGet, "/admin/users?search=ROOT", "", adminUser)
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	d = decodePage[usersData](t, rec.Body.Bytes()).Data
	if d.Total != 1 || d.Users[0].ID != 99 {
		t.Fatalf("unexpected search result: %+v", d)
	}
}

func TestUserHandler_Create(t *testing.T) {
	stub := &stubPortal{}
	h := NewUserHandler(stub, zerolog.Nop())

	c, rec := newContext(http.MethodPost, "/admin/users", `{"username":" buyer ","password":"secret","role":"SERVICE_ACHAT"}`, adminUser)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if stub.createdUser == nil || stub.createdUser.Username != "buyer" || stub.createdUser.Role != domain.RoleServiceAchat {
		t.Fatalf("unexpected account: %+v", stub.createdUser)
	}

	c, _ = newContext(http.MethodPost, "/admin/users", `{"username":"x","password":"secret","role":"ROOT"}`, adminUser)
	if code := httpCode(t, h.Create(c)); code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown role: expected 422, got %d", code)
	}

	h = NewUserHandler(&stubPortal{err: domain.ErrConflict}, zerolog.Nop())
	c, _ = newContext(http.MethodPost, "/admin/users", `{"username":"x","password":"secret","role":"CLIENT"}`, adminUser)
	if err := h.Create(c); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUserHandler_ChangeRole(t *testing.T) {
	stub := &stubPortal{}
	h := NewUserHandler(stub, zerolog.Nop())

	c, rec := newContext(http.MethodPut, "/admin/users/5/role", `{"role":"ADMIN"}`, adminUser)
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := h.ChangeRole(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || stub.roleChanges[5] != domain.RoleAdmin {
		t.Fatalf("unexpected result: %d %+v", rec.Code, stub.roleChanges)
	}

	c, _ = newContext(http.MethodPut, "/admin/users/2/role", `{"role":"CLIENT"}`, adminUser)
	c.SetParamNames("id")
	c.SetParamValues("2")
	if code := httpCode(t, h.ChangeRole(c)); code != http.StatusUnprocessableEntity {
		t.Fatalf("self demotion: expected 422, got %d", code)
	}
	if _, ok := stub.roleChanges[2]; ok {
		t.Fatalf("self demotion must not reach the backend")
	}
}

func TestUserHandler_Delete(t *testing.T) {
	stub := &stubPortal{}
	h := NewUserHandler(stub, zerolog.Nop())

	c, rec := newContext(http.MethodDelete, "/admin/users/8", "", adminUser)
	c.SetParamNames("id")
	c.SetParamValues("8")
	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || len(stub.deleted) != 1 || stub.deleted[0] != 8 {
		t.Fatalf("unexpected result: %d %+v", rec.Code, stub.deleted)
	}

	c, _ = newContext(http.MethodDelete, "/admin/users/2", "", adminUser)
	c.SetParamNames("id")
	c.SetParamValues("2")
	if code := httpCode(t, h.Delete(c)); code != http.StatusUnprocessableEntity {
		t.Fatalf("self delete: expected 422, got %d", code)
	}
}
