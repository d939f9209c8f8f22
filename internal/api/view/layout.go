// Package view shapes page responses: every guarded page is wrapped in the
// layout of its audience (client, admin or service achat), which carries the
// sidebar entries and the header user.
package view

import (
	"strings"

	"github.com/soremed/portal/internal/core/domain"
)

// Layout names.
const (
	LayoutPublic       = "public"
	LayoutClient       = "client"
	LayoutAdmin        = "admin"
	LayoutServiceAchat = "service_achat"
)

// NavItem is one sidebar entry.
type NavItem struct {
	Label  string `json:"label"`
	Path   string `json:"path"`
	Active bool   `json:"active"`
}

// Page is the envelope every page handler answers with.
type Page struct {
	Layout string       `json:"layout"`
	Title  string       `json:"title"`
	Nav    []NavItem    `json:"nav,omitempty"`
	User   *domain.User `json:"user,omitempty"`
	Data   any          `json:"data"`
}

var navs = map[string][]NavItem{
	LayoutClient: {
		{Label: "Home", Path: "/"},
		{Label: "Order", Path: "/order"},
		{Label: "Tracking", Path: "/tracking"},
		{Label: "Dashboard", Path: "/dashboard"},
		{Label: "News", Path: "/news"},
	},
	LayoutAdmin: {
		{Label: "Dashboard", Path: "/admin"},
		{Label: "Users", Path: "/admin/users"},
		{Label: "Catalog", Path: "/admin/catalog"},
		{Label: "Orders", Path: "/admin/orders"},
		{Label: "News", Path: "/admin/news"},
		{Label: "Notifications", Path: "/admin/notifications"},
	},
	LayoutServiceAchat: {
		{Label: "Dashboard", Path: "/achat"},
		{Label: "Catalog", Path: "/achat/catalog"},
		{Label: "Orders", Path: "/achat/orders"},
		{Label: "News", Path: "/achat/news"},
	},
}

// roots only match exactly; every other entry also matches its sub-paths.
var roots = map[string]bool{"/": true, "/admin": true, "/achat": true}

// New wraps data in the given layout. path is the request path and decides
// which sidebar entry is active.
func New(layout, title string, user *domain.User, path string, data any) Page {
	return Page{
		Layout: layout,
		Title:  title,
		Nav:    Nav(layout, path),
		User:   user,
		Data:   data,
	}
}

// Nav returns a fresh copy of the layout's sidebar with at most one entry active.
func Nav(layout, path string) []NavItem {
	base := navs[layout]
	if len(base) == 0 {
		return nil
	}

	items := make([]NavItem, len(base))
	copy(items, base)
	for i := range items {
		if matches(items[i].Path, path) {
			items[i].Active = true
			break
		}
	}
	return items
}

func matches(item, path string) bool {
	if path == item {
		return true
	}
	return !roots[item] && strings.HasPrefix(path, item+"/")
}

// LayoutFor returns the layout a user lands in after login.
func LayoutFor(u *domain.User) string {
	switch {
	case u.HasRole(domain.RoleAdmin):
		return LayoutAdmin
	case u.HasRole(domain.RoleServiceAchat):
		return LayoutServiceAchat
	case u != nil:
		return LayoutClient
	default:
		return LayoutPublic
	}
}

// HomePath returns the landing page of a layout.
func HomePath(layout string) string {
	switch layout {
	case LayoutAdmin:
		return "/admin"
	case LayoutServiceAchat:
		return "/achat"
	default:
		return "/"
	}
}
