package ports

import (
	"context"
	"io"

	"github.com/soremed/portal/internal/core/domain"
)

// CatalogAPI covers medication search and back-office catalog edits.
type CatalogAPI interface {
	ListMedications(ctx context.Context, q domain.MedicationQuery) (*domain.MedicationPage, error)
	MedicationStats(ctx context.Context) (*domain.MedicationStats, error)
	CreateMedication(ctx context.Context, m domain.Medication) (*domain.Medication, error)
	UpdateMedication(ctx context.Context, id int64, m domain.Medication) (*domain.Medication, error)
	DeleteMedication(ctx context.Context, id int64) error
}

// OrderAPI covers client orders and their back-office handling.
type OrderAPI interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	CreateOrder(ctx context.Context, userID int64, items []domain.OrderItem) (*domain.CreatedOrder, error)
	ListAdminOrders(ctx context.Context) ([]domain.AdminOrder, error)
	UpdateOrderStatus(ctx context.Context, id, status string) error
	// ExportOrders streams the backend CSV export. The caller closes the reader.
	ExportOrders(ctx context.Context) (io.ReadCloser, string, error)
}

// DashboardAPI feeds the client dashboard charts.
type DashboardAPI interface {
	TopProducts(ctx context.Context) ([]domain.TopProduct, error)
	StatusDistribution(ctx context.Context) ([]domain.OrderStatusCount, error)
}

// NewsImage is an optional picture attached to a news item.
type NewsImage struct {
	Filename string
	Content  io.Reader
}

// NewsAPI covers news reading and editing.
type NewsAPI interface {
	ListNews(ctx context.Context) ([]domain.News, error)
	CreateNews(ctx context.Context, n domain.News, image *NewsImage) (*domain.News, error)
	UpdateNews(ctx context.Context, id int64, n domain.News) (*domain.News, error)
	DeleteNews(ctx context.Context, id int64) error
}

// NotificationAPI covers both notification bells and the back-office settings.
type NotificationAPI interface {
	ClientNotifications(ctx context.Context) ([]domain.Notification, error)
	MarkClientNotificationRead(ctx context.Context, id int64) error
	DeleteClientNotification(ctx context.Context, id int64) error
	RecentAdminNotifications(ctx context.Context) ([]domain.Notification, error)
	MarkAdminNotificationRead(ctx context.Context, id int64) error
	DeleteAdminNotification(ctx context.Context, id int64) error
	NotificationSettings(ctx context.Context) (*domain.NotificationSettings, error)
	UpdateNotificationSettings(ctx context.Context, s domain.NotificationSettings) error
}

// UserAPI covers back-office user management.
type UserAPI interface {
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	CreateUser(ctx context.Context, u domain.NewUserAccount) (*domain.UserAccount, error)
	ChangeUserRole(ctx context.Context, id int64, role string) error
	DeleteUser(ctx context.Context, id int64) error
}

// PortalAPI is the whole backend surface the portal serves pages from.
type PortalAPI interface {
	AuthAPI
	CatalogAPI
	OrderAPI
	DashboardAPI
	NewsAPI
	NotificationAPI
	UserAPI
}
