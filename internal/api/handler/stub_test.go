package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/soremed/portal/internal/api/middleware"
	"github.com/soremed/portal/internal/core/domain"
	"github.com/soremed/portal/internal/core/ports"
	"github.com/soremed/portal/internal/core/service"
	"github.com/soremed/portal/internal/infrastructure/db/memory"
)

// stubPortal is a canned backend. Every call fails with err when it is set.
type stubPortal struct {
	mu  sync.Mutex
	err error

	meFn       func(ctx context.Context) (*domain.User, error)
	loginFn    func(ctx context.Context, username, password string) (*ports.LoginResult, error)
	registered []domain.Registration
	logouts    int

	medPage     *domain.MedicationPage
	medQueries  []domain.MedicationQuery
	medStats    *domain.MedicationStats
	medications []domain.Medication

	orders        []domain.Order
	createdItems  []domain.OrderItem
	createdFor    int64
	adminOrders   []domain.AdminOrder
	statusUpdates map[string]string
	export        string

	topProducts  []domain.TopProduct
	distribution []domain.OrderStatusCount

	news       []domain.News
	savedNews  []domain.News
	newsImage  string
	newsImgSrc string

	notifications []domain.Notification
	touched       []int64
	settings      *domain.NotificationSettings

	users       []domain.UserAccount
	createdUser *domain.NewUserAccount
	roleChanges map[int64]string
	deleted     []int64
}

var _ ports.PortalAPI = (*stubPortal)(nil)

func (s *stubPortal) Me(ctx context.Context) (*domain.User, error) {
	if s.meFn == nil {
		return nil, domain.ErrUnauthorized
	}
	return s.meFn(ctx)
}

func (s *stubPortal) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if s.loginFn == nil {
		return nil, domain.ErrUnauthorized
	}
	return s.loginFn(ctx, username, password)
}

func (s *stubPortal) Logout(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logouts++
	return s.err
}

func (s *stubPortal) Register(_ context.Context, reg domain.Registration) error {
	if s.err != nil {
		return s.err
	}
	s.registered = append(s.registered, reg)
	return nil
}

func (s *stubPortal) ListMedications(_ context.Context, q domain.MedicationQuery) (*domain.MedicationPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.medQueries = append(s.medQueries, q)
	if s.err != nil {
		return nil, s.err
	}
	if s.medPage == nil {
		return &domain.MedicationPage{}, nil
	}
	return s.medPage, nil
}

func (s *stubPortal) MedicationStats(context.Context) (*domain.MedicationStats, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.medStats, nil
}

func (s *stubPortal) CreateMedication(_ context.Context, m domain.Medication) (*domain.Medication, error) {
	if s.err != nil {
		return nil, s.err
	}
	m.ID = int64(len(s.medications) + 1)
	s.medications = append(s.medications, m)
	return &m, nil
}

func (s *stubPortal) UpdateMedication(_ context.Context, id int64, m domain.Medication) (*domain.Medication, error) {
	if s.err != nil {
		return nil, s.err
	}
	m.ID = id
	s.medications = append(s.medications, m)
	return &m, nil
}

func (s *stubPortal) DeleteMedication(_ context.Context, id int64) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubPortal) ListOrders(context.Context) ([]domain.Order, error) {
	return s.orders, s.err
}

func (s *stubPortal) GetOrder(_ context.Context, id int64) (*domain.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, o := range s.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubPortal) CreateOrder(_ context.Context, userID int64, items []domain.OrderItem) (*domain.CreatedOrder, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.createdFor = userID
	s.createdItems = items
	return &domain.CreatedOrder{ID: 77}, nil
}

func (s *stubPortal) ListAdminOrders(context.Context) ([]domain.AdminOrder, error) {
	return s.adminOrders, s.err
}

func (s *stubPortal) UpdateOrderStatus(_ context.Context, id, status string) error {
	if s.err != nil {
		return s.err
	}
	if s.statusUpdates == nil {
		s.statusUpdates = make(map[string]string)
	}
	s.statusUpdates[id] = status
	return nil
}

func (s *stubPortal) ExportOrders(context.Context) (io.ReadCloser, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return io.NopCloser(strings.NewReader(s.export)), "text/csv", nil
}

func (s *stubPortal) TopProducts(context.Context) ([]domain.TopProduct, error) {
	return s.topProducts, s.err
}

func (s *stubPortal) StatusDistribution(context.Context) ([]domain.OrderStatusCount, error) {
	return s.distribution, s.err
}

func (s *stubPortal) ListNews(context.Context) ([]domain.News, error) {
	return s.news, s.err
}

func (s *stubPortal) CreateNews(_ context.Context, n domain.News, image *ports.NewsImage) (*domain.News, error) {
	if s.err != nil {
		return nil, s.err
	}
	if image != nil {
		b, err := io.ReadAll(image.Content)
		if err != nil {
			return nil, err
		}
		s.newsImage = image.Filename
		s.newsImgSrc = string(b)
	}
	n.ID = 5
	s.savedNews = append(s.savedNews, n)
	return &n, nil
}

func (s *stubPortal) UpdateNews(_ context.Context, id int64, n domain.News) (*domain.News, error) {
	if s.err != nil {
		return nil, s.err
	}
	n.ID = id
	s.savedNews = append(s.savedNews, n)
	return &n, nil
}

func (s *stubPortal) DeleteNews(_ context.Context, id int64) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubPortal) ClientNotifications(context.Context) ([]domain.Notification, error) {
	return s.notifications, s.err
}

func (s *stubPortal) MarkClientNotificationRead(_ context.Context, id int64) error {
	return s.touch(id)
}

func (s *stubPortal) DeleteClientNotification(_ context.Context, id int64) error {
	return s.touch(id)
}

func (s *stubPortal) RecentAdminNotifications(context.Context) ([]domain.Notification, error) {
	return s.notifications, s.err
}

func (s *stubPortal) MarkAdminNotificationRead(_ context.Context, id int64) error {
	return s.touch(id)
}

func (s *stubPortal) DeleteAdminNotification(_ context.Context, id int64) error {
	return s.touch(id)
}

func (s *stubPortal) NotificationSettings(context.Context) (*domain.NotificationSettings, error) {
	return s.settings, s.err
}

func (s *stubPortal) UpdateNotificationSettings(_ context.Context, ns domain.NotificationSettings) error {
	if s.err != nil {
		return s.err
	}
	s.settings = &ns
	return nil
}

func (s *stubPortal) touch(id int64) error {
	if s.err != nil {
		return s.err
	}
	s.touched = append(s.touched, id)
	return nil
}

func (s *stubPortal) ListUsers(context.Context) ([]domain.UserAccount, error) {
	return s.users, s.err
}

func (s *stubPortal) CreateUser(_ context.Context, u domain.NewUserAccount) (*domain.UserAccount, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.createdUser = &u
	return &domain.UserAccount{ID: 42, Username: u.Username, Role: u.Role}, nil
}

func (s *stubPortal) ChangeUserRole(_ context.Context, id int64, role string) error {
	if s.err != nil {
		return s.err
	}
	if s.roleChanges == nil {
		s.roleChanges = make(map[int64]string)
	}
	s.roleChanges[id] = role
	return nil
}

func (s *stubPortal) DeleteUser(_ context.Context, id int64) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, id)
	return nil
}

// newContext builds an echo context carrying the validator the router installs.
// A non-nil user is placed on the context the way a guard does.
func newContext(method, target, body string, user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(middleware.UserContextKey, user)
	}
	return c, rec
}

// newSessions returns request-scoped session resolution over an in-memory store.
func newSessions(t *testing.T, auth ports.AuthAPI) (*middleware.Sessions, *memory.CredentialStore) {
	t.Helper()
	creds := memory.NewCredentialStore()
	registry := service.NewSessionRegistry(creds, auth, service.SessionOptions{Scheme: domain.SchemeBasic}, 0, zerolog.Nop())
	t.Cleanup(registry.Close)
	return middleware.NewSessions(registry, middleware.CookieConfig{Name: "soremed_session"}), creds
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	return he.Code
}

var (
	clientUser = &domain.User{ID: 1, Username: "pharma", Role: domain.RoleClient}
	adminUser  = &domain.User{ID: 2, Username: "root", Role: domain.RoleAdmin}
	achatUser  = &domain.User{ID: 3, Username: "buyer", Role: domain.RoleServiceAchat}
)
