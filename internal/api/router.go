package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/soremed/portal/docs"
	"github.com/soremed/portal/internal/api/handler"
	"github.com/soremed/portal/internal/api/middleware"
	"github.com/soremed/portal/internal/core/ports"
)

// Dependencies is everything the router wires into handlers.
type Dependencies struct {
	Backend      ports.PortalAPI
	Sessions     *middleware.Sessions
	Guards       *middleware.Guards
	LoginLimiter *middleware.RateLimiter
	Health       map[string]handler.Pinger
	// Registerer receives the HTTP metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.BodyLimit("10M"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "portal",
		Subsystem:  "http",
		Registerer: registerer,
		Skipper:    skipInfra,
	}))

	// --- Handlers ---
	api := deps.Backend
	authHandler := handler.NewAuthHandler(deps.Sessions, api, deps.Log)
	catalogHandler := handler.NewCatalogHandler(api)
	orderHandler := handler.NewOrderHandler(api, api)
	adminOrderHandler := handler.NewAdminOrderHandler(api, deps.Log)
	dashboardHandler := handler.NewDashboardHandler(api, api, api, api)
	newsHandler := handler.NewNewsHandler(api, api)
	notificationHandler := handler.NewNotificationHandler(api)
	userHandler := handler.NewUserHandler(api, deps.Log)
	healthHandler := handler.NewHealthHandler(deps.Health)

	// --- Public routes ---
	session := deps.Sessions.Middleware()
	e.GET("/login", authHandler.LoginPage, session)
	e.POST("/login", authHandler.Login, deps.LoginLimiter.Middleware())
	e.POST("/logout", authHandler.Logout, session)
	e.POST("/register", authHandler.Register, deps.LoginLimiter.Middleware())

	// --- Client layout ---
	auth := deps.Guards.RequireAuth()
	e.GET("/", catalogHandler.Home, auth)
	e.GET("/order", orderHandler.OrderForm, auth)
	e.POST("/order", orderHandler.Create, auth)
	e.GET("/tracking", orderHandler.Tracking, auth)
	e.GET("/tracking/:id", orderHandler.TrackingDetail, auth)
	e.GET("/dashboard", dashboardHandler.Client, auth)
	e.GET("/news", newsHandler.Client, auth)
	e.GET("/notifications", notificationHandler.Client, auth)
	e.PUT("/notifications/:id/read", notificationHandler.ClientMarkRead, auth)
	e.DELETE("/notifications/:id", notificationHandler.ClientDelete, auth)

	// --- Admin layout ---
	admin := e.Group("/admin", deps.Guards.RequireAdmin())
	admin.GET("", dashboardHandler.Admin)
	admin.GET("/catalog", catalogHandler.AdminList)
	admin.POST("/catalog", catalogHandler.Create)
	admin.PUT("/catalog/:id", catalogHandler.Update)
	admin.DELETE("/catalog/:id", catalogHandler.Delete)
	admin.GET("/orders", adminOrderHandler.AdminList)
	admin.GET("/orders/export", adminOrderHandler.Export)
	admin.PUT("/orders/:id/status", adminOrderHandler.UpdateStatus)
	admin.GET("/users", userHandler.List)
	admin.POST("/users", userHandler.Create)
	admin.PUT("/users/:id/role", userHandler.ChangeRole)
	admin.DELETE("/users/:id", userHandler.Delete)
	admin.GET("/news", newsHandler.AdminList)
	admin.POST("/news", newsHandler.Create)
	admin.PUT("/news/:id", newsHandler.Update)
	admin.DELETE("/news/:id", newsHandler.Delete)
	admin.GET("/notifications", notificationHandler.Admin)
	admin.GET("/notifications/settings", notificationHandler.Settings)
	admin.PUT("/notifications/settings", notificationHandler.UpdateSettings)
	admin.PUT("/notifications/:id/read", notificationHandler.AdminMarkRead)
	admin.DELETE("/notifications/:id", notificationHandler.AdminDelete)

	// --- Service achat layout ---
	achat := e.Group("/achat", deps.Guards.RequireServiceAchat())
	achat.GET("", dashboardHandler.Achat)
	achat.GET("/catalog", catalogHandler.AchatList)
	achat.GET("/orders", adminOrderHandler.AchatList)
	achat.PUT("/orders/:id/status", adminOrderHandler.UpdateStatus)
	achat.GET("/news", newsHandler.AchatList)

	// --- Infrastructure (no session) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func skipInfra(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == "/metrics" || strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/swagger")
}

// requestLogger logs one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		Skipper:      skipInfra,
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= 500 {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
