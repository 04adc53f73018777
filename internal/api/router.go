package api

import (
	"net"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/taskflow/task-manager/docs"
	"github.com/taskflow/task-manager/internal/api/handler"
	"github.com/taskflow/task-manager/internal/api/middleware"
	"github.com/taskflow/task-manager/internal/core/domain"
	"github.com/taskflow/task-manager/internal/core/ports"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Auth       ports.AuthService
	Categories ports.CategoryService
	Tasks      ports.TaskService
	JWTSecret  string

	// Limiter throttles /auth routes. Nil disables rate limiting.
	Limiter middleware.Limiter
	// TrustedProxies are the networks allowed to set X-Forwarded-For. With
	// none, the client IP is the connection's remote address.
	TrustedProxies []*net.IPNet
	// HealthChecks are pinged by /health/ready, keyed by dependency name.
	HealthChecks map[string]handler.HealthCheck
	Logger       zerolog.Logger
	// Registry receives the HTTP metrics and backs /metrics. Nil uses the
	// Prometheus default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)
	e.IPExtractor = ipExtractor(d.TrustedProxies)

	promMW := echoprometheus.MiddlewareConfig{Subsystem: "http"}
	promHandler := echoprometheus.HandlerConfig{}
	if d.Registry != nil {
		promMW.Registerer = d.Registry
		promHandler.Gatherer = d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(promMW))

	// --- Operational endpoints (no auth required) ---
	health := handler.NewHealthHandler(d.HealthChecks)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(promHandler))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	auth := e.Group("/auth")
	if d.Limiter != nil {
		auth.Use(middleware.RateLimit(d.Limiter, d.Logger))
	}
	auth.POST("/register", authHandler.Register)
	auth.POST("/verify-email", authHandler.VerifyEmail)
	auth.POST("/login", authHandler.Login)

	// --- Owner-scoped resources ---
	protected := []echo.MiddlewareFunc{
		middleware.Auth(d.JWTSecret),
		middleware.RBAC(domain.RoleUser, domain.RoleAdmin),
	}

	categoryHandler := handler.NewCategoryHandler(d.Categories)
	categories := e.Group("/categories", protected...)
	categories.GET("", categoryHandler.List)
	categories.POST("", categoryHandler.Create)
	categories.PATCH("/:id", categoryHandler.Rename)
	categories.DELETE("/:id", categoryHandler.Delete)

	taskHandler := handler.NewTaskHandler(d.Tasks)
	tasks := e.Group("/tasks", protected...)
	tasks.GET("", taskHandler.List)
	tasks.POST("", taskHandler.Create)
	tasks.GET("/stats", taskHandler.Stats)
	tasks.GET("/calendar", taskHandler.Calendar)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PATCH("/:id", taskHandler.Patch)
	tasks.DELETE("/:id", taskHandler.Delete)

	return e
}

// ipExtractor decides what c.RealIP returns, and so what the rate limiter
// keys on. Forwarding headers are honoured only from trusted proxies.
func ipExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range trusted {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}
