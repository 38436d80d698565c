package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/sowrin-paul/uiu-healthcare-portal/docs"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/api/handler"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/api/middleware"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/access"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/domain"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/service"
)

// Deps bundles everything the router wires together. Verifier and the
// database handles are optional: Verifier exists only in local mode, Mongo
// only in local mode, Redis only when the session store is Redis-backed.
type Deps struct {
	Sessions *service.SessionManager
	Auth     handler.AvailabilityChecker
	Verifier handler.Verifier
	Mongo    *mongo.Database
	Redis    *redis.Client
	Log      zerolog.Logger
}

const loginPath = "/login"

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("healthcare_portal"))

	// --- Public screens ---
	screens := handler.NewScreenHandler()
	e.GET("/", screens.Index)
	e.GET(loginPath, screens.Login)
	e.GET("/register", screens.Register)

	// --- Auth operations ---
	authHandler := handler.NewAuthHandler(deps.Sessions, deps.Auth)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/session", authHandler.Session)
	e.POST("/auth/refresh", authHandler.Refresh)
	e.PATCH("/auth/profile", authHandler.UpdateProfile)
	e.GET("/auth/availability", authHandler.Availability)

	if deps.Verifier != nil {
		verification := handler.NewVerificationHandler(deps.Verifier)
		e.POST("/auth/verify/confirm", verification.Confirm)
	}

	// --- Guarded dashboards ---
	dashboards := handler.NewDashboardHandler(deps.Sessions)
	e.GET("/dashboard/student", dashboards.Student,
		middleware.Guard(deps.Sessions, access.NewRequirement(loginPath, domain.RoleStudent)))
	e.GET("/dashboard/staff", dashboards.Staff,
		middleware.Guard(deps.Sessions, access.NewRequirement(loginPath, domain.RoleStaff)))
	e.GET("/dashboard/doctor", dashboards.Doctor,
		middleware.Guard(deps.Sessions, access.NewRequirement(loginPath, domain.RoleDoctor)))
	e.GET("/dashboard/admin", dashboards.Admin,
		middleware.Guard(deps.Sessions, access.NewRequirement(loginPath, domain.RoleAdmin)))

	// --- Appointments: any authenticated, verified role ---
	appointments := handler.NewAppointmentHandler(deps.Sessions)
	apptGuard := middleware.Guard(deps.Sessions, access.NewRequirement(loginPath))
	e.GET("/appointments", appointments.List, apptGuard)
	e.POST("/appointments", appointments.Book, apptGuard)

	// --- Health probes (no auth required) ---
	health := handler.NewHealthHandler()
	readiness := handler.NewReadinessHandler(deps.Mongo, deps.Redis)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", readiness.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
