package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/housify/agent-platform/internal/api/handler"
	"github.com/housify/agent-platform/internal/api/middleware"
	"github.com/housify/agent-platform/internal/core/ports"
	"github.com/housify/agent-platform/internal/core/service"
	"github.com/housify/agent-platform/internal/infrastructure/config"
	mongodb "github.com/housify/agent-platform/internal/infrastructure/db/mongo"
	redisdb "github.com/housify/agent-platform/internal/infrastructure/db/redis"
	"github.com/housify/agent-platform/internal/infrastructure/http/handlers"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// rdb and mailer may be nil: the throttle and notifications degrade to no-ops.
func NewRouter(
	cfg *config.Config,
	db *mongo.Database,
	rdb *redis.Client,
	docs ports.DocumentStore,
	mailer ports.Mailer,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("housify"))

	// --- Dependencies ---
	adminRepo := mongodb.NewAdminRepository(db)
	agentRepo := mongodb.NewAgentRepository(db)
	userRepo := mongodb.NewUserRepository(db)

	var throttle ports.LoginThrottle
	if rdb != nil {
		throttle = redisdb.NewLoginThrottle(rdb, 0)
	}

	authService := service.NewAuthService(adminRepo, agentRepo, userRepo, throttle, cfg.JWTSecret, cfg.TokenTTL, log)
	registrationService := service.NewRegistrationService(agentRepo, userRepo, docs, mailer, cfg.MinPassword, log)
	approvalService := service.NewApprovalService(agentRepo, docs, mailer, log)

	authHandler := handler.NewAuthHandler(authService, registrationService)
	agentHandler := handler.NewAgentHandler(registrationService, approvalService)
	adminHandler := handler.NewAdminHandler(approvalService)

	authMW := middleware.Auth(cfg.JWTSecret, authService)

	// --- Public routes ---
	e.POST("/agents/register", agentHandler.Register)
	e.GET("/agents/application-status", agentHandler.ApplicationStatus)
	e.GET("/agents/:id", agentHandler.Get)
	e.POST("/auth/register", authHandler.RegisterUser)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/admin/login", authHandler.AdminLogin)

	// --- Authenticated routes ---
	e.GET("/auth/verify", authHandler.Verify, authMW)
	e.PUT("/agents/:id", agentHandler.UpdateProfile, authMW, middleware.RequireSelfOrAdmin("id"))

	admin := e.Group("/admin", authMW, middleware.RequireAdmin)
	admin.GET("/me", adminHandler.Me)
	admin.GET("/agents", adminHandler.ListAgents)
	admin.GET("/agents/pending", adminHandler.ListPending)
	admin.GET("/agents/stats", adminHandler.Stats)
	admin.PUT("/agents/:id/status", adminHandler.UpdateStatus)
	admin.DELETE("/agents/:id", adminHandler.Delete)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
