// Package api wires the HTTP surface of the storefront: routes, middleware,
// metrics exposure, and the translation of domain errors into status codes.
package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/voltmart/storefront/internal/api/handler"
	"github.com/voltmart/storefront/internal/api/middleware"
	"github.com/voltmart/storefront/internal/core/domain"
	"github.com/voltmart/storefront/internal/core/service"
	"github.com/voltmart/storefront/internal/eventbus"
	"github.com/voltmart/storefront/internal/infrastructure/config"
	mongostore "github.com/voltmart/storefront/internal/infrastructure/db/mongo"
	redisstore "github.com/voltmart/storefront/internal/infrastructure/db/redis"
	"github.com/voltmart/storefront/pkg/logger"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, bus eventbus.Bus) *echo.Echo {
	log := logger.Get()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("storefront"))

	// --- Dependencies ---
	userRepo := mongostore.NewUserRepository(db)
	cartRepo := mongostore.NewCartRepository(db)
	otpStore := redisstore.NewOTPStore(rdb, cfg.OTP.TTL, cfg.OTP.MaxAttempts, cfg.OTP.ResendWindow)
	denylist := redisstore.NewTokenDenylist(rdb)

	authService := service.NewAuthService(userRepo, otpStore, denylist, cfg.JWTSecret, cfg.TokenTTL, cfg.DevMode(), log)
	cartService := service.NewCartService(cartRepo, bus, log)

	authHandler := handler.NewAuthHandler(authService)
	cartHandler := handler.NewCartHandler(cartService)
	authMiddleware := middleware.Auth(cfg.JWTSecret, denylist)

	// --- Auth routes ---
	e.POST("/auth/otp/request", authHandler.RequestOTP)
	e.POST("/auth/otp/verify", authHandler.VerifyOTP)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/me", authHandler.Me, authMiddleware)

	// --- Cart routes (authenticated) ---
	cart := e.Group("/cart", authMiddleware)
	cart.GET("", cartHandler.Get)
	cart.DELETE("", cartHandler.Clear)
	cart.POST("/items", cartHandler.AddItem)
	cart.PUT("/items/:productID", cartHandler.UpdateItem)
	cart.DELETE("/items/:productID", cartHandler.RemoveItem)

	// --- Back-office routes ---
	admin := e.Group("/admin", authMiddleware, middleware.RBAC(domain.RoleAdmin))
	admin.GET("/carts/:userID", cartHandler.AdminGet)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
