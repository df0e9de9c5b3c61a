package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/flatlogic/usermgmt-backend/internal/config"
	"github.com/flatlogic/usermgmt-backend/internal/handler"
	"github.com/flatlogic/usermgmt-backend/internal/middleware"
	"github.com/flatlogic/usermgmt-backend/internal/model"
	"github.com/flatlogic/usermgmt-backend/internal/repository"
)

// Deps bundles everything the route table needs.
type Deps struct {
	Cfg   *config.Config
	Users *repository.UserRepo
	Redis *redis.Client

	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Product   *handler.ProductHandler
	File      *handler.FileHandler
	Analytics *handler.AnalyticsHandler
}

// Register wires every route on the provided Echo instance.  Public auth
// endpoints sit behind the Redis token bucket; everything stateful
// requires a valid bearer token, and the user CRUD additionally requires
// the admin role.
func Register(e *echo.Echo, d Deps) {
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	e.GET("/healthz", handler.Health)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), d.Redis)
	authn := middleware.JWTAuth(d.Cfg.JWTSecret, d.Users)

	// Unauthenticated auth surface.
	auth := e.Group("/api/auth", limiter)
	auth.POST("/signup", d.Auth.Signup)
	auth.POST("/signin/local", d.Auth.SigninLocal)
	auth.PUT("/verify-email", d.Auth.VerifyEmail)
	auth.PUT("/password-reset", d.Auth.PasswordReset)
	auth.POST("/send-password-reset-email", d.Auth.SendPasswordResetEmail)
	auth.POST("/send-email-address-verification-email", d.Auth.SendEmailAddressVerificationEmail)
	auth.GET("/signin/:provider", d.Auth.SocialRedirect)
	auth.GET("/signin/:provider/callback", d.Auth.SocialCallback)

	// Session-bound auth endpoints.
	authed := e.Group("/api/auth", authn)
	authed.PUT("/password-update", d.Auth.PasswordUpdate)
	authed.GET("/me", d.Auth.Me)

	// Admin-only user management.
	users := e.Group("/api/users", authn, middleware.RequireRole(model.RoleAdmin))
	users.POST("", d.User.Create)
	users.GET("", d.User.List)
	users.GET("/autocomplete", d.User.Autocomplete)
	users.GET("/:id", d.User.Get)
	users.PUT("/:id", d.User.Update)
	users.DELETE("/:id", d.User.Delete)

	// Product catalog, readable by any signed-in user.
	products := e.Group("/api/products", authn)
	products.GET("", d.Product.List, cache)
	products.GET("/images", d.Product.Images, cache)
	products.GET("/:id", d.Product.Get)
	products.POST("", d.Product.Create, middleware.RequireRole(model.RoleAdmin))
	products.PUT("/:id", d.Product.Update, middleware.RequireRole(model.RoleAdmin))
	products.DELETE("/:id", d.Product.Delete, middleware.RequireRole(model.RoleAdmin))

	// Attachment storage.
	files := e.Group("/api/file", authn)
	files.POST("/upload/*", d.File.Upload)
	files.GET("/download", d.File.Download)

	// Dashboard data, cached since it is synthetic anyway.
	e.GET("/api/analytics", d.Analytics.Dashboard, authn, cache)
}
