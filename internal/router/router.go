// Package router wires the HTTP surface: which handler serves which
// path and which middleware guards it.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/qrdine/qrdine-server/internal/config"
	"github.com/qrdine/qrdine-server/internal/handler"
	"github.com/qrdine/qrdine-server/internal/middleware"
	"github.com/qrdine/qrdine-server/internal/model"
)

// RegisterRoutes registers routes that need no authentication or
// collaborators.  Currently that is only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterMenu exposes the menu listing behind the Redis response
// cache.  The menu is public: the QR scan page fetches it before any
// login.
func RegisterMenu(e *echo.Echo, m *handler.MenuHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	e.GET("/v1/menu", m.List, middleware.NewRedisCache(cacheCfg, rdb))
}

// RegisterAuth registers customer OTP auth and staff password login.
// The OTP sender sits behind the rate limiter so the mailer cannot be
// abused as a relay.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1/auth")
	g.POST("/customer/register", a.CustomerRegister)
	g.POST("/customer/verify", a.CustomerVerify)
	g.POST("/customer/login", a.CustomerLogin)
	g.POST("/staff/login", a.StaffLogin)
	g.POST("/send-otp", a.SendOTP, middleware.NewTokenBucket(rlCfg, rdb))
}

// RegisterTables registers the public scan flow (lock, verify) and
// the admin table management endpoints.
func RegisterTables(e *echo.Echo, t *handler.TableHandler, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	// Anonymous customer flow.  Lock is rate limited per IP so a
	// misbehaving client cannot churn sessions across the floor.
	e.POST("/v1/tables/lock", t.Lock, middleware.NewTokenBucket(rlCfg, rdb))
	e.GET("/v1/tables/verify", t.Verify)

	// Admin management.  The workflow re-checks the role; the
	// middleware just rejects early.
	admin := e.Group("/v1/tables")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("", t.List)
	admin.POST("/generate", t.Generate)
	admin.POST("/bill", t.Bill)
	admin.GET("/:table_no/qr", t.QR)
	admin.PATCH("/:table_no", t.Rename)
	admin.DELETE("/:table_no", t.Delete)
}

// RegisterOrders registers order placement, the order board and the
// role-gated mutations, plus the customer payment flow.
func RegisterOrders(e *echo.Echo, o *handler.OrderHandler, p *handler.PaymentHandler, jwtSecret string) {
	// Placement serves both the anonymous table flow (session in the
	// body) and authenticated parcel orders, so the token is optional.
	e.POST("/v1/orders", o.Place, middleware.OptionalJWTAuth(jwtSecret))

	auth := e.Group("/v1/orders")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("", o.List)
	auth.GET("/current", o.Current)

	staff := e.Group("/v1/orders")
	staff.Use(middleware.JWTAuth(jwtSecret))
	staff.Use(middleware.RequireRole(model.RoleChef, model.RoleAdmin))
	staff.PATCH("/:id", o.Patch)
	staff.DELETE("/history", o.PurgeHistory)

	admin := e.Group("/v1/orders")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.DELETE("/:id", o.Delete)
	admin.POST("/:id/bill-email", o.BillEmail)

	pay := e.Group("/v1/payments")
	pay.Use(middleware.JWTAuth(jwtSecret))
	pay.Use(middleware.RequireRole(model.RoleCustomer))
	pay.POST("/create", p.Create)
	pay.POST("/verify", p.Verify)
}
