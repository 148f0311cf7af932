// Package router maps the HTTP surface onto the handlers and middleware
// chains. All API routes live under /api/v1; the health check is mounted
// unversioned for load balancers.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shop-backend/internal/handler"
	"github.com/iliyamo/shop-backend/internal/middleware"
	"github.com/iliyamo/shop-backend/internal/model"
)

// Handlers bundles everything the route table needs.
type Handlers struct {
	Auth          *handler.AuthHandler
	Members       *handler.MemberHandler
	Products      *handler.ProductHandler
	SellerProduct *handler.SellerProductHandler
	Orders        *handler.OrderHandler

	// Authenticate resolves the Bearer token on every API route; the
	// protected groups add RequireAuth / RequireRole on top.
	Authenticate echo.MiddlewareFunc
	// RateLimit throttles the credential endpoints.
	RateLimit echo.MiddlewareFunc
}

// Register mounts all routes on e.
func Register(e *echo.Echo, h Handlers) {
	e.GET("/healthz", handler.Health)

	api := e.Group("/api/v1", h.Authenticate)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", h.Auth.Login, h.RateLimit)
	authGroup.POST("/refresh", h.Auth.Refresh, h.RateLimit)
	authGroup.POST("/logout", h.Auth.Logout, middleware.RequireAuth())

	members := api.Group("/members")
	members.POST("/signup", h.Members.SignUp)
	members.GET("/check-email", h.Members.CheckEmail)

	products := api.Group("/products")
	products.GET("", h.Products.List)
	products.GET("/:id", h.Products.Get)

	seller := api.Group("/seller/products",
		middleware.RequireAuth(),
		middleware.RequireRole(string(model.RoleSeller), string(model.RoleAdmin)))
	seller.POST("", h.SellerProduct.Create)
	seller.GET("", h.SellerProduct.ListMine)
	seller.PUT("/:id", h.SellerProduct.Update)
	seller.DELETE("/:id", h.SellerProduct.Delete)

	orders := api.Group("/orders", middleware.RequireAuth())
	orders.POST("", h.Orders.Create)
	orders.GET("", h.Orders.List)
	orders.GET("/:id", h.Orders.Get)
	orders.POST("/:id/cancel", h.Orders.Cancel)
}
