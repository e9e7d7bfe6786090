package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/tanvichauhan7/fostertails/internal/handler"
	"github.com/tanvichauhan7/fostertails/internal/middleware"
)

// RegisterRoutes registers routes that do not belong to a feature
// group.  Currently it exposes only a health check, used by load
// balancers and monitoring to verify that the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers account routes.  Register and login do not
// require a session; everything else sits behind the session gate
// built from the signing secret and the account source.  The rate
// limiter, when non-nil, wraps the whole group so credential guessing
// burns the caller's budget.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, gate echo.MiddlewareFunc, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	auth := g.Group("")
	auth.Use(gate)
	auth.POST("/logout", a.Logout)
	auth.GET("/me", a.Me)
	auth.PUT("/profile", a.UpdateProfile)
	auth.PUT("/change-password", a.ChangePassword)
}

// RegisterPets registers listing routes.  Browsing is public and may
// be wrapped by the response cache; writes and the request lifecycle
// require a session.
func RegisterPets(e *echo.Echo, p *handler.PetHandler, gate echo.MiddlewareFunc, cache echo.MiddlewareFunc) {
	g := e.Group("/api/pets")

	pub := g.Group("")
	if cache != nil {
		pub.Use(cache)
	}
	pub.GET("", p.List)
	pub.GET("/featured", p.Featured)
	pub.GET("/:id", p.GetOne)

	auth := g.Group("")
	auth.Use(gate)
	auth.POST("", p.Create)
	auth.PUT("/:id", p.Update)
	auth.DELETE("/:id", p.Delete)
	auth.POST("/:id/request", p.SubmitRequest)
	auth.PUT("/:id/request/:requestId", p.ResolveRequest)
	auth.GET("/my/posted", p.MyPosted)
}

// RegisterNGOs registers NGO profile routes.  Creating a profile is
// restricted to the ngo role and verification to admins; browsing is
// public.
func RegisterNGOs(e *echo.Echo, n *handler.NGOHandler, gate echo.MiddlewareFunc, cache echo.MiddlewareFunc) {
	g := e.Group("/api/ngos")

	pub := g.Group("")
	if cache != nil {
		pub.Use(cache)
	}
	pub.GET("", n.List)
	pub.GET("/verified", n.VerifiedList)
	pub.GET("/:id", n.GetOne)

	auth := g.Group("")
	auth.Use(gate)
	auth.POST("", n.Create, middleware.RequireRole("ngo"))
	auth.PUT("/:id", n.Update)
	auth.POST("/:id/review", n.AddReview)
	auth.PUT("/:id/verify", n.Verify, middleware.RequireRole("admin"))
}

// RegisterDonations registers donation routes.  Every donation route
// requires a session; the admin listing and the NGO income view are
// additionally role-gated.
func RegisterDonations(e *echo.Echo, d *handler.DonationHandler, gate echo.MiddlewareFunc) {
	g := e.Group("/api/donations")
	g.Use(gate)

	g.POST("", d.Create)
	g.POST("/verify", d.Verify)
	g.GET("", d.AdminList, middleware.RequireRole("admin"))
	g.GET("/my/donated", d.MyDonations)
	g.GET("/ngo/received", d.NGOReceived, middleware.RequireRole("ngo"))
	g.GET("/:id", d.GetOne)
}
