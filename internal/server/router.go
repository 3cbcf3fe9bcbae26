// Package server assembles the HTTP router.
package server

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"portfolio/internal/config"
	"portfolio/internal/domain/admin"
	"portfolio/internal/domain/health"
	"portfolio/internal/domain/lead"
	"portfolio/internal/middleware"
	"portfolio/internal/pkg/jwt"
	"portfolio/internal/pkg/ratelimit"
	"portfolio/internal/pkg/response"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Leads   *lead.Service
	Health  *health.Handler
	Limiter *ratelimit.Limiter

	// Admin routes are mounted only when both are set.
	Admin *admin.Service
	JWT   *jwt.Service
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(response.MethodNotAllowed)
	r.NoRoute(response.NotFound)

	r.Use(
		middleware.RequestID(),
		middleware.ErrorLogger(d.Logger),
		middleware.CORS(d.Config.CORSAllowedOrigins),
	)

	intakeLimit := middleware.RateLimit(d.Limiter, d.Config.RateLimitMax, d.Config.RateLimitWindow)

	api := r.Group("/api")
	{
		leadHandler := lead.NewHandler(d.Leads)
		lead.RegisterPublicRoutes(api, leadHandler, intakeLimit)

		if d.Health != nil {
			d.Health.RegisterRoutes(api)
		}

		if d.Admin != nil && d.JWT != nil {
			adminGroup := api.Group("/admin")

			// separate counter so lead submissions never lock out the admin
			loginLimit := middleware.RateLimit(ratelimit.New(), d.Config.RateLimitMax, d.Config.RateLimitWindow)
			admin.NewAuthHandler(d.Admin).RegisterRoutes(adminGroup, loginLimit)

			protected := adminGroup.Group("")
			protected.Use(middleware.JWTAuth(d.JWT), middleware.AdminOnly())
			lead.RegisterAdminRoutes(protected, leadHandler)
		}
	}

	return r
}
