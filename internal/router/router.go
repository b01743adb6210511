// Package router wires handlers onto the Fiber application.
package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/prepwise/prepwise-api/internal/auth"
	"github.com/prepwise/prepwise-api/internal/config"
	"github.com/prepwise/prepwise-api/internal/handler"
	"github.com/prepwise/prepwise-api/internal/middleware"
	"github.com/prepwise/prepwise-api/internal/observability"
)

// Dependencies carries everything route registration needs.
type Dependencies struct {
	Config       config.Config
	SessionStore *auth.SessionStore
	Auth         *handler.AuthHandler
	Templates    *handler.TemplateHandler
	Personas     *handler.PersonaHandler
	Sessions     *handler.SessionHandler
	Stats        *handler.StatsHandler
	Preferences  *handler.PreferenceHandler
}

// Register mounts all routes. The template and persona catalogues are
// public so the landing page can render them before login; everything
// touching user data sits behind the session guard.
func Register(app *fiber.App, deps Dependencies) {
	requireAuth := middleware.SessionAuth(deps.SessionStore, deps.Config.SessionCookie)
	streamLimiter := middleware.RateLimit("interview_stream", deps.Config.StreamRateMax, deps.Config.StreamRateWin)

	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api")
	api.Get("/health", handler.HealthCheck(deps.Config))

	deps.Auth.Register(api.Group("/auth"), requireAuth)
	deps.Templates.Register(api.Group("/templates"))
	deps.Personas.Register(api.Group("/personas"))

	deps.Sessions.Register(api.Group("/sessions", requireAuth), streamLimiter)
	deps.Stats.Register(api.Group("/stats", requireAuth))
	deps.Preferences.Register(api.Group("/preferences", requireAuth))
}
