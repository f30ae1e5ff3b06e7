package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"

	"github.com/ManuelReschke/TemplateForge/app/controllers"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/env"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/metrics"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/middleware"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/oauth"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/session"
)

type HttpRouter struct {
	services *controllers.Services
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware(h.services.Repos.User))

	// Initialize controllers with services
	controllers.InitializeControllers(h.services)

	app.Get("/metrics/prometheus", MetricsAuth(), metrics.Handler())
}

func NewHttpRouter(services *controllers.Services) *HttpRouter {
	return &HttpRouter{services: services}
}

// MetricsAuth guards the metrics endpoints with basic auth
func MetricsAuth() fiber.Handler {
	return basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "test"),
		},
	})
}
