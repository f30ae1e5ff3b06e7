package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/TemplateForge/app/controllers"
)

// Router installs a group of routes and middlewares on the app
type Router interface {
	InstallRouter(app *fiber.App)
}

func InstallRouter(app *fiber.App, services *controllers.Services) {
	// Install HttpRouter first to initialize session store, oauth providers,
	// and the global UserContext middleware. Then register API routes which
	// depend on that middleware.
	setup(app, NewHttpRouter(services), NewApiRouter())
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
