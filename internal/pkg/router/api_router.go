package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/TemplateForge/app/controllers"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/env"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/middleware"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/session"
)

// limiterDatabase is the Redis database of the rate limiter counters
const limiterDatabase = 3

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api",
		cors.New(cors.Config{
			AllowOrigins:     strings.TrimRight(env.GetEnv("CLIENT_URL", "http://localhost:3000"), "/"),
			AllowCredentials: true,
			AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		}),
		limiter.New(limiter.Config{
			Max:        int(env.GetEnvInt64("API_RATE_LIMIT", 120)),
			Expiration: time.Minute,
			Storage:    redisstorage.New(session.RedisConfig(limiterDatabase)),
		}),
	)
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	RegisterAPIRoutes(api)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

// RegisterAPIRoutes mounts every API endpoint below api. Static segments are
// registered before the parameter routes they would otherwise collide with.
func RegisterAPIRoutes(api fiber.Router) {
	requireAuth := middleware.RequireAPISessionAuth

	// Auth
	auth := api.Group("/auth")
	auth.Get("/login/success", controllers.HandleAuthLoginSuccess)
	auth.Get("/login/failed", controllers.HandleAuthLoginFailed)
	auth.Get("/logout", controllers.HandleAuthLogout)
	auth.Get("/check-premium", requireAuth, controllers.HandleAuthCheckPremium)
	auth.Get("/:provider", controllers.HandleAuthBegin)
	auth.Get("/:provider/callback", controllers.HandleAuthCallback)

	// Catalog, bookmarks, start editing
	templates := api.Group("/templates")
	templates.Get("/", controllers.HandleTemplateList)
	templates.Get("/saved", requireAuth, controllers.HandleSavedTemplates)
	templates.Get("/:id", controllers.HandleTemplateGet)
	templates.Get("/:id/download", controllers.HandleTemplateDownload)
	templates.Get("/:id/preview", controllers.HandleTemplatePreview)
	templates.Post("/:id/copy", requireAuth, controllers.HandleCopyEnsure)
	templates.Post("/:id/save", requireAuth, controllers.HandleTemplateSave)
	templates.Delete("/:id/save", requireAuth, controllers.HandleTemplateUnsave)
	templates.Get("/:id/saved", requireAuth, controllers.HandleTemplateSavedStatus)

	// Copies
	copies := api.Group("/copies", requireAuth)
	copies.Get("/", controllers.HandleCopyList)
	copies.Get("/:id", controllers.HandleCopyGet)
	copies.Put("/:id", controllers.HandleCopyReplaceAsset)
	copies.Delete("/:id", controllers.HandleCopyDelete)
	copies.Put("/:id/content", controllers.HandleCopyUpdateContent)
	copies.Get("/:id/download", controllers.HandleCopyDownload)
	copies.Get("/:id/thumbnail", controllers.HandleCopyThumbnail)

	// Payment (simulated)
	payment := api.Group("/payment")
	payment.Get("/plans", controllers.HandlePaymentPlans)
	payment.Post("/subscribe", requireAuth, controllers.HandlePaymentSubscribe)
	payment.Post("/cancel", requireAuth, controllers.HandlePaymentCancel)
	payment.Get("/status", requireAuth, controllers.HandlePaymentStatus)

	// Admin
	admin := api.Group("/admin", middleware.RequireSuperAdmin)
	admin.Get("/dashboard", controllers.HandleAdminDashboard)
	admin.Get("/templates", controllers.HandleAdminTemplates)
	admin.Post("/templates", controllers.HandleAdminTemplateCreate)
	admin.Get("/templates/:id", controllers.HandleAdminTemplate)
	admin.Put("/templates/:id", controllers.HandleAdminTemplateUpdate)
	admin.Delete("/templates/:id", controllers.HandleAdminTemplateDelete)
	admin.Get("/users", controllers.HandleAdminUsers)
	admin.Put("/users/:id", controllers.HandleAdminUserUpdate)
}
