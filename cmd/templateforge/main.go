package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"

	"github.com/ManuelReschke/TemplateForge/app/controllers"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/apidocs"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/cache"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/database"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/env"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/router"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/statistics"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/storage"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	ctx := context.Background()

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/templateforge to project root
		"../../../", // Fallback
	}

	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "views"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	if basePath == "" {
		panic("Could not find project root directory")
	}

	if _, err := apidocs.Load(ctx, basePath+apidocs.DefaultPath); err != nil {
		log.Printf("[App] OpenAPI document not valid: %v", err)
	}

	store, err := storage.NewFromEnv(ctx)
	if err != nil {
		panic(err)
	}

	app := fiber.New(fiber.Config{
		Views:     html.New(basePath+"views", ".html"),
		BodyLimit: int(controllers.MaxUploadBytes()) + 1<<20, // multipart overhead
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", router.MetricsAuth(), monitor.New())

	// SWAGGER / OPENAPI
	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + apidocs.DefaultPath,
		Path:     "v1",
	}))

	services := controllers.NewServices(
		database.GetDB(),
		store,
		statistics.RedisCache(),
		env.GetEnv("SUPER_ADMIN_EMAIL", ""),
	)

	// ROUTER
	router.InstallRouter(app, services)

	return app
}
