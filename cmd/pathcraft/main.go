package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/pathcraft-app/pathcraft/app/repository"
	"github.com/pathcraft-app/pathcraft/internal/pkg/cache"
	"github.com/pathcraft-app/pathcraft/internal/pkg/database"
	"github.com/pathcraft-app/pathcraft/internal/pkg/env"
	"github.com/pathcraft-app/pathcraft/internal/pkg/router"
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
	repository.SetGlobalFactory(repository.NewFactory(database.GetDB()))

	app := fiber.New(fiber.Config{
		AppName: "pathcraft-billing",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			"admin": env.GetEnv("METRICS_PASSWORD", "test"),
		},
	}), monitor.New())

	router.InstallRouter(app)

	return app
}
