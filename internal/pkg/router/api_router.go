package router

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/pathcraft-app/pathcraft/app/controllers"
	"github.com/pathcraft-app/pathcraft/app/repository"
	"github.com/pathcraft-app/pathcraft/internal/pkg/billing"
	"github.com/pathcraft-app/pathcraft/internal/pkg/database"
	"github.com/pathcraft-app/pathcraft/internal/pkg/env"
	"github.com/pathcraft-app/pathcraft/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	svc := billing.NewServiceFromDB(database.GetDB())
	factory := repository.GetGlobalFactory()
	subscriptions := controllers.NewSubscriptionController(svc)
	webhooks := controllers.NewWebhookController(svc, env.GetEnv("RAZORPAY_WEBHOOK_SECRET", ""))
	accounts := controllers.NewAccountController(factory.GetUserRepository(), factory.GetUserProfileRepository())

	api := app.Group("/api")
	v1 := api.Group("/v1")

	v1.Get("/ping", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"ping": "pong"})
	})

	// Webhooks authenticate by signature, not session, and must never be
	// rate limited away from the processor.
	v1.Post("/webhooks/razorpay", webhooks.HandleRazorpayWebhook)

	limit := apiLimiter()

	// Account bootstrap runs on credentials, not API keys.
	v1.Post("/users/register", limit, accounts.HandleRegister)
	v1.Post("/users/api-keys", limit, accounts.HandleCreateAPIKey)

	authed := v1.Group("", limit, middleware.APIKeyAuthMiddleware(), middleware.RequireAPIAuth)
	authed.Post("/subscriptions", subscriptions.HandleCreateSubscription)
	authed.Get("/users/me/subscriptions", subscriptions.HandleListSubscriptions)
	authed.Get("/users/me/profile", accounts.HandleGetProfile)
	authed.Post("/subscriptions/:id/cancel", subscriptions.HandleCancelSubscription)
	authed.Get("/admin/webhook-stats", webhooks.HandleWebhookStats)
	authed.Delete("/admin/webhook-stats", webhooks.HandleResetWebhookStats)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func apiLimiter() fiber.Handler {
	port, err := strconv.Atoi(env.GetEnv("CACHE_PORT", "6379"))
	if err != nil {
		port = 6379
	}
	return limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Storage: redisstorage.New(redisstorage.Config{
			Host: env.GetEnv("CACHE_HOST", "localhost"),
			Port: port,
		}),
	})
}
