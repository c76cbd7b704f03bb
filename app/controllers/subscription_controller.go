package controllers

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/pathcraft-app/pathcraft/internal/pkg/billing"
	"github.com/pathcraft-app/pathcraft/internal/pkg/usercontext"
)

var requestValidator = validator.New()

// SubscriptionController serves the subscription CRUD endpoints.
type SubscriptionController struct {
	svc *billing.Service
}

// NewSubscriptionController creates a subscription controller from a billing
// service.
func NewSubscriptionController(svc *billing.Service) *SubscriptionController {
	return &SubscriptionController{svc: svc}
}

type createSubscriptionRequest struct {
	Tier         string                `json:"tier" validate:"required"`
	BillingCycle string                `json:"billingCycle" validate:"required"`
	Seats        int                   `json:"seats" validate:"gte=0"`
	CustomerInfo *billing.CustomerInfo `json:"customerInfo"`
	Metadata     map[string]string     `json:"metadata"`
}

// HandleCreateSubscription creates a subscription for the authenticated user.
func (ct *SubscriptionController) HandleCreateSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "authentication required"})
	}

	var req createSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   fiber.Map{"code": billing.CodeValidationError, "message": "invalid request body"},
		})
	}
	if err := requestValidator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   fiber.Map{"code": billing.CodeValidationError, "message": err.Error()},
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	result, err := ct.svc.CreateSubscription(ctx, billing.CreateSubscriptionInput{
		UserID:       userCtx.UserID,
		UserEmail:    userCtx.Email,
		Tier:         req.Tier,
		BillingCycle: req.BillingCycle,
		Seats:        req.Seats,
		CustomerInfo: req.CustomerInfo,
		Metadata:     req.Metadata,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	body := fiber.Map{
		"success": true,
		"data":    fiber.Map{"subscription": result.Subscription},
	}
	if result.Warning != "" {
		body["warning"] = result.Warning
	}
	return c.Status(fiber.StatusOK).JSON(body)
}

// HandleListSubscriptions returns all subscriptions for the authenticated
// user, newest first.
func (ct *SubscriptionController) HandleListSubscriptions(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "authentication required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	subs, err := ct.svc.ListSubscriptions(ctx, userCtx.UserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"subscriptions": subs},
	})
}

// HandleCancelSubscription cancels one of the authenticated user's
// subscriptions by its internal id.
func (ct *SubscriptionController) HandleCancelSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "authentication required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	sub, err := ct.svc.CancelSubscription(ctx, userCtx.UserID, c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"subscription": sub},
	})
}
