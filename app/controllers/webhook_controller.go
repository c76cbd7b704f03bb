package controllers

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pathcraft-app/pathcraft/internal/pkg/billing"
	"github.com/pathcraft-app/pathcraft/internal/pkg/metrics/counter"
	"github.com/pathcraft-app/pathcraft/internal/pkg/usercontext"
)

// WebhookController serves the inbound Razorpay webhook endpoint.
type WebhookController struct {
	svc    *billing.Service
	secret string
}

// NewWebhookController creates a webhook controller from a billing service
// and the shared webhook secret.
func NewWebhookController(svc *billing.Service, secret string) *WebhookController {
	return &WebhookController{svc: svc, secret: secret}
}

// HandleRazorpayWebhook verifies and ingests one webhook delivery. Signature
// checks happen before the body is interpreted in any way; idempotent no-ops
// are acknowledged with 200 so Razorpay stops redelivering them.
func (ct *WebhookController) HandleRazorpayWebhook(c *fiber.Ctx) error {
	signature := strings.TrimSpace(c.Get("X-Razorpay-Signature"))
	if signature == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing_signature"})
	}

	rawBody := append([]byte(nil), c.BodyRaw()...)
	if !billing.VerifyWebhookSignature(rawBody, signature, ct.secret) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	eventType := webhookEventType(rawBody)
	result, err := ct.svc.ProcessWebhook(ctx, billing.WebhookInput{
		RawBody: rawBody,
		EventID: firstHeaderValue(c, "X-Razorpay-Event-Id", "X-Razorpay-Event-ID"),
	})
	if err != nil {
		if se, ok := billing.AsServiceError(err); ok && se.HTTPStatus == fiber.StatusBadRequest {
			_ = counter.AddWebhookOutcome(eventType, counter.OutcomeRejected)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload", "message": se.Message})
		}
		_ = counter.AddWebhookOutcome(eventType, counter.OutcomeFailed)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_processing_failed"})
	}

	if result.Duplicate {
		_ = counter.AddWebhookOutcome(eventType, counter.OutcomeDuplicate)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"duplicate": true})
	}
	_ = counter.AddWebhookOutcome(eventType, counter.OutcomeReceived)
	if result.Warning != "" {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "warning": result.Warning})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}

// HandleWebhookStats exposes delivery counters for operators.
func (ct *WebhookController) HandleWebhookStats(c *fiber.Ctx) error {
	if !usercontext.GetUserContext(c).IsAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "admin required"})
	}
	stats, err := counter.SnapshotWebhookOutcomes()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_unavailable"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"outcomes": stats}})
}

// HandleResetWebhookStats clears the delivery counters, e.g. after an
// incident review.
func (ct *WebhookController) HandleResetWebhookStats(c *fiber.Ctx) error {
	if !usercontext.GetUserContext(c).IsAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "admin required"})
	}
	if err := counter.ResetWebhookOutcomes(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_unavailable"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

// webhookEventType peeks at the event-type field for metrics only; full
// parsing and validation happen in the pipeline.
func webhookEventType(raw []byte) string {
	var probe struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "unknown"
	}
	return probe.Event
}
