package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/pathcraft-app/pathcraft/app/models"
)

// ProcessWebhook applies at most one state transition for a verified webhook
// delivery. The caller has already authenticated the request (signature);
// everything from the idempotency gate onward happens here. Idempotent
// no-ops (duplicate delivery, unknown event type, subscription not found)
// come back as successful results with flags, never as errors, so the sender
// does not retry conditions that will never resolve.
func (s *Service) ProcessWebhook(ctx context.Context, in WebhookInput) (*WebhookResult, error) {
	body, err := ParseWebhookBody(in.RawBody)
	if err != nil {
		return nil, err
	}

	eventID := strings.TrimSpace(in.EventID)
	if eventID == "" {
		// No event id header: derive one from the content so at-least-once
		// redelivery of the same payload still dedupes.
		sum := sha256.Sum256(in.RawBody)
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	created, stored, err := s.repo.CreateWebhookEventIfNotExists(&models.WebhookEvent{
		ProviderEventID: eventID,
		EventType:       body.Event,
		PayloadJSON:     string(in.RawBody),
	})
	if err != nil {
		return nil, newInternalError("could not record webhook event")
	}
	if !created {
		return &WebhookResult{Duplicate: true}, nil
	}

	kind := ParseEventKind(body.Event)
	if kind == EventUnknown {
		s.markProcessed(ctx, stored.ID, true, "")
		return &WebhookResult{Warning: "Unknown event type: " + body.Event}, nil
	}

	if err := ValidatePayload(kind, body); err != nil {
		// The ledger row stays for audit: a malformed payload is evidence the
		// sender contract changed.
		s.markProcessed(ctx, stored.ID, false, err.Error())
		return nil, err
	}

	if kind.IsPaymentEvent() {
		return s.processPaymentEvent(ctx, kind, body, stored.ID)
	}
	return s.processSubscriptionEvent(ctx, kind, body, stored.ID)
}

func (s *Service) processSubscriptionEvent(ctx context.Context, kind EventKind, body *WebhookBody, eventRowID uint) (*WebhookResult, error) {
	entity := body.Payload.Subscription.Entity
	ev := SubscriptionEventData(kind, entity)

	var transition Transition
	_, err := s.repo.UpdateSubscriptionLocked(entity.ID, func(sub *models.Subscription) error {
		tr, applyErr := Apply(sub.Status, sub.PaidCount, ev)
		if applyErr != nil {
			return applyErr
		}
		transition = tr
		applyTransition(sub, tr)
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// A retry of a truly missing subscription will never succeed, so
			// the sender gets a success with a warning instead of an error.
			s.markProcessed(ctx, eventRowID, true, "subscription not found: "+entity.ID)
			return &WebhookResult{Warning: "subscription not found"}, nil
		}
		s.markProcessed(ctx, eventRowID, false, err.Error())
		return nil, newInternalError("could not apply subscription transition")
	}

	// subscription.charged carries the payment alongside the subscription;
	// record it when present.
	if kind == EventSubscriptionCharged {
		if payment := body.Payload.Payment.Entity; payment != nil && payment.ID != "" {
			s.recordPayment(kind, payment, entity.ID)
		}
	}

	note := ""
	if transition.StaleData {
		note = "stale numeric fields in payload (paid_count regression)"
	}
	s.markProcessed(ctx, eventRowID, true, note)
	return &WebhookResult{Warning: transition.Warning}, nil
}

func (s *Service) processPaymentEvent(ctx context.Context, kind EventKind, body *WebhookBody, eventRowID uint) (*WebhookResult, error) {
	entity := body.Payload.Payment.Entity
	if err := s.recordPayment(kind, entity, entity.SubscriptionID); err != nil {
		s.markProcessed(ctx, eventRowID, false, err.Error())
		return nil, newInternalError("could not record payment")
	}

	warning := ""
	if _, err := s.repo.GetSubscriptionByExternalID(entity.SubscriptionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			warning = "subscription not found"
		}
	}

	s.markProcessed(ctx, eventRowID, true, "")
	return &WebhookResult{Warning: warning}, nil
}

func (s *Service) recordPayment(kind EventKind, entity *PaymentEntity, subscriptionID string) error {
	status := models.PaymentStatusCaptured
	failureReason := ""
	if kind == EventPaymentFailed {
		status = models.PaymentStatusFailed
		failureReason = entity.ErrorDescription
	}
	return s.repo.CreatePaymentIfNotExists(&models.Payment{
		RazorpayPaymentID:      entity.ID,
		RazorpaySubscriptionID: subscriptionID,
		AmountCents:            entity.Amount,
		Currency:               entity.Currency,
		Status:                 status,
		FailureReason:          failureReason,
	})
}

func (s *Service) markProcessed(ctx context.Context, id uint, processed bool, note string) {
	_ = ctx
	if err := s.repo.MarkWebhookProcessed(id, processed, note); err != nil {
		log.Printf("billing: could not mark webhook event %d processed: %v", id, err)
	}
}
