package billing

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// SubscriptionEntity is the subscription object inside a Razorpay webhook
// payload. Epoch fields are seconds.
type SubscriptionEntity struct {
	ID           string `json:"id" validate:"required"`
	PlanID       string `json:"plan_id"`
	Status       string `json:"status"`
	CurrentStart int64  `json:"current_start"`
	CurrentEnd   int64  `json:"current_end"`
	EndedAt      int64  `json:"ended_at"`
	PaidCount    int    `json:"paid_count"`
	Quantity     int    `json:"quantity"`
}

// PaymentEntity is the payment object inside a Razorpay webhook payload.
// Amount is in the currency's smallest unit (paise/cents).
type PaymentEntity struct {
	ID               string `json:"id" validate:"required"`
	SubscriptionID   string `json:"subscription_id" validate:"required"`
	Amount           int64  `json:"amount" validate:"gte=0"`
	Currency         string `json:"currency" validate:"required,iso4217"`
	Status           string `json:"status"`
	ErrorDescription string `json:"error_description"`
}

// WebhookBody is the envelope Razorpay posts: an event-type string plus
// entity wrappers for whichever objects the event concerns.
type WebhookBody struct {
	Event   string `json:"event"`
	Payload struct {
		Subscription struct {
			Entity *SubscriptionEntity `json:"entity"`
		} `json:"subscription"`
		Payment struct {
			Entity *PaymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// ParseWebhookBody decodes a raw webhook body. A decode failure is the
// "malformed JSON" case and must be rejected before the idempotency check.
func ParseWebhookBody(raw []byte) (*WebhookBody, error) {
	var body WebhookBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, newMalformedPayloadError("invalid JSON body")
	}
	return &body, nil
}

// ValidatePayload checks the payload shape required by the event family:
// subscription events need a subscription entity with an id, payment events
// need a payment entity with an id, a non-negative amount and a recognized
// currency code.
func ValidatePayload(kind EventKind, body *WebhookBody) error {
	if kind.IsSubscriptionEvent() {
		entity := body.Payload.Subscription.Entity
		if entity == nil {
			return newMalformedPayloadError("missing subscription entity")
		}
		if err := validate.Struct(entity); err != nil {
			return newMalformedPayloadError("invalid subscription entity: " + err.Error())
		}
	}
	if kind.IsPaymentEvent() {
		entity := body.Payload.Payment.Entity
		if entity == nil {
			return newMalformedPayloadError("missing payment entity")
		}
		if err := validate.Struct(entity); err != nil {
			return newMalformedPayloadError("invalid payment entity: " + err.Error())
		}
	}
	return nil
}

// SubscriptionEventData converts a subscription entity into the normalized
// event the state machine consumes.
func SubscriptionEventData(kind EventKind, entity *SubscriptionEntity) Event {
	if entity == nil {
		return Event{Kind: kind}
	}
	return Event{
		Kind:         kind,
		CurrentStart: entity.CurrentStart,
		CurrentEnd:   entity.CurrentEnd,
		EndedAt:      entity.EndedAt,
		PaidCount:    entity.PaidCount,
	}
}
