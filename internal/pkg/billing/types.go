package billing

import "github.com/pathcraft-app/pathcraft/app/models"

// CustomerInfo is the optional customer detail block on a creation request.
type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email" validate:"omitempty,email"`
	Contact string `json:"contact"`
}

// CreateSubscriptionInput is the normalized input for the creation
// orchestrator. UserID and UserEmail come from the authenticated session,
// never from the request body.
type CreateSubscriptionInput struct {
	UserID       uint
	UserEmail    string
	Tier         string
	BillingCycle string
	Seats        int
	CustomerInfo *CustomerInfo
	Metadata     map[string]string
}

// CreateSubscriptionResult is the combined view returned on success. Warning
// is set when a best-effort follow-up step (profile defaults) failed without
// failing the creation itself.
type CreateSubscriptionResult struct {
	Subscription *models.Subscription
	Warning      string
}

// WebhookInput carries one verified webhook delivery into the pipeline.
// EventID is the processor's event id header when present; the pipeline
// derives a content hash when it is absent.
type WebhookInput struct {
	RawBody []byte
	EventID string
}

// WebhookResult reports how a delivery was handled. Exactly one delivery per
// event id performs a state transition; replays come back with Duplicate set.
type WebhookResult struct {
	Duplicate bool
	Warning   string
}
