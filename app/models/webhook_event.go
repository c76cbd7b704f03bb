package models

import "time"

// WebhookEvent is the append-only ledger of inbound Razorpay webhooks. The
// unique index on ProviderEventID is the idempotency gate: an insert that
// conflicts means the event was already delivered.
type WebhookEvent struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ProviderEventID string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_webhook_events_event_id" json:"provider_event_id"`
	EventType       string    `gorm:"type:varchar(100);not null;index" json:"event_type"`
	PayloadJSON     string    `gorm:"type:longtext;not null" json:"payload_json"`
	Processed       bool      `gorm:"not null;default:false;index" json:"processed"`
	ProcessingError string    `gorm:"type:text" json:"processing_error"`
	ReceivedAt      time.Time `gorm:"autoCreateTime;index" json:"received_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
