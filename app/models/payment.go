package models

import "time"

const (
	PaymentStatusCaptured = "captured"
	PaymentStatusFailed   = "failed"
)

// Payment records one captured or failed charge reported by Razorpay.
// Rows are written once by the webhook pipeline and never updated.
type Payment struct {
	ID                     uint      `gorm:"primaryKey" json:"-"`
	RazorpayPaymentID      string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_payments_razorpay_id" json:"razorpay_payment_id"`
	RazorpaySubscriptionID string    `gorm:"type:varchar(191);not null;index" json:"razorpay_subscription_id"`
	AmountCents            int64     `gorm:"not null" json:"amount_cents"`
	Currency               string    `gorm:"type:varchar(3);not null" json:"currency"`
	Status                 string    `gorm:"type:varchar(16);not null;index" json:"status"`
	FailureReason          string    `gorm:"type:text" json:"failure_reason,omitempty"`
	CreatedAt              time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
