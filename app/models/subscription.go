package models

import "time"

const (
	BillingCycleMonthly = "monthly"
	BillingCycleYearly  = "yearly"
)

const (
	SubscriptionStatusCreated   = "created"
	SubscriptionStatusActive    = "active"
	SubscriptionStatusHalted    = "halted"
	SubscriptionStatusCompleted = "completed"
	SubscriptionStatusCancelled = "cancelled"
)

// Subscription mirrors a Razorpay subscription and maps it to an internal
// tier. Rows are never deleted; terminal statuses are kept for audit.
type Subscription struct {
	ID                     uint       `gorm:"primaryKey" json:"-"`
	UUID                   string     `gorm:"type:varchar(36);not null;uniqueIndex" json:"id"`
	UserID                 uint       `gorm:"not null;index:idx_subscriptions_user_family,priority:1" json:"user_id"`
	RazorpaySubscriptionID string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_subscriptions_razorpay_id" json:"razorpay_subscription_id"`
	RazorpayCustomerID     string     `gorm:"type:varchar(191);not null;default:''" json:"razorpay_customer_id"`
	Tier                   string     `gorm:"type:varchar(50);not null;index" json:"tier"`
	TierFamily             string     `gorm:"type:varchar(20);not null;index:idx_subscriptions_user_family,priority:2" json:"tier_family"`
	BillingCycle           string     `gorm:"type:varchar(16);not null" json:"billing_cycle"`
	Status                 string     `gorm:"type:varchar(32);not null;default:'created';index" json:"status"`
	Seats                  int        `gorm:"not null;default:0" json:"seats,omitempty"`
	RazorpayPlanID         string     `gorm:"type:varchar(191);not null" json:"razorpay_plan_id"`
	PlanName               string     `gorm:"type:varchar(100);not null;default:''" json:"plan_name"`
	PriceCents             int64      `gorm:"not null;default:0" json:"price_cents"`
	Currency               string     `gorm:"type:varchar(3);not null;default:'INR'" json:"currency"`
	PaidCount              int        `gorm:"not null;default:0" json:"paid_count"`
	CurrentPeriodStart     *time.Time `gorm:"type:timestamp;default:null" json:"current_period_start,omitempty"`
	CurrentPeriodEnd       *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	EndedAt                *time.Time `gorm:"type:timestamp;default:null" json:"ended_at,omitempty"`
	ShortURL               string     `gorm:"type:varchar(255);not null;default:''" json:"short_url,omitempty"`
	CreatedAt              time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the subscription reached a final status.
func (s *Subscription) IsTerminal() bool {
	return s.Status == SubscriptionStatusCompleted || s.Status == SubscriptionStatusCancelled
}
