package models

import "time"

// PlanMapping maps an internal (tier, billing cycle) pair to the Razorpay
// plan that bills it. Creation fails with PLAN_NOT_CONFIGURED when no active
// mapping exists for the requested pair.
type PlanMapping struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Tier           string    `gorm:"type:varchar(50);not null;index:ux_plan_mappings_tier_cycle,unique,priority:1" json:"tier"`
	BillingCycle   string    `gorm:"type:varchar(16);not null;index:ux_plan_mappings_tier_cycle,unique,priority:2" json:"billing_cycle"`
	RazorpayPlanID string    `gorm:"type:varchar(191);not null" json:"razorpay_plan_id"`
	PlanName       string    `gorm:"type:varchar(100);not null;default:''" json:"plan_name"`
	PriceCents     int64     `gorm:"not null" json:"price_cents"`
	Currency       string    `gorm:"type:varchar(3);not null;default:'INR'" json:"currency"`
	IsActive       bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
