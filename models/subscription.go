package models

import (
	"time"

	"gorm.io/gorm"
)

// Subscription statuses. Cancelled is terminal; a cancelled subscription can
// only be "reactivated" by creating a brand-new one.
const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusInactive  = "inactive"
	SubscriptionStatusCancelled = "cancelled"
)

// Subscription is a purchase record. Package name, period and addon prices
// are denormalized at creation time so later catalog edits do not rewrite
// purchase history.
type Subscription struct {
	gorm.Model
	UserID          uint                `gorm:"index;not null" json:"user_id"`
	User            User                `gorm:"foreignKey:UserID" json:"-"`
	PackageID       uint                `gorm:"index" json:"package_id"`
	PackageSlug     string              `gorm:"index" json:"package_slug"`
	PackageName     string              `json:"package_name"`
	Period          string              `json:"period"`
	PricePerPeriod  float64             `json:"price_per_period"`
	Status          string              `gorm:"index;default:'active'" json:"status"`
	DiscountCode    string              `json:"discount_code,omitempty"`
	DiscountPercent int                 `json:"discount_percent,omitempty"`
	DiscountAmount  float64             `json:"discount_amount,omitempty"`
	StartedAt       time.Time           `json:"started_at"`
	NextBillingDate time.Time           `json:"next_billing_date"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	RazorpayOrderID string              `json:"razorpay_order_id,omitempty"`
	PurchasedAddons []SubscriptionAddon `json:"purchased_addons" gorm:"foreignKey:SubscriptionID"`
}

// SubscriptionAddon is a price snapshot of an addon at purchase time
type SubscriptionAddon struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SubscriptionID uint      `gorm:"index" json:"subscription_id"`
	Key            string    `json:"key"`
	Name           string    `json:"name"`
	Price          float64   `json:"price"`
	CreatedAt      time.Time `json:"created_at"`
}

// HasAddon reports whether the subscription already carries the addon key
func (s *Subscription) HasAddon(key string) bool {
	for _, a := range s.PurchasedAddons {
		if a.Key == key {
			return true
		}
	}
	return false
}
