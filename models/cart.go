package models

import (
	"time"
)

// CartItem holds a package a user intends to check out, together with the
// addon keys selected so far. One row per (user, package); rows are removed
// outright so a re-added package never trips the unique index.
type CartItem struct {
	ID             uint                `gorm:"primaryKey" json:"id"`
	UserID         uint                `gorm:"index;uniqueIndex:idx_cart_user_package" json:"user_id"`
	PackageID      uint                `gorm:"uniqueIndex:idx_cart_user_package" json:"package_id"`
	Package        SubscriptionPackage `gorm:"foreignKey:PackageID" json:"package"`
	SelectedAddons []string            `gorm:"serializer:json" json:"selected_addons"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}
