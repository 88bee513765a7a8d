package models

import (
	"time"

	"gorm.io/gorm"
)

// DiscountCode is a promotional code applied at checkout on top of any
// package-level discount. Codes are stored uppercase.
type DiscountCode struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	Code                 string         `gorm:"uniqueIndex;not null" json:"code"`
	Description          string         `json:"description"`
	DiscountPercent      int            `gorm:"check:discount_percent >= 0 AND discount_percent <= 100" json:"discount_percent"`
	ExpiryDate           time.Time      `json:"expiry_date"`
	UsageLimit           *int           `json:"usage_limit"` // nil = unlimited
	UsedCount            int            `json:"used_count" gorm:"default:0"`
	IsActive             bool           `json:"is_active" gorm:"default:true"`
	ApplicablePackages   []string       `gorm:"serializer:json" json:"applicable_packages"`   // slugs, empty = all
	ApplicableCategories []string       `gorm:"serializer:json" json:"applicable_categories"` // empty = all
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsValid reports whether the code is currently usable: active, not past
// expiry_date and under its usage limit.
func (d *DiscountCode) IsValid() bool {
	if !d.IsActive {
		return false
	}
	if time.Now().After(d.ExpiryDate) {
		return false
	}
	if d.UsageLimit != nil && d.UsedCount >= *d.UsageLimit {
		return false
	}
	return true
}

// AppliesToPackage checks the slug allow-list (empty = all packages)
func (d *DiscountCode) AppliesToPackage(slug string) bool {
	if len(d.ApplicablePackages) == 0 {
		return true
	}
	for _, s := range d.ApplicablePackages {
		if s == slug {
			return true
		}
	}
	return false
}

// AppliesToCategory checks the category allow-list (empty = all categories)
func (d *DiscountCode) AppliesToCategory(category string) bool {
	if len(d.ApplicableCategories) == 0 {
		return true
	}
	for _, c := range d.ApplicableCategories {
		if c == category {
			return true
		}
	}
	return false
}

// IncrementUsage bumps the usage counter inside the caller's transaction so
// the increment commits or rolls back together with the checkout write.
func (d *DiscountCode) IncrementUsage(tx *gorm.DB) error {
	if err := tx.Model(d).UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error; err != nil {
		return err
	}
	d.UsedCount++
	return nil
}
