package models

import (
	"time"

	"gorm.io/gorm"
)

// Package categories match the gaming platforms the catalog covers
const (
	CategoryPC          = "PC"
	CategoryPlayStation = "PlayStation"
	CategoryXbox        = "Xbox"
	CategoryStreaming   = "Streaming"
)

// ValidCategories lists every allowed package category
var ValidCategories = []string{CategoryPC, CategoryPlayStation, CategoryXbox, CategoryStreaming}

// IsValidCategory checks a category against the allowed set
func IsValidCategory(category string) bool {
	for _, c := range ValidCategories {
		if c == category {
			return true
		}
	}
	return false
}

// SubscriptionPackage represents a purchasable subscription offer in the catalog
type SubscriptionPackage struct {
	gorm.Model
	Name            string         `json:"name"`
	Slug            string         `gorm:"uniqueIndex;not null" json:"slug"`
	Category        string         `gorm:"index" json:"category"`
	Type            string         `json:"type"`
	Description     string         `json:"description"`
	BasePrice       float64        `json:"base_price"`
	Period          string         `gorm:"default:'monthly'" json:"period"`
	DiscountLabel   string         `json:"discount_label"`
	DiscountPercent int            `json:"discount_percent"`
	Features        []string       `gorm:"serializer:json" json:"features"`
	Tags            []string       `gorm:"serializer:json" json:"tags"`
	IsSeasonalOffer bool           `json:"is_seasonal_offer" gorm:"default:false"`
	IsActive        bool           `json:"is_active" gorm:"default:true"`
	ImageURL        string         `json:"image_url"`
	SalesCount      int            `json:"sales_count" gorm:"default:0"`
	Addons          []PackageAddon `json:"addons" gorm:"foreignKey:PackageID"`
}

// PackageAddon is an optional priced extra registered on a package
type PackageAddon struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PackageID uint      `gorm:"index;uniqueIndex:idx_package_addon_key" json:"package_id"`
	Key       string    `gorm:"uniqueIndex:idx_package_addon_key" json:"key"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FindAddon returns the catalog addon matching key, if registered
func (p *SubscriptionPackage) FindAddon(key string) (PackageAddon, bool) {
	for _, a := range p.Addons {
		if a.Key == key {
			return a, true
		}
	}
	return PackageAddon{}, false
}
