package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDiscountCodeIsValid(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-time.Hour)
	one := 1
	ten := 10

	tests := []struct {
		name string
		code DiscountCode
		want bool
	}{
		{"active unlimited", DiscountCode{IsActive: true, ExpiryDate: future}, true},
		{"inactive", DiscountCode{IsActive: false, ExpiryDate: future}, false},
		{"expired but still flagged active", DiscountCode{IsActive: true, ExpiryDate: past}, false},
		{"under usage limit", DiscountCode{IsActive: true, ExpiryDate: future, UsageLimit: &ten, UsedCount: 9}, true},
		{"at usage limit", DiscountCode{IsActive: true, ExpiryDate: future, UsageLimit: &one, UsedCount: 1}, false},
		{"over usage limit", DiscountCode{IsActive: true, ExpiryDate: future, UsageLimit: &one, UsedCount: 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.IsValid())
		})
	}
}

func TestDiscountCodeScoping(t *testing.T) {
	open := DiscountCode{}
	assert.True(t, open.AppliesToPackage("anything"))
	assert.True(t, open.AppliesToCategory(CategoryPC))

	scoped := DiscountCode{
		ApplicablePackages:   []string{"game-pass-ultimate"},
		ApplicableCategories: []string{CategoryXbox},
	}
	assert.True(t, scoped.AppliesToPackage("game-pass-ultimate"))
	assert.False(t, scoped.AppliesToPackage("ea-play"))
	assert.True(t, scoped.AppliesToCategory(CategoryXbox))
	assert.False(t, scoped.AppliesToCategory(CategoryPC))
}

func TestSubscriptionHasAddon(t *testing.T) {
	sub := Subscription{PurchasedAddons: []SubscriptionAddon{{Key: "cloud_saves"}}}
	assert.True(t, sub.HasAddon("cloud_saves"))
	assert.False(t, sub.HasAddon("coaching"))
}
