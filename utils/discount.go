package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/proplayhub/backend/models"
	"gorm.io/gorm"
)

// ValidateDiscountCode is the single validator for every discount-code call
// site: the validate endpoint, the apply endpoint and checkout itself all go
// through here so the checks cannot drift apart. Evaluation order: lookup,
// active, expiry, usage limit, package eligibility, category eligibility.
func ValidateDiscountCode(db *gorm.DB, code string, pkg *models.SubscriptionPackage) (*models.DiscountCode, *AppError) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, BadRequestError("Discount code is required", nil)
	}

	var discount models.DiscountCode
	if err := db.Where("code = ?", normalized).First(&discount).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("Discount code not found", nil)
		}
		return nil, NewAppError(500, "Failed to look up discount code", err)
	}

	if !discount.IsActive {
		return nil, BadRequestError("Discount code is no longer active", nil)
	}
	if time.Now().After(discount.ExpiryDate) {
		return nil, BadRequestError("Discount code has expired", nil)
	}
	if discount.UsageLimit != nil && discount.UsedCount >= *discount.UsageLimit {
		return nil, BadRequestError("Discount code usage limit reached", nil)
	}
	if pkg != nil {
		if !discount.AppliesToPackage(pkg.Slug) {
			return nil, BadRequestError("Discount code does not apply to this package", nil)
		}
		if !discount.AppliesToCategory(pkg.Category) {
			return nil, BadRequestError("Discount code does not apply to this category", nil)
		}
	}

	return &discount, nil
}
