package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/proplayhub/backend/config"
	"github.com/proplayhub/backend/models"
	"github.com/proplayhub/backend/utils"
)

// ValidateDiscount checks a code against a package without pricing anything.
// Query params: code, package_slug.
func ValidateDiscount(c *gin.Context) {
	codeParam := c.Query("code")
	slug := strings.ToLower(c.Query("package_slug"))
	if codeParam == "" || slug == "" {
		utils.BadRequest(c, "code and package_slug are required", nil)
		return
	}

	var pkg models.SubscriptionPackage
	if err := config.DB.Preload("Addons").Where("slug = ? AND is_active = ?", slug, true).First(&pkg).Error; err != nil {
		utils.NotFound(c, "Package not found")
		return
	}

	code, appErr := utils.ValidateDiscountCode(config.DB, codeParam, &pkg)
	if appErr != nil {
		utils.RespondWithError(c, appErr)
		return
	}

	utils.Success(c, "Discount code is valid", gin.H{
		"code":             code.Code,
		"discount_percent": code.DiscountPercent,
	})
}

// ApplyDiscountRequest represents the apply-discount request body
type ApplyDiscountRequest struct {
	Code        string   `json:"code" binding:"required"`
	PackageSlug string   `json:"package_slug" binding:"required"`
	Addons      []string `json:"addons"`
}

// ApplyDiscount validates the code and returns the full priced breakdown for
// the package plus selected add-ons. Nothing is persisted; usage counters
// only move at checkout.
func ApplyDiscount(c *gin.Context) {
	var req ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	slug := strings.ToLower(strings.TrimSpace(req.PackageSlug))

	var pkg models.SubscriptionPackage
	if err := config.DB.Preload("Addons").Where("slug = ? AND is_active = ?", slug, true).First(&pkg).Error; err != nil {
		utils.NotFound(c, "Package not found")
		return
	}

	code, appErr := utils.ValidateDiscountCode(config.DB, req.Code, &pkg)
	if appErr != nil {
		utils.RespondWithError(c, appErr)
		return
	}

	packagePercent := utils.PackageDiscountPercent(&pkg)
	subtotalCents, packageDiscountCents := utils.ApplyPercent(utils.Cents(pkg.BasePrice), packagePercent)

	_, addonCents, addonErr := utils.ResolveAddons(&pkg, req.Addons)
	if addonErr != nil {
		utils.RespondWithError(c, addonErr)
		return
	}
	subtotalCents += addonCents

	finalCents, codeDiscountCents := utils.ApplyPercent(subtotalCents, code.DiscountPercent)

	utils.Success(c, "Discount applied", gin.H{
		"code":             code.Code,
		"discount_percent": code.DiscountPercent,
		"pricing": gin.H{
			"base_price":       pkg.BasePrice,
			"package_discount": utils.Amount(packageDiscountCents),
			"addons_total":     utils.Amount(addonCents),
			"subtotal":         utils.Amount(subtotalCents),
			"code_discount":    utils.Amount(codeDiscountCents),
			"final_price":      utils.Amount(finalCents),
		},
	})
}
