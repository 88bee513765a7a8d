package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/proplayhub/backend/config"
	"github.com/proplayhub/backend/models"
	"github.com/proplayhub/backend/utils"
)

// GetPackages lists active catalog packages with filters and pagination.
// Supported query params: category, seasonal, search, sort (popular|
// price_asc|price_desc|newest), page, limit.
func GetPackages(c *gin.Context) {
	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.SubscriptionPackage{}).
		Where("is_active = ?", true).
		Preload("Addons")

	if category := c.Query("category"); category != "" {
		if !models.IsValidCategory(category) {
			utils.BadRequest(c, "Invalid category", category)
			return
		}
		query = query.Where("category = ?", category)
	}
	if c.Query("seasonal") == "true" {
		query = query.Where("is_seasonal_offer = ?", true)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	switch c.DefaultQuery("sort", "popular") {
	case "price_asc":
		query = query.Order("base_price ASC")
	case "price_desc":
		query = query.Order("base_price DESC")
	case "newest":
		query = query.Order("created_at DESC")
	default:
		query = query.Order("sales_count DESC")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count packages: %v", err)
		utils.InternalServerError(c, "Failed to fetch packages", nil)
		return
	}

	var packages []models.SubscriptionPackage
	if err := query.Offset(pagination.Offset).Limit(pagination.Limit).Find(&packages).Error; err != nil {
		utils.LogError("Failed to fetch packages: %v", err)
		utils.InternalServerError(c, "Failed to fetch packages", nil)
		return
	}

	items := make([]gin.H, 0, len(packages))
	for i := range packages {
		items = append(items, packageWithPreview(&packages[i]))
	}

	utils.SuccessWithPagination(c, "Packages retrieved successfully", items, total, pagination.Page, pagination.Limit)
}

// GetPackageBySlug returns one package with its computed price preview
func GetPackageBySlug(c *gin.Context) {
	slug := strings.ToLower(c.Param("slug"))

	var pkg models.SubscriptionPackage
	if err := config.DB.Preload("Addons").Where("slug = ? AND is_active = ?", slug, true).First(&pkg).Error; err != nil {
		utils.NotFound(c, "Package not found")
		return
	}

	utils.Success(c, "Package retrieved successfully", packageWithPreview(&pkg))
}

// GetRecommendedPackages returns packages matching the caller's platform
// preferences (query param overrides the stored profile preferences).
func GetRecommendedPackages(c *gin.Context) {
	var preferences []string
	if raw := c.Query("preferences"); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			p = strings.TrimSpace(p)
			if models.IsValidCategory(p) {
				preferences = append(preferences, p)
			}
		}
	} else if userVal, exists := c.Get("user"); exists {
		if user, ok := userVal.(models.User); ok {
			preferences = user.PlatformPreferences
		}
	}

	query := config.DB.Model(&models.SubscriptionPackage{}).
		Where("is_active = ?", true).
		Preload("Addons").
		Order("sales_count DESC").
		Limit(10)
	if len(preferences) > 0 {
		query = query.Where("category IN ?", preferences)
	}

	var packages []models.SubscriptionPackage
	if err := query.Find(&packages).Error; err != nil {
		utils.LogError("Failed to fetch recommended packages: %v", err)
		utils.InternalServerError(c, "Failed to fetch packages", nil)
		return
	}

	items := make([]gin.H, 0, len(packages))
	for i := range packages {
		items = append(items, packageWithPreview(&packages[i]))
	}

	utils.Success(c, "Recommended packages retrieved successfully", items)
}

// packageWithPreview decorates a package with its computed price breakdown
func packageWithPreview(pkg *models.SubscriptionPackage) gin.H {
	preview := utils.PreviewPackagePrice(pkg)
	return gin.H{
		"package": pkg,
		"pricing": preview,
	}
}
