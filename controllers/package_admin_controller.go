package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/proplayhub/backend/config"
	"github.com/proplayhub/backend/models"
	"github.com/proplayhub/backend/utils"
)

// PackageAddonRequest represents one addon in a package create/update body
type PackageAddonRequest struct {
	Key   string  `json:"key" binding:"required"`
	Name  string  `json:"name" binding:"required"`
	Price float64 `json:"price"`
}

// PackageRequest represents the package create/update body
type PackageRequest struct {
	Name            string                `json:"name" binding:"required"`
	Slug            string                `json:"slug"`
	Category        string                `json:"category" binding:"required"`
	Type            string                `json:"type"`
	Description     string                `json:"description"`
	BasePrice       float64               `json:"base_price" binding:"required"`
	Period          string                `json:"period"`
	DiscountLabel   string                `json:"discount_label"`
	DiscountPercent int                   `json:"discount_percent"`
	Features        []string              `json:"features"`
	Tags            []string              `json:"tags"`
	IsSeasonalOffer bool                  `json:"is_seasonal_offer"`
	IsActive        *bool                 `json:"is_active"`
	ImageURL        string                `json:"image_url"`
	Addons          []PackageAddonRequest `json:"addons"`
}

func (r *PackageRequest) validate() (string, string, bool) {
	if !models.IsValidCategory(r.Category) {
		return "Invalid category", r.Category, false
	}
	if valid, msg := utils.ValidatePrice(r.BasePrice); !valid {
		return "Invalid base price", msg, false
	}
	if valid, msg := utils.ValidatePercent(r.DiscountPercent); !valid {
		return "Invalid discount percent", msg, false
	}
	for _, a := range r.Addons {
		if valid, msg := utils.ValidatePrice(a.Price); !valid {
			return "Invalid addon price", msg, false
		}
	}
	return "", "", true
}

// ListPackagesAdmin lists every package including inactive ones for the CRM
func ListPackagesAdmin(c *gin.Context) {
	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.SubscriptionPackage{}).Preload("Addons")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count packages: %v", err)
		utils.InternalServerError(c, "Failed to fetch packages", nil)
		return
	}

	var packages []models.SubscriptionPackage
	if err := query.Order("created_at DESC").Offset(pagination.Offset).Limit(pagination.Limit).Find(&packages).Error; err != nil {
		utils.LogError("Failed to fetch packages: %v", err)
		utils.InternalServerError(c, "Failed to fetch packages", nil)
		return
	}

	utils.SuccessWithPagination(c, "Packages retrieved successfully", packages, total, pagination.Page, pagination.Limit)
}

// CreatePackage creates a catalog package with its addon catalog. The slug
// is derived from the name when not supplied.
func CreatePackage(c *gin.Context) {
	var req PackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	if msg, detail, ok := req.validate(); !ok {
		utils.BadRequest(c, msg, detail)
		return
	}

	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}
	if valid, msg := utils.ValidateSlug(slug); !valid {
		utils.BadRequest(c, "Invalid slug", msg)
		return
	}

	pkg := models.SubscriptionPackage{
		Name:            req.Name,
		Slug:            slug,
		Category:        req.Category,
		Type:            req.Type,
		Description:     req.Description,
		BasePrice:       req.BasePrice,
		Period:          req.Period,
		DiscountLabel:   req.DiscountLabel,
		DiscountPercent: req.DiscountPercent,
		Features:        req.Features,
		Tags:            req.Tags,
		IsSeasonalOffer: req.IsSeasonalOffer,
		IsActive:        true,
		ImageURL:        req.ImageURL,
	}
	if req.IsActive != nil {
		pkg.IsActive = *req.IsActive
	}
	if pkg.Period == "" {
		pkg.Period = "monthly"
	}
	for _, a := range req.Addons {
		pkg.Addons = append(pkg.Addons, models.PackageAddon{
			Key:   strings.ToLower(strings.TrimSpace(a.Key)),
			Name:  a.Name,
			Price: a.Price,
		})
	}

	if err := config.DB.Create(&pkg).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			utils.Conflict(c, "A package with this slug already exists", nil)
			return
		}
		utils.LogError("Failed to create package: %v", err)
		utils.InternalServerError(c, "Failed to create package", nil)
		return
	}

	utils.LogInfo("Package %s created", pkg.Slug)
	utils.Created(c, "Package created successfully", gin.H{"package": pkg})
}

// UpdatePackage updates a package and replaces its addon catalog
func UpdatePackage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid package ID", nil)
		return
	}

	var pkg models.SubscriptionPackage
	if err := config.DB.Preload("Addons").First(&pkg, id).Error; err != nil {
		utils.NotFound(c, "Package not found")
		return
	}

	var req PackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	if msg, detail, ok := req.validate(); !ok {
		utils.BadRequest(c, msg, detail)
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		pkg.Name = req.Name
		pkg.Category = req.Category
		pkg.Type = req.Type
		pkg.Description = req.Description
		pkg.BasePrice = req.BasePrice
		pkg.DiscountLabel = req.DiscountLabel
		pkg.DiscountPercent = req.DiscountPercent
		pkg.Features = req.Features
		pkg.Tags = req.Tags
		pkg.IsSeasonalOffer = req.IsSeasonalOffer
		pkg.ImageURL = req.ImageURL
		if req.Period != "" {
			pkg.Period = req.Period
		}
		if req.Slug != "" {
			pkg.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
		}
		if req.IsActive != nil {
			pkg.IsActive = *req.IsActive
		}

		if err := tx.Omit("Addons").Save(&pkg).Error; err != nil {
			return err
		}

		if err := tx.Where("package_id = ?", pkg.ID).Delete(&models.PackageAddon{}).Error; err != nil {
			return err
		}
		pkg.Addons = nil
		for _, a := range req.Addons {
			addon := models.PackageAddon{
				PackageID: pkg.ID,
				Key:       strings.ToLower(strings.TrimSpace(a.Key)),
				Name:      a.Name,
				Price:     a.Price,
			}
			if err := tx.Create(&addon).Error; err != nil {
				return err
			}
			pkg.Addons = append(pkg.Addons, addon)
		}
		return nil
	})
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			utils.Conflict(c, "A package with this slug already exists", nil)
			return
		}
		utils.LogError("Failed to update package %d: %v", pkg.ID, err)
		utils.InternalServerError(c, "Failed to update package", nil)
		return
	}

	utils.Success(c, "Package updated successfully", gin.H{"package": pkg})
}

// TogglePackage flips a package between active and hidden. Existing
// subscriptions are unaffected.
func TogglePackage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid package ID", nil)
		return
	}

	var pkg models.SubscriptionPackage
	if err := config.DB.First(&pkg, id).Error; err != nil {
		utils.NotFound(c, "Package not found")
		return
	}

	pkg.IsActive = !pkg.IsActive
	if err := config.DB.Model(&pkg).UpdateColumn("is_active", pkg.IsActive).Error; err != nil {
		utils.LogError("Failed to toggle package %d: %v", pkg.ID, err)
		utils.InternalServerError(c, "Failed to update package", nil)
		return
	}

	utils.Success(c, "Package updated successfully", gin.H{"package": pkg})
}

// DeletePackage soft-deletes a package. Subscriptions keep their denormalized
// snapshot, so history survives the delete.
func DeletePackage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid package ID", nil)
		return
	}

	var pkg models.SubscriptionPackage
	if err := config.DB.First(&pkg, id).Error; err != nil {
		utils.NotFound(c, "Package not found")
		return
	}

	if err := config.DB.Delete(&pkg).Error; err != nil {
		utils.LogError("Failed to delete package %d: %v", pkg.ID, err)
		utils.InternalServerError(c, "Failed to delete package", nil)
		return
	}

	utils.LogInfo("Package %s deleted", pkg.Slug)
	utils.Success(c, "Package deleted successfully", nil)
}
