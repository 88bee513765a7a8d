package controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/proplayhub/backend/config"
	"github.com/proplayhub/backend/models"
	"github.com/proplayhub/backend/utils"
)

// DiscountCodeRequest represents the create/update body for discount codes
type DiscountCodeRequest struct {
	Code                 string   `json:"code" binding:"required"`
	Description          string   `json:"description"`
	DiscountPercent      int      `json:"discount_percent" binding:"required"`
	ExpiryDate           string   `json:"expiry_date" binding:"required"`
	UsageLimit           *int     `json:"usage_limit"`
	IsActive             *bool    `json:"is_active"`
	ApplicablePackages   []string `json:"applicable_packages"`
	ApplicableCategories []string `json:"applicable_categories"`
}

// ListDiscountCodes returns all codes for the CRM, newest first
func ListDiscountCodes(c *gin.Context) {
	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.DiscountCode{})
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count discount codes: %v", err)
		utils.InternalServerError(c, "Failed to fetch discount codes", nil)
		return
	}

	var codes []models.DiscountCode
	if err := query.Order("created_at DESC").Offset(pagination.Offset).Limit(pagination.Limit).Find(&codes).Error; err != nil {
		utils.LogError("Failed to fetch discount codes: %v", err)
		utils.InternalServerError(c, "Failed to fetch discount codes", nil)
		return
	}

	utils.SuccessWithPagination(c, "Discount codes retrieved successfully", codes, total, pagination.Page, pagination.Limit)
}

// CreateDiscountCode creates a new code. Codes are stored uppercase.
func CreateDiscountCode(c *gin.Context) {
	var req DiscountCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	if valid, msg := utils.ValidatePercent(req.DiscountPercent); !valid {
		utils.BadRequest(c, "Invalid discount percent", msg)
		return
	}
	expiry, err := time.Parse("2006-01-02", req.ExpiryDate)
	if err != nil {
		utils.BadRequest(c, "Invalid expiry date", "Expected format: YYYY-MM-DD")
		return
	}
	if req.UsageLimit != nil && *req.UsageLimit < 1 {
		utils.BadRequest(c, "Usage limit must be at least 1", nil)
		return
	}
	for _, cat := range req.ApplicableCategories {
		if !models.IsValidCategory(cat) {
			utils.BadRequest(c, "Invalid category", cat)
			return
		}
	}

	code := models.DiscountCode{
		Code:                 strings.ToUpper(strings.TrimSpace(req.Code)),
		Description:          req.Description,
		DiscountPercent:      req.DiscountPercent,
		ExpiryDate:           expiry,
		UsageLimit:           req.UsageLimit,
		IsActive:             true,
		ApplicablePackages:   req.ApplicablePackages,
		ApplicableCategories: req.ApplicableCategories,
	}
	if req.IsActive != nil {
		code.IsActive = *req.IsActive
	}

	if err := config.DB.Create(&code).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			utils.Conflict(c, "A code with this name already exists", nil)
			return
		}
		utils.LogError("Failed to create discount code: %v", err)
		utils.InternalServerError(c, "Failed to create discount code", nil)
		return
	}

	utils.LogInfo("Discount code %s created", code.Code)
	utils.Created(c, "Discount code created successfully", gin.H{"discount_code": code})
}

// UpdateDiscountCode updates mutable fields of an existing code
func UpdateDiscountCode(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid discount code ID", nil)
		return
	}

	var code models.DiscountCode
	if err := config.DB.First(&code, id).Error; err != nil {
		utils.NotFound(c, "Discount code not found")
		return
	}

	var req DiscountCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	if valid, msg := utils.ValidatePercent(req.DiscountPercent); !valid {
		utils.BadRequest(c, "Invalid discount percent", msg)
		return
	}
	expiry, err := time.Parse("2006-01-02", req.ExpiryDate)
	if err != nil {
		utils.BadRequest(c, "Invalid expiry date", "Expected format: YYYY-MM-DD")
		return
	}

	code.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	code.Description = req.Description
	code.DiscountPercent = req.DiscountPercent
	code.ExpiryDate = expiry
	code.UsageLimit = req.UsageLimit
	code.ApplicablePackages = req.ApplicablePackages
	code.ApplicableCategories = req.ApplicableCategories
	if req.IsActive != nil {
		code.IsActive = *req.IsActive
	}

	if err := config.DB.Save(&code).Error; err != nil {
		utils.LogError("Failed to update discount code %d: %v", code.ID, err)
		utils.InternalServerError(c, "Failed to update discount code", nil)
		return
	}

	utils.Success(c, "Discount code updated successfully", gin.H{"discount_code": code})
}

// ToggleDiscountCode flips a code between active and inactive
func ToggleDiscountCode(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid discount code ID", nil)
		return
	}

	var code models.DiscountCode
	if err := config.DB.First(&code, id).Error; err != nil {
		utils.NotFound(c, "Discount code not found")
		return
	}

	code.IsActive = !code.IsActive
	if err := config.DB.Model(&code).UpdateColumn("is_active", code.IsActive).Error; err != nil {
		utils.LogError("Failed to toggle discount code %d: %v", code.ID, err)
		utils.InternalServerError(c, "Failed to update discount code", nil)
		return
	}

	utils.Success(c, "Discount code updated successfully", gin.H{"discount_code": code})
}

// DeleteDiscountCode soft-deletes a code; past subscriptions keep their
// snapshot of it
func DeleteDiscountCode(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid discount code ID", nil)
		return
	}

	if err := config.DB.Delete(&models.DiscountCode{}, id).Error; err != nil {
		utils.LogError("Failed to delete discount code %d: %v", id, err)
		utils.InternalServerError(c, "Failed to delete discount code", nil)
		return
	}

	utils.Success(c, "Discount code deleted successfully", nil)
}
