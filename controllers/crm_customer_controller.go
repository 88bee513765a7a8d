package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/proplayhub/backend/config"
	"github.com/proplayhub/backend/models"
	"github.com/proplayhub/backend/utils"
)

// ListCustomers lists customer accounts for the CRM with search and
// pagination. Query params: search, blocked, page, limit.
func ListCustomers(c *gin.Context) {
	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.User{}).Where("is_staff = ?", false)
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}
	if c.Query("blocked") == "true" {
		query = query.Where("is_blocked = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count customers: %v", err)
		utils.InternalServerError(c, "Failed to fetch customers", nil)
		return
	}

	var users []models.User
	if err := query.Order("created_at DESC").Offset(pagination.Offset).Limit(pagination.Limit).Find(&users).Error; err != nil {
		utils.LogError("Failed to fetch customers: %v", err)
		utils.InternalServerError(c, "Failed to fetch customers", nil)
		return
	}

	utils.SuccessWithPagination(c, "Customers retrieved successfully", users, total, pagination.Page, pagination.Limit)
}

// GetCustomer returns one customer with their subscriptions and stats
func GetCustomer(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid customer ID", nil)
		return
	}

	var user models.User
	if err := config.DB.First(&user, id).Error; err != nil {
		utils.NotFound(c, "Customer not found")
		return
	}

	var subscriptions []models.Subscription
	config.DB.Preload("PurchasedAddons").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&subscriptions)

	stats, statsErr := utils.GetUserStats(config.DB, user.ID)
	if statsErr != nil {
		utils.LogError("Failed to compute stats for customer %d: %v", user.ID, statsErr)
	}

	utils.Success(c, "Customer retrieved successfully", gin.H{
		"customer":      user,
		"subscriptions": subscriptions,
		"stats":         stats,
	})
}

// ToggleCustomerBlock flips a customer between blocked and unblocked.
// Blocked customers fail login and every authenticated request.
func ToggleCustomerBlock(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid customer ID", nil)
		return
	}

	var user models.User
	if err := config.DB.First(&user, id).Error; err != nil {
		utils.NotFound(c, "Customer not found")
		return
	}
	if user.IsStaff {
		utils.Forbidden(c, "Staff accounts cannot be blocked")
		return
	}

	user.IsBlocked = !user.IsBlocked
	if err := config.DB.Model(&user).UpdateColumn("is_blocked", user.IsBlocked).Error; err != nil {
		utils.LogError("Failed to toggle block for customer %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to update customer", nil)
		return
	}

	action := "unblocked"
	if user.IsBlocked {
		action = "blocked"
		// revoke refresh sessions so the block takes effect immediately
		if err := config.DB.Where("user_id = ?", user.ID).Delete(&models.Session{}).Error; err != nil {
			utils.LogError("Failed to revoke sessions for blocked customer %d: %v", user.ID, err)
		}
	}

	utils.LogInfo("Customer %d %s", user.ID, action)
	utils.Success(c, "Customer "+action, gin.H{"customer": user})
}
