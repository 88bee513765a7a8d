package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/proplayhub/backend/config"
	"github.com/proplayhub/backend/models"
	"github.com/proplayhub/backend/utils"
)

// GetNotifications lists the caller's notifications, unread first
func GetNotifications(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)
	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.Notification{}).Where("user_id = ?", user.ID)
	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count notifications for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch notifications", nil)
		return
	}

	var notifications []models.Notification
	if err := query.Order("is_read ASC, created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&notifications).Error; err != nil {
		utils.LogError("Failed to fetch notifications for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch notifications", nil)
		return
	}

	utils.SuccessWithPagination(c, "Notifications retrieved successfully", notifications, total, pagination.Page, pagination.Limit)
}

// MarkNotificationRead marks one notification as read
func MarkNotificationRead(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid notification ID", nil)
		return
	}

	result := config.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, user.ID).
		UpdateColumn("is_read", true)
	if result.Error != nil {
		utils.LogError("Failed to mark notification %d read: %v", id, result.Error)
		utils.InternalServerError(c, "Failed to update notification", nil)
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Notification not found")
		return
	}

	utils.Success(c, "Notification marked as read", nil)
}

// MarkAllNotificationsRead marks every unread notification as read
func MarkAllNotificationsRead(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	if err := config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		UpdateColumn("is_read", true).Error; err != nil {
		utils.LogError("Failed to mark notifications read for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to update notifications", nil)
		return
	}

	utils.Success(c, "All notifications marked as read", nil)
}

// DeleteNotification removes one notification
func DeleteNotification(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid notification ID", nil)
		return
	}

	result := config.DB.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.Notification{})
	if result.Error != nil {
		utils.LogError("Failed to delete notification %d: %v", id, result.Error)
		utils.InternalServerError(c, "Failed to delete notification", nil)
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Notification not found")
		return
	}

	utils.Success(c, "Notification deleted", nil)
}

// RegisterPushTokenRequest represents the push token registration body
type RegisterPushTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// RegisterPushToken stores the device push token used for tier-up pushes
func RegisterPushToken(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req RegisterPushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	if err := config.DB.Model(&user).UpdateColumn("push_token", req.Token).Error; err != nil {
		utils.LogError("Failed to store push token for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to register push token", nil)
		return
	}

	utils.Success(c, "Push token registered", nil)
}
