package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/proplayhub/backend/config"
	"github.com/proplayhub/backend/models"
	"github.com/proplayhub/backend/utils"
)

// GetProfile returns the caller's account
func GetProfile(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)
	utils.Success(c, "Profile retrieved successfully", gin.H{"user": user})
}

// UpdateProfileRequest represents the profile update body
type UpdateProfileRequest struct {
	FirstName           string   `json:"first_name"`
	LastName            string   `json:"last_name"`
	AvatarURL           string   `json:"avatar_url"`
	PlatformPreferences []string `json:"platform_preferences"`
}

// UpdateProfile updates display fields and platform preferences
func UpdateProfile(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	for _, p := range req.PlatformPreferences {
		if !models.IsValidCategory(p) {
			utils.BadRequest(c, "Invalid platform preference", p)
			return
		}
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.AvatarURL = req.AvatarURL
	user.PlatformPreferences = req.PlatformPreferences

	if err := config.DB.Save(&user).Error; err != nil {
		utils.LogError("Failed to update profile for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to update profile", nil)
		return
	}

	utils.Success(c, "Profile updated successfully", gin.H{"user": user})
}

// ChangePasswordRequest represents the change-password body
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// ChangePassword rotates the password and revokes every other session
func ChangePassword(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	if !utils.CheckPassword(req.CurrentPassword, user.Password) {
		utils.Unauthorized(c, "Current password is incorrect")
		return
	}
	if valid, msg := utils.ValidatePassword(req.NewPassword); !valid {
		utils.BadRequest(c, "Invalid password", msg)
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		utils.BadRequest(c, "Passwords do not match", nil)
		return
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.LogError("Failed to hash new password for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to change password", nil)
		return
	}

	if err := config.DB.Model(&user).UpdateColumn("password", hashed).Error; err != nil {
		utils.LogError("Failed to change password for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to change password", nil)
		return
	}

	if err := config.DB.Where("user_id = ?", user.ID).Delete(&models.Session{}).Error; err != nil {
		utils.LogError("Failed to revoke sessions for user %d: %v", user.ID, err)
	}

	utils.LogInfo("Password changed for user %d", user.ID)
	utils.Success(c, "Password changed successfully. Please log in again.", nil)
}
