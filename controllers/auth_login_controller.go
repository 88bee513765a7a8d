package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/proplayhub/backend/config"
	"github.com/proplayhub/backend/models"
	"github.com/proplayhub/backend/utils"
)

// refreshCookieName is the HTTP-only cookie carrying the refresh token
const refreshCookieName = "proplayhub_refresh"

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginUser checks credentials, issues an access token and persists a
// refresh session set as an HTTP-only cookie.
func LoginUser(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	utils.LogInfo("Login attempt for email: %s", req.Email)

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.LogError("Login failed - user not found: %s", req.Email)
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		utils.LogError("Login failed - wrong password for: %s", req.Email)
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	if user.IsBlocked {
		utils.LogError("Login attempt by blocked user: %s", req.Email)
		utils.Forbidden(c, "Account is blocked")
		return
	}

	if !user.IsVerified {
		utils.LogError("Login attempt by unverified user: %s", req.Email)
		utils.Forbidden(c, "Please verify your email first")
		return
	}

	accessToken, err := utils.GenerateToken(&user)
	if err != nil {
		utils.LogError("Failed to generate token for %s: %v", req.Email, err)
		utils.InternalServerError(c, "Failed to generate token", nil)
		return
	}

	session := models.Session{
		UserID:       user.ID,
		RefreshToken: utils.GenerateRefreshToken(),
		UserAgent:    c.Request.UserAgent(),
		ExpiresAt:    time.Now().Add(utils.RefreshTokenTTL),
	}
	if err := config.DB.Create(&session).Error; err != nil {
		utils.LogError("Failed to persist session for %s: %v", req.Email, err)
		utils.InternalServerError(c, "Failed to create session", nil)
		return
	}

	config.DB.Model(&user).UpdateColumn("last_login_at", time.Now())

	c.SetCookie(refreshCookieName, session.RefreshToken,
		int(utils.RefreshTokenTTL.Seconds()), "/", "", false, true)

	utils.LogInfo("User %s logged in", user.Email)
	utils.Success(c, "Login successful", gin.H{
		"access_token": accessToken,
		"user":         user,
		"expires_in":   int(utils.AccessTokenTTL.Seconds()),
	})
}

// RefreshToken rotates the refresh session and issues a fresh access token
func RefreshToken(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil || refreshToken == "" {
		utils.Unauthorized(c, "No refresh token")
		return
	}

	var session models.Session
	if err := config.DB.Where("refresh_token = ?", refreshToken).First(&session).Error; err != nil {
		utils.LogError("Refresh failed - session not found")
		utils.Unauthorized(c, "Invalid refresh token")
		return
	}

	if session.Expired() {
		config.DB.Delete(&session)
		utils.Unauthorized(c, "Refresh token expired")
		return
	}

	var user models.User
	if err := config.DB.First(&user, session.UserID).Error; err != nil {
		utils.Unauthorized(c, "User not found")
		return
	}
	if user.IsBlocked {
		utils.Forbidden(c, "Account is blocked")
		return
	}

	accessToken, err := utils.GenerateToken(&user)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate token", nil)
		return
	}

	// rotate the opaque token on every refresh
	newToken := utils.GenerateRefreshToken()
	if err := config.DB.Model(&session).Updates(map[string]interface{}{
		"refresh_token": newToken,
		"expires_at":    time.Now().Add(utils.RefreshTokenTTL),
	}).Error; err != nil {
		utils.InternalServerError(c, "Failed to rotate session", nil)
		return
	}

	c.SetCookie(refreshCookieName, newToken,
		int(utils.RefreshTokenTTL.Seconds()), "/", "", false, true)

	utils.Success(c, "Token refreshed", gin.H{
		"access_token": accessToken,
		"expires_in":   int(utils.AccessTokenTTL.Seconds()),
	})
}

// Logout deletes the refresh session and clears the cookie
func Logout(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err == nil && refreshToken != "" {
		if err := config.DB.Where("refresh_token = ?", refreshToken).Delete(&models.Session{}).Error; err != nil {
			utils.LogError("Failed to delete session on logout: %v", err)
		}
	}

	c.SetCookie(refreshCookieName, "", -1, "/", "", false, true)
	utils.Success(c, "Logged out", nil)
}
