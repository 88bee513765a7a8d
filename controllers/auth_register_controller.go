package controllers

import (
	"context"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/proplayhub/backend/config"
	"github.com/proplayhub/backend/models"
	"github.com/proplayhub/backend/queue"
	"github.com/proplayhub/backend/utils"
)

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username        string   `json:"username" binding:"required"`
	Email           string   `json:"email" binding:"required,email"`
	Password        string   `json:"password" binding:"required"`
	ConfirmPassword string   `json:"confirm_password" binding:"required"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Platforms       []string `json:"platforms"`
}

// RegistrationData represents the pending registration stored in session
// until the OTP is verified
type RegistrationData struct {
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	OTP        string   `json:"otp"`
	OTPExpires int64    `json:"otp_expires"`
	Username   string   `json:"username"`
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	Platforms  []string `json:"platforms"`
}

// RegisterUser validates the signup request, stashes it in the session and
// emails a verification OTP. The account is only created on OTP verification.
func RegisterUser(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Registration attempt failed - Invalid request format: %v", err)
		utils.BadRequest(c, "Invalid request format", "Please check your input data and ensure all required fields are provided correctly.")
		return
	}

	utils.LogInfo("Registration attempt for email: %s, username: %s", req.Email, req.Username)

	if valid, msg := utils.ValidateUsername(req.Username); !valid {
		utils.BadRequest(c, "Invalid username", msg)
		return
	}
	if valid, msg := utils.ValidateEmail(req.Email); !valid {
		utils.BadRequest(c, "Invalid email", msg)
		return
	}
	if valid, msg := utils.ValidatePassword(req.Password); !valid {
		utils.BadRequest(c, "Invalid password", msg)
		return
	}
	if req.Password != req.ConfirmPassword {
		utils.BadRequest(c, "Passwords do not match", "Password and confirm password must be the same.")
		return
	}
	for _, p := range req.Platforms {
		if !models.IsValidCategory(p) {
			utils.BadRequest(c, "Invalid platform preference", p)
			return
		}
	}

	var existing models.User
	if err := config.DB.Where("email = ? OR username = ?", req.Email, req.Username).First(&existing).Error; err == nil {
		utils.LogError("Registration attempt failed - email or username taken: %s / %s", req.Email, req.Username)
		utils.Conflict(c, "Email or username already in use", nil)
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.LogError("Failed to hash password for %s: %v", req.Email, err)
		utils.InternalServerError(c, "Failed to process registration", nil)
		return
	}

	otp := utils.GenerateOTP()
	data := RegistrationData{
		Email:      req.Email,
		Password:   hashed,
		OTP:        otp,
		OTPExpires: time.Now().Add(15 * time.Minute).Unix(),
		Username:   req.Username,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Platforms:  req.Platforms,
	}

	session := sessions.Default(c)
	session.Set("registration", data)
	if err := session.Save(); err != nil {
		utils.LogError("Failed to save registration session for %s: %v", req.Email, err)
		utils.InternalServerError(c, "Failed to process registration", nil)
		return
	}

	sendOTPEmail(req.Email, otp)

	utils.Success(c, "OTP sent to your email. Verify to complete registration.", gin.H{
		"email": req.Email,
	})
}

// VerifyOTPRequest represents the OTP verification body
type VerifyOTPRequest struct {
	OTP string `json:"otp" binding:"required"`
}

// VerifyOTP completes registration by checking the OTP against the session
func VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	session := sessions.Default(c)
	raw := session.Get("registration")
	if raw == nil {
		utils.BadRequest(c, "No pending registration found", nil)
		return
	}
	data, ok := raw.(RegistrationData)
	if !ok {
		utils.BadRequest(c, "Invalid registration session", nil)
		return
	}

	if time.Now().Unix() > data.OTPExpires {
		utils.BadRequest(c, "OTP has expired", nil)
		return
	}
	if req.OTP != data.OTP {
		utils.BadRequest(c, "Invalid OTP", nil)
		return
	}

	user := models.User{
		Username:            data.Username,
		Email:               data.Email,
		Password:            data.Password,
		FirstName:           data.FirstName,
		LastName:            data.LastName,
		PlatformPreferences: data.Platforms,
		IsVerified:          true,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		utils.LogError("Failed to create user %s: %v", data.Email, err)
		utils.Conflict(c, "Email or username already in use", nil)
		return
	}

	session.Delete("registration")
	session.Save()

	utils.LogInfo("User %s registered successfully", user.Email)
	utils.Created(c, "Registration complete", gin.H{"user": user})
}

// sendOTPEmail rides the outbox when it is wired, otherwise sends inline.
// Failures are logged only; the OTP can be re-requested.
func sendOTPEmail(to, otp string) {
	if queue.Tasks != nil {
		if err := queue.Tasks.EnqueueEmailOTP(context.Background(), queue.EmailOTPPayload{To: to, OTP: otp}); err != nil {
			utils.LogError("Failed to enqueue OTP email for %s: %v", to, err)
		}
		return
	}
	if Mailer == nil {
		utils.LogError("No mailer configured, OTP for %s not sent", to)
		return
	}
	if err := Mailer.SendOTP(to, otp); err != nil {
		utils.LogError("Failed to send OTP email to %s: %v", to, err)
	}
}
