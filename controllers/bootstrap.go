package controllers

import (
	"os"

	"github.com/proplayhub/backend/config"
	"github.com/proplayhub/backend/models"
	"github.com/proplayhub/backend/utils"
)

// Mailer is the shared SMTP client used when the outbox is not wired.
// Set from main during startup.
var Mailer *utils.Mailer

// CreateSampleStaff seeds a staff account from SEED_STAFF_EMAIL and
// SEED_STAFF_PASSWORD when no staff user exists yet. No-op otherwise.
func CreateSampleStaff() {
	email := os.Getenv("SEED_STAFF_EMAIL")
	password := os.Getenv("SEED_STAFF_PASSWORD")
	if email == "" || password == "" {
		return
	}

	var count int64
	if err := config.DB.Model(&models.User{}).Where("is_staff = ?", true).Count(&count).Error; err != nil {
		utils.LogError("Staff seed check failed: %v", err)
		return
	}
	if count > 0 {
		return
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		utils.LogError("Failed to hash seed staff password: %v", err)
		return
	}

	staff := models.User{
		Username:   "support",
		Email:      email,
		Password:   hashed,
		FirstName:  "Support",
		IsStaff:    true,
		IsVerified: true,
	}
	if err := config.DB.Create(&staff).Error; err != nil {
		utils.LogError("Failed to seed staff account: %v", err)
		return
	}
	utils.LogInfo("Seeded staff account %s", email)
}
