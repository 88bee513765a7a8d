package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account in the system
type User struct {
	gorm.Model
	Username            string    `gorm:"uniqueIndex;not null" json:"username"`
	Email               string    `gorm:"uniqueIndex;not null" json:"email"`
	Password            string    `json:"-"`
	FirstName           string    `json:"first_name"`
	LastName            string    `json:"last_name"`
	Phone               string    `json:"phone"`
	AvatarURL           string    `json:"avatar_url"`
	PushToken           string    `json:"-"`
	PlatformPreferences []string  `gorm:"serializer:json" json:"platform_preferences"`
	IsBlocked           bool      `json:"is_blocked"`
	IsVerified          bool      `json:"is_verified" gorm:"default:false"`
	IsStaff             bool      `json:"is_staff" gorm:"default:false"`
	OTP                 string    `json:"-"`
	OTPExpiresAt        time.Time `json:"-"`
	LastLoginAt         time.Time `json:"last_login_at"`
	GoogleID            string    `gorm:"index" json:"google_id"`
}

// Session stores an opaque refresh token for a logged-in user
type Session struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	RefreshToken string    `gorm:"uniqueIndex;not null" json:"-"`
	UserAgent    string    `json:"user_agent"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// Expired reports whether the session is past its TTL
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
