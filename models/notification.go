package models

import (
	"gorm.io/gorm"
)

// Notification kinds
const (
	NotificationTypeAchievement = "achievement"
	NotificationTypeReceipt     = "receipt"
	NotificationTypePromo       = "promo"
	NotificationTypeSystem      = "system"
)

// Notification is an in-app notification for a user
type Notification struct {
	gorm.Model
	UserID uint   `gorm:"index;not null" json:"user_id"`
	Type   string `gorm:"default:'system'" json:"type"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	IsRead bool   `gorm:"default:false" json:"is_read"`
}
