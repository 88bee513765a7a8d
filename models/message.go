package models

import (
	"time"
)

// Message is a persisted chat message. RoomID is the customer's user id as
// a string; staff agents join the same room to answer.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    string    `gorm:"index;not null" json:"room_id"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
