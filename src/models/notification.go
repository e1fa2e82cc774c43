package models

import "rms/src/types"

type Notification struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	UserID    uint   `gorm:"index" json:"user_id,omitempty"`
	Message   string `json:"message,omitempty"`
	BookingID *uint  `json:"booking_id,omitempty"`
	Read      bool   `json:"read,omitempty"`

	types.Timestamps
}

// NotificationCounter keeps one unread count per user. It is only ever
// touched through a single upsert-increment statement, never read-modify-write.
type NotificationCounter struct {
	UserID uint `gorm:"primarykey" json:"user_id"`
	Count  uint `json:"count"`
}
