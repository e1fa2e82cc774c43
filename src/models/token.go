package models

import (
	"rms/src/types"
	"time"
)

// Token is a single-use account-activation token emailed to a new user.
type Token struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	UserID    uint      `gorm:"index" json:"-"`
	Value     string    `gorm:"uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"index" json:"-"`

	types.Timestamps
}

type PushToken struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	UserID uint   `gorm:"uniqueIndex" json:"user_id"`
	Token  string `json:"token"`

	types.Timestamps
}
