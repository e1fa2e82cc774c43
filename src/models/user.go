package models

import (
	"rms/src/types"
	"time"
)

type User struct {
	ID       uint            `gorm:"primarykey" json:"id"`
	FullName string          `json:"full_name,omitempty"`
	Email    string          `gorm:"uniqueIndex" json:"email,omitempty"`
	Phone    string          `json:"phone,omitempty"`
	Password string          `json:"-"`
	Type     types.UserType  `gorm:"type:text;default:'user';index" json:"type,omitempty"`
	Language string          `gorm:"default:'en'" json:"language,omitempty"`
	Avatar   string          `json:"avatar,omitempty"`
	Bio      string          `json:"bio,omitempty"`
	Location string          `json:"location,omitempty"`
	Birthdate *time.Time     `json:"birth_date,omitempty"`

	Verified    bool `json:"verified,omitempty"`
	Active      bool `json:"active,omitempty"`
	Blacklisted bool `json:"blacklisted,omitempty"`

	EnableEmailNotifications bool `gorm:"default:true" json:"enable_email_notifications,omitempty"`

	// PayLater allows an agency's renters to defer payment to offline settlement.
	PayLater bool `json:"pay_later,omitempty"`

	// CustomerID is the Stripe customer reference, set on first card payment.
	CustomerID *string `json:"-"`

	// ExpiresAt marks a provisional, not-yet-verified account. The reaper
	// deletes such accounts once the deadline passes.
	ExpiresAt *time.Time `gorm:"index" json:"-"`

	Properties []Property `gorm:"foreignKey:agency_id" json:"properties,omitempty"`
	Bookings   []Booking  `gorm:"foreignKey:renter_id" json:"bookings,omitempty"`

	types.Timestamps
}
