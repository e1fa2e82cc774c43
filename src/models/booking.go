package models

import (
	"rms/src/types"
	"time"
)

type Booking struct {
	ID         uint                `gorm:"primarykey" json:"id"`
	AgencyID   uint                `gorm:"index" json:"agency_id,omitempty"`
	PropertyID uint                `gorm:"index" json:"property_id,omitempty"`
	RenterID   *uint               `gorm:"index" json:"renter_id,omitempty"`
	LocationID uint                `json:"location_id,omitempty"`
	From       time.Time           `json:"from,omitempty"`
	To         time.Time           `json:"to,omitempty"`
	Status     types.BookingStatus `gorm:"type:text;index" json:"status,omitempty"`
	Price      float64             `json:"price,omitempty"`

	// Cancellation records that the renter bought cancellation protection.
	Cancellation bool `json:"cancellation,omitempty"`

	// CancelRequest is set when the renter asks to cancel; the agency or an
	// admin resolves it by moving the booking to the cancelled status.
	CancelRequest bool `json:"cancel_request,omitempty"`

	// ExpiresAt marks a provisional booking awaiting payment confirmation.
	// The reaper deletes the row once the deadline passes; confirmation
	// clears the field and promotes the booking to a permanent record.
	ExpiresAt *time.Time `gorm:"index" json:"-"`

	SessionID       *string `gorm:"index" json:"session_id,omitempty"`
	PaymentIntentID *string `json:"payment_intent_id,omitempty"`
	PayPalOrderID   *string `json:"paypal_order_id,omitempty"`
	CustomerID      *string `json:"customer_id,omitempty"`

	Agency   *User     `gorm:"foreignKey:agency_id" json:"agency,omitempty"`
	Property *Property `gorm:"foreignKey:property_id" json:"property,omitempty"`
	Renter   *User     `gorm:"foreignKey:renter_id" json:"renter,omitempty"`
	Location *Location `gorm:"foreignKey:location_id" json:"location,omitempty"`

	types.Timestamps
}
