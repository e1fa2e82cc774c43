package models

import "rms/src/types"

type Property struct {
	ID          uint               `gorm:"primarykey" json:"id"`
	Name        string             `json:"name,omitempty"`
	Slug        string             `gorm:"index" json:"slug,omitempty"`
	Type        types.PropertyType `gorm:"type:text" json:"type,omitempty"`
	AgencyID    uint               `gorm:"index" json:"agency_id,omitempty"`
	Description string             `json:"description,omitempty"`
	Image       string             `json:"image,omitempty"`

	Bedrooms      uint    `json:"bedrooms,omitempty"`
	Bathrooms     uint    `json:"bathrooms,omitempty"`
	Kitchens      uint    `gorm:"default:1" json:"kitchens,omitempty"`
	ParkingSpaces uint    `json:"parking_spaces,omitempty"`
	Size          float64 `json:"size,omitempty"`
	PetsAllowed   bool    `json:"pets_allowed,omitempty"`
	Furnished     bool    `json:"furnished,omitempty"`
	Aircon        bool    `json:"aircon,omitempty"`
	Available     bool    `gorm:"default:true" json:"available,omitempty"`
	Hidden        bool    `json:"hidden,omitempty"`

	LocationID uint   `gorm:"index" json:"location_id,omitempty"`
	Address    string `json:"address,omitempty"`

	Price float64 `json:"price,omitempty"`

	// Cancellation is the protection fee. Negative means protection is not
	// offered for this property.
	Cancellation float64          `json:"cancellation,omitempty"`
	RentalTerm   types.RentalTerm `gorm:"type:text" json:"rental_term,omitempty"`

	Agency   *User     `gorm:"foreignKey:agency_id" json:"agency,omitempty"`
	Location *Location `gorm:"foreignKey:location_id" json:"location,omitempty"`

	types.Timestamps
}
