package models

import "rms/src/types"

type Location struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	CountryID uint   `gorm:"index" json:"country_id,omitempty"`
	Slug      string `gorm:"index" json:"slug,omitempty"`

	Country *Country        `gorm:"foreignKey:country_id" json:"country,omitempty"`
	Values  []LocationValue `gorm:"foreignKey:location_id" json:"values,omitempty"`

	types.Timestamps
}

// LocationValue is the localized display name of a Location for one language.
type LocationValue struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	LocationID uint   `gorm:"index" json:"location_id,omitempty"`
	Language   string `json:"language,omitempty"`
	Name       string `json:"name,omitempty"`

	types.Timestamps
}
