package models

import "rms/src/types"

type Country struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Slug string `gorm:"index" json:"slug,omitempty"`

	Values []CountryValue `gorm:"foreignKey:country_id" json:"values,omitempty"`

	types.Timestamps
}

type CountryValue struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	CountryID uint   `gorm:"index" json:"country_id,omitempty"`
	Language  string `json:"language,omitempty"`
	Name      string `json:"name,omitempty"`

	types.Timestamps
}
