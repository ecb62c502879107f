package entities

import "time"

type Farmer struct {
	FarmerID     string  `gorm:"primaryKey" json:"farmers_id"`
	FullName     string  `json:"full_name"`
	Contact      string  `json:"contact"`
	LandSize     float64 `json:"land_size"` // acres
	SoilType     string  `json:"soil_type"`
	PasswordHash string  `json:"-"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
