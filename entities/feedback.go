package entities

import "time"

type Feedback struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	FarmerID string    `gorm:"index;not null" json:"farmers_id"`
	Date     time.Time `json:"date"`
	Status   *bool     `json:"status,omitempty"` // rich client thumbs up/down
	Comment  string    `json:"comment,omitempty"`
	Channel  string    `json:"channel"` // web|ussd

	CreatedAt time.Time
}
