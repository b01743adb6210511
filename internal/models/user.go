package models

import "time"

// User is an authenticated identity established through OAuth. The ID is
// the provider subject claim.
type User struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Provider  string    `gorm:"size:32;not null" json:"provider"`
	Email     string    `gorm:"size:255;index" json:"email"`
	Name      string    `gorm:"size:255" json:"name"`
	Picture   string    `gorm:"size:512" json:"picture"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
