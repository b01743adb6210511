package models

import "time"

// Preference stores per-user onboarding state. One row per user, upserted
// on write.
type Preference struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UserID             string    `gorm:"size:64;uniqueIndex;not null" json:"userId"`
	Intent             string    `gorm:"size:64" json:"intent"`
	OnboardingComplete bool      `gorm:"not null;default:false" json:"onboardingComplete"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}
