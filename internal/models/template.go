package models

import "gorm.io/datatypes"

// Template difficulty levels.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Template is a reusable interview scenario: a rubric plus a pool of
// default questions. Seeded at startup and read-only afterwards.
type Template struct {
	ID               uint                        `gorm:"primaryKey" json:"id"`
	Name             string                      `gorm:"size:255;not null" json:"name"`
	Description      string                      `gorm:"type:text" json:"description"`
	Category         string                      `gorm:"size:64;not null" json:"category"`
	RubricItems      datatypes.JSONSlice[string] `gorm:"not null" json:"rubricItems"`
	DefaultQuestions datatypes.JSONSlice[string] `gorm:"not null" json:"defaultQuestions"`
	Difficulty       string                      `gorm:"size:32;default:medium" json:"difficulty"`
}
