package models

// Persona is an interviewer character. Its system prompt steers the
// completion model for the whole conversation.
type Persona struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:255;not null" json:"name"`
	Style        string `gorm:"size:64;not null" json:"style"`
	Description  string `gorm:"type:text" json:"description"`
	SystemPrompt string `gorm:"type:text;not null" json:"systemPrompt"`
	AvatarURL    string `gorm:"size:512" json:"avatarUrl"`
}
