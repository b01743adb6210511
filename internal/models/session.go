package models

import (
	"time"

	"gorm.io/datatypes"
)

// SessionStatus is the lifecycle state of a practice session. Transitions
// only move forward: setup -> in_progress -> completed.
type SessionStatus string

// Session lifecycle states.
const (
	SessionStatusSetup      SessionStatus = "setup"
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
)

// MessageRole identifies who authored a transcript turn.
type MessageRole string

// Valid message roles.
const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Session is one practice interview attempt by one user.
type Session struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	UserID      string        `gorm:"size:64;index;not null" json:"userId"`
	TemplateID  *uint         `json:"templateId"`
	PersonaID   *uint         `json:"personaId"`
	Role        *string       `gorm:"size:255" json:"role"`
	Company     *string       `gorm:"size:255" json:"company"`
	Status      SessionStatus `gorm:"size:32;not null;default:setup" json:"status"`
	StartedAt   *time.Time    `json:"startedAt"`
	CompletedAt *time.Time    `json:"completedAt"`
	CreatedAt   time.Time     `json:"createdAt"`

	Messages []Message `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Feedback *Feedback `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Message is one immutable turn in a session transcript. Rows are only
// appended, ordered by creation time, and removed with their session.
type Message struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	SessionID uint        `gorm:"index;not null" json:"sessionId"`
	Role      MessageRole `gorm:"size:16;not null" json:"role"`
	Content   string      `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Feedback is the rubric-based evaluation of a completed session. At most
// one row exists per session.
type Feedback struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`
	SessionID    uint                        `gorm:"uniqueIndex;not null" json:"sessionId"`
	OverallScore *int                        `json:"overallScore"`
	RubricScores datatypes.JSONMap           `json:"rubricScores"`
	Strengths    datatypes.JSONSlice[string] `json:"strengths"`
	Improvements datatypes.JSONSlice[string] `json:"improvements"`
	Summary      string                      `gorm:"type:text" json:"summary"`
	CreatedAt    time.Time                   `json:"createdAt"`
}
