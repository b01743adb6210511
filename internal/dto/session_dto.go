package dto

import "github.com/prepwise/prepwise-api/internal/models"

// CreateSessionRequest is the payload for POST /api/sessions. All fields
// are optional; the orchestrator falls back to built-in defaults.
type CreateSessionRequest struct {
	TemplateID *uint   `json:"templateId" validate:"omitempty,gt=0"`
	PersonaID  *uint   `json:"personaId" validate:"omitempty,gt=0"`
	Role       *string `json:"role" validate:"omitempty,max=255"`
	Company    *string `json:"company" validate:"omitempty,max=255"`
}

// PostMessageRequest carries one user utterance.
type PostMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// SessionDetailResponse is a session merged with its transcript and
// feedback for GET /api/sessions/:id.
type SessionDetailResponse struct {
	models.Session
	Messages []models.Message `json:"messages"`
	Feedback *models.Feedback `json:"feedback,omitempty"`
}

// SessionEndResponse is the session merged with its feedback, returned by
// POST /api/sessions/:id/end. Feedback is absent when no user turns were
// recorded.
type SessionEndResponse struct {
	models.Session
	Feedback *models.Feedback `json:"feedback,omitempty"`
}

// StreamEvent is one frame of the token relay. Exactly one field is set:
// Content for incremental tokens, Done for the terminal sentinel, Error for
// an in-band failure after bytes were already flushed.
type StreamEvent struct {
	Content string `json:"content,omitempty"`
	Done    bool   `json:"done,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StatsResponse summarises a user's practice history.
type StatsResponse struct {
	TotalSessions     int  `json:"totalSessions"`
	CompletedSessions int  `json:"completedSessions"`
	AverageScore      *int `json:"averageScore"`
	Streak            int  `json:"streak"`
}
