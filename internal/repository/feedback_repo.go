package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/prepwise/prepwise-api/internal/models"
)

// FeedbackRepository persists session evaluations. Each session has zero or
// one feedback row.
type FeedbackRepository interface {
	GetBySession(ctx context.Context, sessionID uint) (models.Feedback, error)
	Create(ctx context.Context, feedback *models.Feedback) error
}

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository constructs a feedback repository backed by GORM.
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) GetBySession(ctx context.Context, sessionID uint) (models.Feedback, error) {
	var feedback models.Feedback
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&feedback).Error; err != nil {
		return models.Feedback{}, err
	}
	return feedback, nil
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}
