package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/prepwise/prepwise-api/internal/models"
)

// SessionRepository persists practice sessions.
type SessionRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Session, error)
	Get(ctx context.Context, id uint) (models.Session, error)
	Create(ctx context.Context, session *models.Session) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository constructs a session repository backed by GORM.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) ListByUser(ctx context.Context, userID string) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) Get(ctx context.Context, id uint) (models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// Update applies the given column updates. A missing id is a no-op.
func (r *sessionRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Delete removes the session together with its transcript and feedback.
// The dependent rows are deleted explicitly so the cascade does not rely
// on driver-level foreign key enforcement.
func (r *sessionRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Where("session_id = ?", id).Delete(&models.Message{}).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Where("session_id = ?", id).Delete(&models.Feedback{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.Session{}, id).Error
}
