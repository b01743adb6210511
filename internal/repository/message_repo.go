package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/prepwise/prepwise-api/internal/models"
)

// MessageRepository appends and reads transcript turns. Messages are never
// updated or deleted individually.
type MessageRepository interface {
	ListBySession(ctx context.Context, sessionID uint) ([]models.Message, error)
	Create(ctx context.Context, message *models.Message) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository constructs a message repository backed by GORM.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) ListBySession(ctx context.Context, sessionID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}
