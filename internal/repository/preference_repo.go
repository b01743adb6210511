package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/prepwise/prepwise-api/internal/models"
)

// PreferenceRepository stores per-user onboarding preferences.
type PreferenceRepository interface {
	GetByUser(ctx context.Context, userID string) (models.Preference, error)
	Upsert(ctx context.Context, preference *models.Preference) error
}

type preferenceRepository struct {
	db *gorm.DB
}

// NewPreferenceRepository constructs a preference repository backed by GORM.
func NewPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) GetByUser(ctx context.Context, userID string) (models.Preference, error) {
	var preference models.Preference
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&preference).Error; err != nil {
		return models.Preference{}, err
	}
	return preference, nil
}

func (r *preferenceRepository) Upsert(ctx context.Context, preference *models.Preference) error {
	preference.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"intent", "onboarding_complete", "updated_at"}),
	}).Create(preference).Error
}
