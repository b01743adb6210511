package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/prepwise/prepwise-api/internal/dto"
	"github.com/prepwise/prepwise-api/internal/models"
	"github.com/prepwise/prepwise-api/internal/repository"
)

// PreferenceService stores per-user onboarding state.
type PreferenceService interface {
	// Get returns the user's preferences and whether a row exists yet.
	Get(ctx context.Context, userID string) (models.Preference, bool, error)
	Save(ctx context.Context, userID string, payload dto.PreferenceRequest) (models.Preference, error)
}

type preferenceService struct {
	preferences repository.PreferenceRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewPreferenceService constructs a preference service.
func NewPreferenceService(preferences repository.PreferenceRepository, validate *validator.Validate, logger zerolog.Logger) PreferenceService {
	return &preferenceService{
		preferences: preferences,
		validator:   validate,
		logger:      logger.With().Str("component", "preference_service").Logger(),
	}
}

func (s *preferenceService) Get(ctx context.Context, userID string) (models.Preference, bool, error) {
	preference, err := s.preferences.GetByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Preference{}, false, nil
	}
	if err != nil {
		return models.Preference{}, false, fmt.Errorf("load preferences: %w", err)
	}
	return preference, true, nil
}

func (s *preferenceService) Save(ctx context.Context, userID string, payload dto.PreferenceRequest) (models.Preference, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Preference{}, err
	}

	preference := models.Preference{
		UserID:             userID,
		Intent:             payload.Intent,
		OnboardingComplete: payload.OnboardingComplete,
	}
	if err := s.preferences.Upsert(ctx, &preference); err != nil {
		return models.Preference{}, fmt.Errorf("save preferences: %w", err)
	}

	// Reload so the response carries the canonical row after an upsert.
	saved, err := s.preferences.GetByUser(ctx, userID)
	if err != nil {
		return models.Preference{}, fmt.Errorf("reload preferences: %w", err)
	}
	return saved, nil
}
