package service

import (
	"context"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/prepwise/prepwise-api/internal/dto"
	"github.com/prepwise/prepwise-api/internal/models"
	"github.com/prepwise/prepwise-api/internal/repository"
)

func newTestPreferenceService(t *testing.T) PreferenceService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Preference{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewPreferenceService(repository.NewPreferenceRepository(db), validate, zerolog.Nop())
}

func TestPreferenceServiceGetReportsMissingRow(t *testing.T) {
	svc := newTestPreferenceService(t)

	_, found, err := svc.Get(context.Background(), "pref-svc-missing")
	require.NoError(t, err)
	require.False(t, found)
}

func TestPreferenceServiceSaveUpserts(t *testing.T) {
	svc := newTestPreferenceService(t)

	saved, err := svc.Save(context.Background(), "pref-svc-user", dto.PreferenceRequest{Intent: "job_search"})
	require.NoError(t, err)
	require.Equal(t, "job_search", saved.Intent)
	require.False(t, saved.OnboardingComplete)

	updated, err := svc.Save(context.Background(), "pref-svc-user", dto.PreferenceRequest{Intent: "practice", OnboardingComplete: true})
	require.NoError(t, err)
	require.Equal(t, saved.ID, updated.ID, "upsert must reuse the existing row")
	require.Equal(t, "practice", updated.Intent)
	require.True(t, updated.OnboardingComplete)
}

func TestPreferenceServiceSaveValidatesIntent(t *testing.T) {
	svc := newTestPreferenceService(t)

	_, err := svc.Save(context.Background(), "pref-svc-long", dto.PreferenceRequest{Intent: strings.Repeat("x", 65)})
	require.Error(t, err)
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
}
