package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/prepwise/prepwise-api/internal/models"
)

func TestPreferenceRepositoryUpsertKeepsOneRowPerUser(t *testing.T) {
	db := setupTestDB(t, &models.Preference{})
	repo := NewPreferenceRepository(db)

	_, err := repo.GetByUser(context.Background(), "pref-user")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	first := models.Preference{UserID: "pref-user", Intent: "job_search"}
	require.NoError(t, repo.Upsert(context.Background(), &first))

	second := models.Preference{UserID: "pref-user", Intent: "practice", OnboardingComplete: true}
	require.NoError(t, repo.Upsert(context.Background(), &second))

	stored, err := repo.GetByUser(context.Background(), "pref-user")
	require.NoError(t, err)
	require.Equal(t, "practice", stored.Intent)
	require.True(t, stored.OnboardingComplete)

	var count int64
	require.NoError(t, db.Model(&models.Preference{}).Where("user_id = ?", "pref-user").Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestUserRepositoryUpsertRefreshesProfile(t *testing.T) {
	db := setupTestDB(t, &models.User{})
	repo := NewUserRepository(db)

	user := models.User{ID: "google-sub-1", Provider: "google", Email: "a@example.com", Name: "Ada"}
	require.NoError(t, repo.Upsert(context.Background(), &user))

	renamed := models.User{ID: "google-sub-1", Provider: "google", Email: "a@example.com", Name: "Ada L.", Picture: "https://img.example.com/a.png"}
	require.NoError(t, repo.Upsert(context.Background(), &renamed))

	stored, err := repo.Get(context.Background(), "google-sub-1")
	require.NoError(t, err)
	require.Equal(t, "Ada L.", stored.Name)
	require.Equal(t, "https://img.example.com/a.png", stored.Picture)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", "google-sub-1").Count(&count).Error)
	require.Equal(t, int64(1), count)
}
