package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prepwise/prepwise-api/internal/models"
	"github.com/prepwise/prepwise-api/internal/repository"
)

func TestStatsServiceSummaryAveragesAndCounts(t *testing.T) {
	db := setupInterviewTestDB(t)

	now := time.Now()
	completedA := models.Session{UserID: "stats-user", Status: models.SessionStatusCompleted, CreatedAt: now}
	completedB := models.Session{UserID: "stats-user", Status: models.SessionStatusCompleted, CreatedAt: now.Add(-24 * time.Hour)}
	pending := models.Session{UserID: "stats-user", Status: models.SessionStatusSetup, CreatedAt: now.Add(-48 * time.Hour)}
	require.NoError(t, db.Create(&completedA).Error)
	require.NoError(t, db.Create(&completedB).Error)
	require.NoError(t, db.Create(&pending).Error)

	scoreA, scoreB := 80, 61
	require.NoError(t, db.Create(&models.Feedback{SessionID: completedA.ID, OverallScore: &scoreA}).Error)
	require.NoError(t, db.Create(&models.Feedback{SessionID: completedB.ID, OverallScore: &scoreB}).Error)

	svc := NewStatsService(repository.NewSessionRepository(db), repository.NewFeedbackRepository(db), zerolog.Nop())

	stats, err := svc.Summary(context.Background(), "stats-user")
	require.NoError(t, err)
	require.Equal(t, 3, stats.TotalSessions)
	require.Equal(t, 2, stats.CompletedSessions)
	require.NotNil(t, stats.AverageScore)
	require.Equal(t, 71, *stats.AverageScore, "average rounds to nearest integer")
	require.Equal(t, 3, stats.Streak, "three consecutive practice days")
}

func TestStatsServiceSummaryWithoutScores(t *testing.T) {
	db := setupInterviewTestDB(t)

	session := models.Session{UserID: "unscored-user", Status: models.SessionStatusCompleted, CreatedAt: time.Now()}
	require.NoError(t, db.Create(&session).Error)

	svc := NewStatsService(repository.NewSessionRepository(db), repository.NewFeedbackRepository(db), zerolog.Nop())

	stats, err := svc.Summary(context.Background(), "unscored-user")
	require.NoError(t, err)
	require.Equal(t, 1, stats.CompletedSessions)
	require.Nil(t, stats.AverageScore, "no scored feedback means no average")
}

func TestPracticeStreak(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	day := func(offset int) models.Session {
		return models.Session{CreatedAt: now.AddDate(0, 0, offset)}
	}

	require.Equal(t, 0, practiceStreak(nil, now))
	require.Equal(t, 1, practiceStreak([]models.Session{day(0)}, now))
	require.Equal(t, 3, practiceStreak([]models.Session{day(0), day(-1), day(-2)}, now))

	// A streak that ended yesterday still counts.
	require.Equal(t, 2, practiceStreak([]models.Session{day(-1), day(-2)}, now))

	// A gap breaks the streak.
	require.Equal(t, 1, practiceStreak([]models.Session{day(0), day(-2), day(-3)}, now))
	require.Equal(t, 0, practiceStreak([]models.Session{day(-3)}, now))
}
