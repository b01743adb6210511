package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/prepwise/prepwise-api/internal/dto"
	"github.com/prepwise/prepwise-api/internal/models"
	"github.com/prepwise/prepwise-api/internal/repository"
)

// StatsService aggregates a user's practice history for the dashboard.
type StatsService interface {
	Summary(ctx context.Context, userID string) (dto.StatsResponse, error)
}

type statsService struct {
	sessions repository.SessionRepository
	feedback repository.FeedbackRepository
	logger   zerolog.Logger
	now      func() time.Time
}

// NewStatsService constructs a stats service.
func NewStatsService(sessions repository.SessionRepository, feedback repository.FeedbackRepository, logger zerolog.Logger) StatsService {
	return &statsService{
		sessions: sessions,
		feedback: feedback,
		logger:   logger.With().Str("component", "stats_service").Logger(),
		now:      time.Now,
	}
}

func (s *statsService) Summary(ctx context.Context, userID string) (dto.StatsResponse, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return dto.StatsResponse{}, fmt.Errorf("list sessions: %w", err)
	}

	stats := dto.StatsResponse{TotalSessions: len(sessions)}

	totalScore := 0
	scoreCount := 0
	for _, session := range sessions {
		if session.Status != models.SessionStatusCompleted {
			continue
		}
		stats.CompletedSessions++

		feedback, err := s.feedback.GetBySession(ctx, session.ID)
		if err != nil || feedback.OverallScore == nil || *feedback.OverallScore <= 0 {
			continue
		}
		totalScore += *feedback.OverallScore
		scoreCount++
	}

	if scoreCount > 0 {
		average := int(math.Round(float64(totalScore) / float64(scoreCount)))
		stats.AverageScore = &average
	}

	stats.Streak = practiceStreak(sessions, s.now())
	return stats, nil
}

// practiceStreak counts consecutive calendar days with at least one session,
// walking back from today. A streak that ended yesterday still counts.
func practiceStreak(sessions []models.Session, now time.Time) int {
	seen := make(map[string]struct{}, len(sessions))
	for _, session := range sessions {
		seen[session.CreatedAt.Format("2006-01-02")] = struct{}{}
	}
	if len(seen) == 0 {
		return 0
	}

	cursor := now
	if _, ok := seen[cursor.Format("2006-01-02")]; !ok {
		cursor = cursor.AddDate(0, 0, -1)
		if _, ok := seen[cursor.Format("2006-01-02")]; !ok {
			return 0
		}
	}

	streak := 0
	for {
		if _, ok := seen[cursor.Format("2006-01-02")]; !ok {
			break
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}
