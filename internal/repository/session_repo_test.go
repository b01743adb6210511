package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/prepwise/prepwise-api/internal/models"
)

func setupTestDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entities...))
	return db
}

func TestSessionRepositoryListByUserFiltersAndOrders(t *testing.T) {
	db := setupTestDB(t, &models.Session{}, &models.Message{}, &models.Feedback{})
	repo := NewSessionRepository(db)

	now := time.Now()
	older := models.Session{UserID: "user-list", Status: models.SessionStatusSetup, CreatedAt: now.Add(-2 * time.Hour)}
	newer := models.Session{UserID: "user-list", Status: models.SessionStatusCompleted, CreatedAt: now}
	other := models.Session{UserID: "someone-else", Status: models.SessionStatusSetup, CreatedAt: now.Add(-time.Hour)}

	require.NoError(t, db.Create(&older).Error)
	require.NoError(t, db.Create(&newer).Error)
	require.NoError(t, db.Create(&other).Error)

	sessions, err := repo.ListByUser(context.Background(), "user-list")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, newer.ID, sessions[0].ID, "newest session should come first")
	require.Equal(t, older.ID, sessions[1].ID)
}

func TestSessionRepositoryCreateAndGet(t *testing.T) {
	db := setupTestDB(t, &models.Session{}, &models.Message{}, &models.Feedback{})
	repo := NewSessionRepository(db)

	role := "Backend Engineer"
	session := models.Session{UserID: "user-create", Role: &role, Status: models.SessionStatusSetup}
	require.NoError(t, repo.Create(context.Background(), &session))
	require.NotZero(t, session.ID)

	stored, err := repo.Get(context.Background(), session.ID)
	require.NoError(t, err)
	require.Equal(t, models.SessionStatusSetup, stored.Status)
	require.Equal(t, "Backend Engineer", *stored.Role)
	require.Nil(t, stored.StartedAt)
	require.Nil(t, stored.CompletedAt)

	_, err = repo.Get(context.Background(), 999999)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSessionRepositoryUpdateAppliesColumns(t *testing.T) {
	db := setupTestDB(t, &models.Session{}, &models.Message{}, &models.Feedback{})
	repo := NewSessionRepository(db)

	session := models.Session{UserID: "user-update", Status: models.SessionStatusSetup}
	require.NoError(t, repo.Create(context.Background(), &session))

	startedAt := time.Now()
	err := repo.Update(context.Background(), session.ID, map[string]interface{}{
		"status":     models.SessionStatusInProgress,
		"started_at": startedAt,
	})
	require.NoError(t, err)

	stored, err := repo.Get(context.Background(), session.ID)
	require.NoError(t, err)
	require.Equal(t, models.SessionStatusInProgress, stored.Status)
	require.NotNil(t, stored.StartedAt)

	// Unknown ids are a no-op, not an error.
	require.NoError(t, repo.Update(context.Background(), 999999, map[string]interface{}{"status": models.SessionStatusCompleted}))
}

func TestSessionRepositoryDeleteCascades(t *testing.T) {
	db := setupTestDB(t, &models.Session{}, &models.Message{}, &models.Feedback{})
	repo := NewSessionRepository(db)

	session := models.Session{UserID: "user-delete", Status: models.SessionStatusCompleted}
	require.NoError(t, repo.Create(context.Background(), &session))

	require.NoError(t, db.Create(&models.Message{SessionID: session.ID, Role: models.MessageRoleUser, Content: "hello"}).Error)
	require.NoError(t, db.Create(&models.Message{SessionID: session.ID, Role: models.MessageRoleAssistant, Content: "hi"}).Error)
	score := 80
	require.NoError(t, db.Create(&models.Feedback{SessionID: session.ID, OverallScore: &score, Summary: "solid"}).Error)

	require.NoError(t, repo.Delete(context.Background(), session.ID))

	_, err := repo.Get(context.Background(), session.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var messageCount int64
	require.NoError(t, db.Model(&models.Message{}).Where("session_id = ?", session.ID).Count(&messageCount).Error)
	require.Zero(t, messageCount)

	var feedbackCount int64
	require.NoError(t, db.Model(&models.Feedback{}).Where("session_id = ?", session.ID).Count(&feedbackCount).Error)
	require.Zero(t, feedbackCount)
}

func TestMessageRepositoryListBySessionOrdersChronologically(t *testing.T) {
	db := setupTestDB(t, &models.Session{}, &models.Message{}, &models.Feedback{})
	repo := NewMessageRepository(db)

	session := models.Session{UserID: "user-transcript", Status: models.SessionStatusInProgress}
	require.NoError(t, db.Create(&session).Error)

	now := time.Now()
	first := models.Message{SessionID: session.ID, Role: models.MessageRoleAssistant, Content: "question", CreatedAt: now.Add(-time.Minute)}
	second := models.Message{SessionID: session.ID, Role: models.MessageRoleUser, Content: "answer", CreatedAt: now}
	require.NoError(t, repo.Create(context.Background(), &second))
	require.NoError(t, repo.Create(context.Background(), &first))

	messages, err := repo.ListBySession(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "question", messages[0].Content)
	require.Equal(t, "answer", messages[1].Content)
}

func TestFeedbackRepositoryGetBySession(t *testing.T) {
	db := setupTestDB(t, &models.Session{}, &models.Message{}, &models.Feedback{})
	repo := NewFeedbackRepository(db)

	session := models.Session{UserID: "user-feedback", Status: models.SessionStatusCompleted}
	require.NoError(t, db.Create(&session).Error)

	_, err := repo.GetBySession(context.Background(), session.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	score := 72
	feedback := models.Feedback{SessionID: session.ID, OverallScore: &score, Summary: "clear answers"}
	require.NoError(t, repo.Create(context.Background(), &feedback))

	stored, err := repo.GetBySession(context.Background(), session.ID)
	require.NoError(t, err)
	require.Equal(t, 72, *stored.OverallScore)
	require.Equal(t, "clear answers", stored.Summary)
}
