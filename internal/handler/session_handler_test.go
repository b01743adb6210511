package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/prepwise/prepwise-api/internal/dto"
	"github.com/prepwise/prepwise-api/internal/handler"
	"github.com/prepwise/prepwise-api/internal/middleware"
	"github.com/prepwise/prepwise-api/internal/models"
	"github.com/prepwise/prepwise-api/internal/repository"
	"github.com/prepwise/prepwise-api/internal/service"
)

type stubInterviewService struct {
	turn      *service.Turn
	beginErr  error
	openErr   error
	events    []dto.StreamEvent
	streamErr error
}

func (s *stubInterviewService) BeginStart(context.Context, uint) (*service.Turn, error) {
	return s.turn, s.beginErr
}

func (s *stubInterviewService) BeginReply(context.Context, uint, string) (*service.Turn, error) {
	return s.turn, s.beginErr
}

func (s *stubInterviewService) OpenTurn(_ context.Context, turn *service.Turn) (*service.LiveTurn, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return &service.LiveTurn{SessionID: turn.SessionID}, nil
}

func (s *stubInterviewService) StreamTurn(_ context.Context, _ *service.LiveTurn, emit func(dto.StreamEvent) error) error {
	for _, event := range s.events {
		if err := emit(event); err != nil {
			return err
		}
	}
	return s.streamErr
}

type stubEvaluationService struct {
	result dto.SessionEndResponse
	err    error
}

func (s *stubEvaluationService) End(context.Context, uint) (dto.SessionEndResponse, error) {
	return s.result, s.err
}

type sessionTestEnv struct {
	app *fiber.App
	db  *gorm.DB
}

func newSessionTestEnv(t *testing.T, interviews service.InterviewService, evaluations service.EvaluationService) sessionTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Session{}, &models.Message{}, &models.Feedback{}))

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalUserID, "handler-user")
		return c.Next()
	})

	noLimit := func(c *fiber.Ctx) error { return c.Next() }
	h := handler.NewSessionHandler(
		repository.NewSessionRepository(db),
		repository.NewMessageRepository(db),
		repository.NewFeedbackRepository(db),
		interviews,
		evaluations,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)
	h.Register(app.Group("/api/sessions"), noLimit)

	return sessionTestEnv{app: app, db: db}
}

func TestSessionHandlerCreate(t *testing.T) {
	env := newSessionTestEnv(t, &stubInterviewService{}, &stubEvaluationService{})

	payload := bytes.NewBufferString(`{"role": "Backend Engineer", "company": "Acme"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/", payload)
	req.Header.Set("Content-Type", "application/json")

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotZero(t, created.ID)
	require.Equal(t, "handler-user", created.UserID)
	require.Equal(t, models.SessionStatusSetup, created.Status)
	require.Nil(t, created.StartedAt)
	require.Nil(t, created.CompletedAt)
}

func TestSessionHandlerCreateRejectsInvalidPayload(t *testing.T) {
	env := newSessionTestEnv(t, &stubInterviewService{}, &stubEvaluationService{})

	payload := bytes.NewBufferString(`{"templateId": 0}`)
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/", payload)
	req.Header.Set("Content-Type", "application/json")

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionHandlerDetail(t *testing.T) {
	env := newSessionTestEnv(t, &stubInterviewService{}, &stubEvaluationService{})

	session := models.Session{UserID: "handler-user", Status: models.SessionStatusCompleted}
	require.NoError(t, env.db.Create(&session).Error)
	require.NoError(t, env.db.Create(&models.Message{SessionID: session.ID, Role: models.MessageRoleAssistant, Content: "Welcome"}).Error)
	score := 75
	require.NoError(t, env.db.Create(&models.Feedback{SessionID: session.ID, OverallScore: &score, Summary: "Good"}).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+itoa(session.ID), nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var detail dto.SessionDetailResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&detail))
	require.Equal(t, session.ID, detail.ID)
	require.Len(t, detail.Messages, 1)
	require.NotNil(t, detail.Feedback)
	require.Equal(t, 75, *detail.Feedback.OverallScore)
}

func TestSessionHandlerDetailNotFound(t *testing.T) {
	env := newSessionTestEnv(t, &stubInterviewService{}, &stubEvaluationService{})

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/999999", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionHandlerStartStreamsEvents(t *testing.T) {
	interviews := &stubInterviewService{
		turn: &service.Turn{SessionID: 1},
		events: []dto.StreamEvent{
			{Content: "Hello"},
			{Content: " candidate"},
			{Done: true},
		},
	}
	env := newSessionTestEnv(t, interviews, &stubEvaluationService{})

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/1/start", nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `data: {"content":"Hello"}`)
	require.Contains(t, string(body), `data: {"done":true}`)
}

func TestSessionHandlerStartFailsWhenUpstreamRefusesStream(t *testing.T) {
	interviews := &stubInterviewService{
		turn:    &service.Turn{SessionID: 1},
		openErr: errors.New("upstream unavailable"),
	}
	env := newSessionTestEnv(t, interviews, &stubEvaluationService{})

	// The upstream request happens before the response is committed, so a
	// refused stream must surface as a status code, not an error frame.
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/1/start", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.NotEqual(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"error": "Failed to generate reply"}`, string(body))
}

func TestSessionHandlerStartMapsPreparationErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"missing session", service.ErrSessionNotFound, http.StatusNotFound},
		{"completed session", service.ErrSessionCompleted, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newSessionTestEnv(t, &stubInterviewService{beginErr: tc.err}, &stubEvaluationService{})

			req := httptest.NewRequest(http.MethodPost, "/api/sessions/1/start", nil)
			resp, err := env.app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestSessionHandlerPostMessageRejectsEmptyContent(t *testing.T) {
	env := newSessionTestEnv(t, &stubInterviewService{beginErr: service.ErrEmptyMessage}, &stubEvaluationService{})

	payload := bytes.NewBufferString(`{"content": "   "}`)
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/1/messages", payload)
	req.Header.Set("Content-Type", "application/json")

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionHandlerEnd(t *testing.T) {
	score := 88
	evaluations := &stubEvaluationService{
		result: dto.SessionEndResponse{
			Session:  models.Session{ID: 7, UserID: "handler-user", Status: models.SessionStatusCompleted},
			Feedback: &models.Feedback{SessionID: 7, OverallScore: &score, Summary: "Well done"},
		},
	}
	env := newSessionTestEnv(t, &stubInterviewService{}, evaluations)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/7/end", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result dto.SessionEndResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Equal(t, models.SessionStatusCompleted, result.Status)
	require.NotNil(t, result.Feedback)
	require.Equal(t, 88, *result.Feedback.OverallScore)
}

func TestSessionHandlerDelete(t *testing.T) {
	env := newSessionTestEnv(t, &stubInterviewService{}, &stubEvaluationService{})

	session := models.Session{UserID: "handler-user", Status: models.SessionStatusSetup}
	require.NoError(t, env.db.Create(&session).Error)

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/"+itoa(session.ID), nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var count int64
	require.NoError(t, env.db.Model(&models.Session{}).Where("id = ?", session.ID).Count(&count).Error)
	require.Zero(t, count)
}
