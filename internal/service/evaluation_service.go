package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/prepwise/prepwise-api/internal/dto"
	"github.com/prepwise/prepwise-api/internal/models"
	"github.com/prepwise/prepwise-api/internal/observability"
	"github.com/prepwise/prepwise-api/internal/repository"
	"github.com/prepwise/prepwise-api/internal/seed"
	"github.com/prepwise/prepwise-api/pkg/ai"
)

// feedbackSchema audits decoded evaluation payloads. Violations are logged
// and counted, never surfaced: feedback parsing stays best-effort.
const feedbackSchema = `{
	"type": "object",
	"properties": {
		"overallScore": {"type": "integer", "minimum": 1, "maximum": 100},
		"rubricScores": {"type": "object", "additionalProperties": {"type": "integer"}},
		"strengths": {"type": "array", "items": {"type": "string"}},
		"improvements": {"type": "array", "items": {"type": "string"}},
		"summary": {"type": "string"}
	},
	"required": ["overallScore", "rubricScores", "summary"]
}`

// EvaluationService scores completed sessions against their template rubric.
type EvaluationService interface {
	End(ctx context.Context, sessionID uint) (dto.SessionEndResponse, error)
}

type evaluationService struct {
	sessions     repository.SessionRepository
	messages     repository.MessageRepository
	templates    repository.TemplateRepository
	feedback     repository.FeedbackRepository
	model        ai.Interviewer
	maxTokens    int
	events       *nats.Conn
	eventSubject string
	schema       *jsonschema.Schema
	logger       zerolog.Logger
	tracer       trace.Tracer
}

// NewEvaluationService constructs the evaluation orchestrator. The NATS
// connection is optional; when nil, completion events are not published.
func NewEvaluationService(
	sessions repository.SessionRepository,
	messages repository.MessageRepository,
	templates repository.TemplateRepository,
	feedback repository.FeedbackRepository,
	model ai.Interviewer,
	maxTokens int,
	events *nats.Conn,
	logger zerolog.Logger,
) EvaluationService {
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &evaluationService{
		sessions:     sessions,
		messages:     messages,
		templates:    templates,
		feedback:     feedback,
		model:        model,
		maxTokens:    maxTokens,
		events:       events,
		eventSubject: "prep.sessions.evaluated",
		schema:       jsonschema.MustCompileString("feedback.schema.json", feedbackSchema),
		logger:       logger.With().Str("component", "evaluation_service").Logger(),
		tracer:       otel.Tracer("github.com/prepwise/prepwise-api/internal/service/evaluation"),
	}
}

type feedbackPayload struct {
	OverallScore *int           `json:"overallScore"`
	RubricScores map[string]int `json:"rubricScores"`
	Strengths    []string       `json:"strengths"`
	Improvements []string       `json:"improvements"`
	Summary      string         `json:"summary"`
}

// End marks the session completed and, when at least one user turn exists,
// requests a structured evaluation and persists it as feedback. Returns the
// session merged with its feedback, which stays absent when no user turns
// were recorded or the model produced nothing parseable.
func (s *evaluationService) End(ctx context.Context, sessionID uint) (dto.SessionEndResponse, error) {
	ctx, span := s.tracer.Start(ctx, "evaluation.end", trace.WithAttributes(
		attribute.Int("session.id", int(sessionID)),
	))
	defer span.End()

	session, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SessionEndResponse{}, ErrSessionNotFound
	}
	if err != nil {
		return dto.SessionEndResponse{}, fmt.Errorf("load session %d: %w", sessionID, err)
	}

	// Status only moves forward; completedAt is stamped exactly once.
	if session.Status != models.SessionStatusCompleted {
		updates := map[string]interface{}{
			"status":       models.SessionStatusCompleted,
			"completed_at": time.Now(),
		}
		if err := s.sessions.Update(ctx, session.ID, updates); err != nil {
			return dto.SessionEndResponse{}, fmt.Errorf("complete session %d: %w", session.ID, err)
		}
	}

	history, err := s.messages.ListBySession(ctx, session.ID)
	if err != nil {
		return dto.SessionEndResponse{}, fmt.Errorf("load transcript: %w", err)
	}

	userResponses := make([]string, 0, len(history))
	for _, message := range history {
		if message.Role == models.MessageRoleUser {
			userResponses = append(userResponses, message.Content)
		}
	}

	// Evaluate at most once per session: repeated end calls reuse the
	// stored feedback.
	if len(userResponses) > 0 {
		if _, err := s.feedback.GetBySession(ctx, session.ID); errors.Is(err, gorm.ErrRecordNotFound) {
			if err := s.evaluate(ctx, session, userResponses); err != nil {
				return dto.SessionEndResponse{}, err
			}
		}
	}

	updated, err := s.sessions.Get(ctx, session.ID)
	if err != nil {
		return dto.SessionEndResponse{}, fmt.Errorf("reload session %d: %w", session.ID, err)
	}

	response := dto.SessionEndResponse{Session: updated}
	if feedback, err := s.feedback.GetBySession(ctx, session.ID); err == nil {
		response.Feedback = &feedback
	}

	return response, nil
}

func (s *evaluationService) evaluate(ctx context.Context, session models.Session, userResponses []string) error {
	rubric := s.resolveRubric(ctx, session.TemplateID)
	prompt := buildFeedbackPrompt(rubric, userResponses)

	raw, err := s.model.CompleteJSON(ctx, prompt, s.maxTokens)
	if err != nil {
		return fmt.Errorf("evaluate session %d: %w", session.ID, err)
	}

	payload := s.parseFeedback(raw)
	s.auditFeedback(raw)

	feedback := models.Feedback{
		SessionID:    session.ID,
		OverallScore: payload.OverallScore,
		RubricScores: toScoreMap(payload.RubricScores),
		Strengths:    datatypes.NewJSONSlice(payload.Strengths),
		Improvements: datatypes.NewJSONSlice(payload.Improvements),
		Summary:      payload.Summary,
	}
	if err := s.feedback.Create(ctx, &feedback); err != nil {
		return fmt.Errorf("persist feedback: %w", err)
	}

	s.publishEvaluated(session, feedback)
	return nil
}

// parseFeedback decodes the model output best-effort: malformed JSON yields
// an empty payload, so the feedback row is still created with absent fields.
func (s *evaluationService) parseFeedback(raw string) feedbackPayload {
	var payload feedbackPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		s.logger.Warn().Err(err).Msg("feedback response was not valid JSON")
		return feedbackPayload{}
	}
	return payload
}

func (s *evaluationService) auditFeedback(raw string) {
	var value interface{}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		observability.FeedbackAudits().WithLabelValues("unparseable").Inc()
		return
	}
	if err := s.schema.Validate(value); err != nil {
		observability.FeedbackAudits().WithLabelValues("invalid").Inc()
		s.logger.Warn().Err(err).Msg("feedback payload violates schema")
		return
	}
	observability.FeedbackAudits().WithLabelValues("valid").Inc()
}

func (s *evaluationService) resolveRubric(ctx context.Context, templateID *uint) []string {
	if templateID != nil {
		if template, err := s.templates.Get(ctx, *templateID); err == nil && len(template.RubricItems) > 0 {
			return template.RubricItems
		}
	}
	return seed.FallbackRubricItems
}

func (s *evaluationService) publishEvaluated(session models.Session, feedback models.Feedback) {
	if s.events == nil {
		return
	}

	event := struct {
		SessionID    uint      `json:"session_id"`
		UserID       string    `json:"user_id"`
		OverallScore *int      `json:"overall_score"`
		EvaluatedAt  time.Time `json:"evaluated_at"`
	}{session.ID, session.UserID, feedback.OverallScore, time.Now()}

	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.events.Publish(s.eventSubject, payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish evaluation event")
	}
}

// normalizeRubricKey lower-cases a rubric item and joins words with
// underscores, producing the keys requested from the model.
func normalizeRubricKey(item string) string {
	return strings.Join(strings.Fields(strings.ToLower(item)), "_")
}

func buildFeedbackPrompt(rubric []string, userResponses []string) string {
	keys := make([]string, 0, len(rubric))
	for _, item := range rubric {
		keys = append(keys, fmt.Sprintf("%q: <number 1-100>", normalizeRubricKey(item)))
	}

	var builder strings.Builder
	builder.WriteString("Evaluate this interview candidate based on these criteria: ")
	builder.WriteString(strings.Join(rubric, ", "))
	builder.WriteString(".\n\nCandidate responses:\n")
	builder.WriteString(strings.Join(userResponses, "\n\n"))
	builder.WriteString("\n\nProvide feedback in this JSON format:\n{\n")
	builder.WriteString(`  "overallScore": <number 1-100>,` + "\n")
	builder.WriteString(`  "rubricScores": { ` + strings.Join(keys, ", ") + ` },` + "\n")
	builder.WriteString(`  "strengths": ["<strength 1>", "<strength 2>"],` + "\n")
	builder.WriteString(`  "improvements": ["<area 1>", "<area 2>"],` + "\n")
	builder.WriteString(`  "summary": "<brief summary>"` + "\n}")
	return builder.String()
}

func toScoreMap(scores map[string]int) datatypes.JSONMap {
	if len(scores) == 0 {
		return nil
	}
	out := make(datatypes.JSONMap, len(scores))
	for key, score := range scores {
		out[key] = score
	}
	return out
}
