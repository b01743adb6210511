package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/prepwise/prepwise-api/internal/dto"
	"github.com/prepwise/prepwise-api/internal/models"
	"github.com/prepwise/prepwise-api/internal/repository"
	"github.com/prepwise/prepwise-api/internal/seed"
	"github.com/prepwise/prepwise-api/pkg/ai"
)

var (
	// ErrSessionNotFound indicates the referenced session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrEmptyMessage indicates the submitted utterance was empty or whitespace.
	ErrEmptyMessage = errors.New("message content is required")
	// ErrSessionCompleted indicates a start was attempted on a completed session.
	ErrSessionCompleted = errors.New("session already completed")
)

// Turn is a prepared prompt for one streamed assistant reply. BeginStart and
// BeginReply do all fallible persistence work up front, and OpenTurn makes
// the upstream request, so the handler can still pick a proper HTTP status
// before committing the response; StreamTurn then relays tokens and
// persists the reply.
type Turn struct {
	SessionID uint
	Prompt    []ai.Message
}

// LiveTurn is a turn with its upstream token stream already open.
type LiveTurn struct {
	SessionID uint

	stream ai.ReplyStream
}

// InterviewService is the conversation orchestrator: it assembles prompts
// from the session's persona, template and transcript, relays the streamed
// reply, and appends it to the transcript.
type InterviewService interface {
	BeginStart(ctx context.Context, sessionID uint) (*Turn, error)
	BeginReply(ctx context.Context, sessionID uint, content string) (*Turn, error)
	OpenTurn(ctx context.Context, turn *Turn) (*LiveTurn, error)
	StreamTurn(ctx context.Context, live *LiveTurn, emit func(dto.StreamEvent) error) error
}

type interviewService struct {
	sessions  repository.SessionRepository
	messages  repository.MessageRepository
	templates repository.TemplateRepository
	personas  repository.PersonaRepository
	model     ai.Interviewer
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewInterviewService constructs the conversation orchestrator.
func NewInterviewService(
	sessions repository.SessionRepository,
	messages repository.MessageRepository,
	templates repository.TemplateRepository,
	personas repository.PersonaRepository,
	model ai.Interviewer,
	logger zerolog.Logger,
) InterviewService {
	return &interviewService{
		sessions:  sessions,
		messages:  messages,
		templates: templates,
		personas:  personas,
		model:     model,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "interview_service").Logger(),
		tracer:    otel.Tracer("github.com/prepwise/prepwise-api/internal/service/interview"),
	}
}

// BeginStart transitions the session to in_progress and prepares the
// opening prompt: a greeting instruction around one pseudo-randomly chosen
// template question.
func (s *interviewService) BeginStart(ctx context.Context, sessionID uint) (*Turn, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status == models.SessionStatusCompleted {
		return nil, ErrSessionCompleted
	}

	updates := map[string]interface{}{"status": models.SessionStatusInProgress}
	if session.StartedAt == nil {
		updates["started_at"] = time.Now()
	}
	if err := s.sessions.Update(ctx, session.ID, updates); err != nil {
		return nil, fmt.Errorf("start session %d: %w", session.ID, err)
	}

	persona := s.resolvePersona(ctx, session.PersonaID)
	template := s.resolveTemplate(ctx, session.TemplateID)

	questions := template.DefaultQuestions
	if len(questions) == 0 {
		questions = seed.FallbackTemplate().DefaultQuestions
	}
	firstQuestion := questions[rand.IntN(len(questions))]

	instruction := fmt.Sprintf("Start the interview by greeting the candidate and asking this question: %q", firstQuestion)
	system := buildSystemPrompt(persona.SystemPrompt, session, instruction)

	return &Turn{
		SessionID: session.ID,
		Prompt:    []ai.Message{{Role: ai.RoleSystem, Content: system}},
	}, nil
}

// BeginReply appends the user utterance and prepares the prompt for the
// next assistant reply from the full ordered transcript.
func (s *interviewService) BeginReply(ctx context.Context, sessionID uint, content string) (*Turn, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(trimmed))
	if clean == "" {
		return nil, ErrEmptyMessage
	}

	userMessage := models.Message{
		SessionID: session.ID,
		Role:      models.MessageRoleUser,
		Content:   clean,
	}
	if err := s.messages.Create(ctx, &userMessage); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	history, err := s.messages.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}

	persona := s.resolvePersona(ctx, session.PersonaID)
	template := s.resolveTemplate(ctx, session.TemplateID)

	questions := template.DefaultQuestions
	if len(questions) == 0 {
		questions = seed.FallbackTemplate().DefaultQuestions
	}

	instruction := "Available questions to ask: " + strings.Join(questions, ", ")
	system := buildSystemPrompt(persona.SystemPrompt, session, instruction)

	prompt := make([]ai.Message, 0, len(history)+1)
	prompt = append(prompt, ai.Message{Role: ai.RoleSystem, Content: system})
	for _, message := range history {
		prompt = append(prompt, ai.Message{Role: string(message.Role), Content: message.Content})
	}

	return &Turn{SessionID: session.ID, Prompt: prompt}, nil
}

// OpenTurn makes the upstream completion request. It runs before any
// response bytes are written, so a refused or misconfigured upstream still
// surfaces as a plain error the handler can turn into a 500.
func (s *interviewService) OpenTurn(ctx context.Context, turn *Turn) (*LiveTurn, error) {
	stream, err := s.model.StreamReply(ctx, turn.Prompt)
	if err != nil {
		s.logger.Error().Err(err).Uint("session_id", turn.SessionID).Msg("failed to open reply stream")
		return nil, fmt.Errorf("open reply stream: %w", err)
	}
	return &LiveTurn{SessionID: turn.SessionID, stream: stream}, nil
}

// StreamTurn relays the open reply token by token and persists the
// concatenated text as a new assistant message. The upstream stream is
// drained to completion and the transcript write happens even when the
// client has already disconnected; failures past this point are reported
// as in-band error frames.
func (s *interviewService) StreamTurn(ctx context.Context, live *LiveTurn, emit func(dto.StreamEvent) error) error {
	ctx, span := s.tracer.Start(ctx, "interview.stream_turn", trace.WithAttributes(
		attribute.Int("session.id", int(live.SessionID)),
	))
	defer span.End()
	defer live.stream.Close()

	relay := newStreamRelay(emit)

	var reply strings.Builder
	for {
		token, err := live.stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			relay.Fail("Failed to generate reply")
			s.logger.Error().Err(err).Uint("session_id", live.SessionID).Msg("upstream stream failed")
			return fmt.Errorf("stream reply: %w", err)
		}

		reply.WriteString(token)
		relay.Token(token)
	}

	assistantMessage := models.Message{
		SessionID: live.SessionID,
		Role:      models.MessageRoleAssistant,
		Content:   reply.String(),
	}
	if err := s.messages.Create(ctx, &assistantMessage); err != nil {
		relay.Fail("Failed to save reply")
		s.logger.Error().Err(err).Uint("session_id", live.SessionID).Msg("failed to persist assistant message")
		return fmt.Errorf("persist assistant message: %w", err)
	}

	relay.Complete()
	return nil
}

func (s *interviewService) loadSession(ctx context.Context, sessionID uint) (models.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("load session %d: %w", sessionID, err)
	}
	return session, nil
}

// resolvePersona falls back to the built-in default when the session has no
// persona or references one that was removed.
func (s *interviewService) resolvePersona(ctx context.Context, personaID *uint) models.Persona {
	if personaID == nil {
		return seed.FallbackPersona()
	}
	persona, err := s.personas.Get(ctx, *personaID)
	if err != nil {
		return seed.FallbackPersona()
	}
	return persona
}

func (s *interviewService) resolveTemplate(ctx context.Context, templateID *uint) models.Template {
	if templateID == nil {
		return seed.FallbackTemplate()
	}
	template, err := s.templates.Get(ctx, *templateID)
	if err != nil {
		return seed.FallbackTemplate()
	}
	return template
}

// buildSystemPrompt combines the persona script, the optional role/company
// context and a turn-specific instruction into one system message.
func buildSystemPrompt(personaPrompt string, session models.Session, instruction string) string {
	roleContext := ""
	if session.Role != nil && *session.Role != "" {
		roleContext = fmt.Sprintf("The candidate is interviewing for a %s position.", *session.Role)
	}

	companyContext := ""
	if session.Company != nil && *session.Company != "" {
		companyContext = fmt.Sprintf("The interview is for %s.", *session.Company)
	}

	return personaPrompt + "\n\n" + roleContext + " " + companyContext + "\n\n" + instruction
}
