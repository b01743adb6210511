package handler

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/prepwise/prepwise-api/internal/dto"
	"github.com/prepwise/prepwise-api/internal/models"
	"github.com/prepwise/prepwise-api/internal/repository"
	"github.com/prepwise/prepwise-api/internal/service"
	"github.com/prepwise/prepwise-api/internal/utils"
)

// SessionHandler exposes the interview session lifecycle: CRUD over the
// transcript store plus the two streamed conversation endpoints.
type SessionHandler struct {
	sessions    repository.SessionRepository
	messages    repository.MessageRepository
	feedback    repository.FeedbackRepository
	interviews  service.InterviewService
	evaluations service.EvaluationService
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewSessionHandler creates a session handler instance.
func NewSessionHandler(
	sessions repository.SessionRepository,
	messages repository.MessageRepository,
	feedback repository.FeedbackRepository,
	interviews service.InterviewService,
	evaluations service.EvaluationService,
	validate *validator.Validate,
	logger zerolog.Logger,
) *SessionHandler {
	return &SessionHandler{
		sessions:    sessions,
		messages:    messages,
		feedback:    feedback,
		interviews:  interviews,
		evaluations: evaluations,
		validator:   validate,
		logger:      logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register binds the session routes. The stream limiter applies only to the
// two endpoints that hold an upstream model stream open.
func (h *SessionHandler) Register(router fiber.Router, streamLimiter fiber.Handler) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Get("/:id", h.detail)
	router.Post("/:id/start", streamLimiter, h.start)
	router.Post("/:id/messages", streamLimiter, h.postMessage)
	router.Post("/:id/end", h.end)
	router.Delete("/:id", h.remove)
}

func (h *SessionHandler) list(c *fiber.Ctx) error {
	sessions, err := h.sessions.ListByUser(requestContext(c), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list sessions")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to fetch sessions")
	}
	return c.JSON(sessions)
}

func (h *SessionHandler) create(c *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return utils.SendValidationError(c, "Invalid session payload", err)
	}

	session := models.Session{
		UserID:     userIDFromContext(c),
		TemplateID: req.TemplateID,
		PersonaID:  req.PersonaID,
		Role:       req.Role,
		Company:    req.Company,
		Status:     models.SessionStatusSetup,
	}
	if err := h.sessions.Create(requestContext(c), &session); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create session")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to create session")
	}

	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *SessionHandler) detail(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid session id")
	}

	ctx := requestContext(c)
	session, err := h.sessions.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.SendError(c, fiber.StatusNotFound, "Session not found")
	}
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("session_id", id).Msg("failed to load session")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to fetch session")
	}

	messages, err := h.messages.ListBySession(ctx, session.ID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("session_id", id).Msg("failed to load transcript")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to fetch session")
	}

	response := dto.SessionDetailResponse{Session: session, Messages: messages}
	if feedback, err := h.feedback.GetBySession(ctx, session.ID); err == nil {
		response.Feedback = &feedback
	}

	return c.JSON(response)
}

func (h *SessionHandler) start(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid session id")
	}

	turn, err := h.interviews.BeginStart(requestContext(c), id)
	if err != nil {
		return h.turnError(c, id, err, "Failed to start interview")
	}

	return h.streamTurn(c, turn)
}

// streamTurn makes the upstream request while the response is still
// uncommitted: an upstream that refuses the stream yields a real 500
// instead of a 200 with an error frame.
func (h *SessionHandler) streamTurn(c *fiber.Ctx, turn *service.Turn) error {
	live, err := h.interviews.OpenTurn(requestContext(c), turn)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("session_id", turn.SessionID).Msg("failed to open reply stream")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to generate reply")
	}

	return h.relayStream(c, live)
}

func (h *SessionHandler) postMessage(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid session id")
	}

	var req dto.PostMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	turn, err := h.interviews.BeginReply(requestContext(c), id, req.Content)
	if err != nil {
		return h.turnError(c, id, err, "Failed to process message")
	}

	return h.streamTurn(c, turn)
}

func (h *SessionHandler) end(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid session id")
	}

	result, err := h.evaluations.End(requestContext(c), id)
	if errors.Is(err, service.ErrSessionNotFound) {
		return utils.SendError(c, fiber.StatusNotFound, "Session not found")
	}
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("session_id", id).Msg("failed to end session")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to end session")
	}

	return c.JSON(result)
}

func (h *SessionHandler) remove(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid session id")
	}

	if err := h.sessions.Delete(requestContext(c), id); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("session_id", id).Msg("failed to delete session")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to delete session")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// turnError maps prompt-preparation failures to HTTP statuses. These fire
// before any stream bytes are written, so the client still gets a real
// status code instead of an in-band error frame.
func (h *SessionHandler) turnError(c *fiber.Ctx, sessionID uint, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "Session not found")
	case errors.Is(err, service.ErrEmptyMessage):
		return utils.SendError(c, fiber.StatusBadRequest, "Message content is required")
	case errors.Is(err, service.ErrSessionCompleted):
		return utils.SendError(c, fiber.StatusBadRequest, "Session already completed")
	default:
		requestLogger(h.logger, c).Error().Err(err).Uint("session_id", sessionID).Msg("failed to prepare turn")
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}

// relayStream commits the SSE response and relays the open reply. From here
// on, failures surface as in-band error frames rather than status codes.
func (h *SessionHandler) relayStream(c *fiber.Ctx, live *service.LiveTurn) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	ctx := requestContext(c)
	logger := requestLogger(h.logger, c).With().Uint("session_id", live.SessionID).Logger()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		emit := func(event dto.StreamEvent) error {
			payload, err := json.Marshal(event)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return err
			}
			return w.Flush()
		}

		if err := h.interviews.StreamTurn(ctx, live, emit); err != nil {
			logger.Error().Err(err).Msg("interview stream ended with error")
		}
	})

	return nil
}
