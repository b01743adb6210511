package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/prepwise/prepwise-api/internal/repository"
	"github.com/prepwise/prepwise-api/internal/utils"
)

// PersonaHandler serves the read-only interviewer persona catalogue.
type PersonaHandler struct {
	personas repository.PersonaRepository
	logger   zerolog.Logger
}

// NewPersonaHandler creates a persona handler instance.
func NewPersonaHandler(personas repository.PersonaRepository, logger zerolog.Logger) *PersonaHandler {
	return &PersonaHandler{
		personas: personas,
		logger:   logger.With().Str("component", "persona_handler").Logger(),
	}
}

// Register binds the persona routes.
func (h *PersonaHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
}

func (h *PersonaHandler) list(c *fiber.Ctx) error {
	personas, err := h.personas.List(requestContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch personas")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to fetch personas")
	}
	return c.JSON(personas)
}
