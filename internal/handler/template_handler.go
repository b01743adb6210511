package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/prepwise/prepwise-api/internal/repository"
	"github.com/prepwise/prepwise-api/internal/utils"
)

// TemplateHandler serves the read-only interview template catalogue.
type TemplateHandler struct {
	templates repository.TemplateRepository
	logger    zerolog.Logger
}

// NewTemplateHandler creates a template handler instance.
func NewTemplateHandler(templates repository.TemplateRepository, logger zerolog.Logger) *TemplateHandler {
	return &TemplateHandler{
		templates: templates,
		logger:    logger.With().Str("component", "template_handler").Logger(),
	}
}

// Register binds the template routes.
func (h *TemplateHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
}

func (h *TemplateHandler) list(c *fiber.Ctx) error {
	templates, err := h.templates.List(requestContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch templates")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to fetch templates")
	}
	return c.JSON(templates)
}
