package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/prepwise/prepwise-api/internal/dto"
	"github.com/prepwise/prepwise-api/internal/service"
	"github.com/prepwise/prepwise-api/internal/utils"
)

// PreferenceHandler manages per-user onboarding preferences.
type PreferenceHandler struct {
	preferences service.PreferenceService
	logger      zerolog.Logger
}

// NewPreferenceHandler creates a preference handler instance.
func NewPreferenceHandler(preferences service.PreferenceService, logger zerolog.Logger) *PreferenceHandler {
	return &PreferenceHandler{
		preferences: preferences,
		logger:      logger.With().Str("component", "preference_handler").Logger(),
	}
}

// Register binds the preference routes.
func (h *PreferenceHandler) Register(router fiber.Router) {
	router.Get("/", h.get)
	router.Post("/", h.save)
}

func (h *PreferenceHandler) get(c *fiber.Ctx) error {
	preference, found, err := h.preferences.Get(requestContext(c), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load preferences")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to fetch preferences")
	}
	if !found {
		// No row yet: the client only needs to know onboarding is pending.
		return c.JSON(fiber.Map{"onboardingComplete": false})
	}
	return c.JSON(preference)
}

func (h *PreferenceHandler) save(c *fiber.Ctx) error {
	var req dto.PreferenceRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	preference, err := h.preferences.Save(requestContext(c), userIDFromContext(c), req)
	if err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return utils.SendValidationError(c, "Invalid preference payload", err)
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to save preferences")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to save preferences")
	}

	return c.JSON(preference)
}
