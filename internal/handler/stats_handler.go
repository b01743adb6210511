package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/prepwise/prepwise-api/internal/service"
	"github.com/prepwise/prepwise-api/internal/utils"
)

// StatsHandler serves the dashboard aggregates.
type StatsHandler struct {
	stats  service.StatsService
	logger zerolog.Logger
}

// NewStatsHandler creates a stats handler instance.
func NewStatsHandler(stats service.StatsService, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		stats:  stats,
		logger: logger.With().Str("component", "stats_handler").Logger(),
	}
}

// Register binds the stats routes.
func (h *StatsHandler) Register(router fiber.Router) {
	router.Get("/", h.summary)
}

func (h *StatsHandler) summary(c *fiber.Ctx) error {
	summary, err := h.stats.Summary(requestContext(c), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to compute stats")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to fetch stats")
	}
	return c.JSON(summary)
}
