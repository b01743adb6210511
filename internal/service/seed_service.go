package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prepwise/prepwise-api/internal/repository"
	"github.com/prepwise/prepwise-api/internal/seed"
)

// SeedService inserts the built-in templates and personas when the store is
// empty. Runs once at startup; existing content is never touched.
type SeedService interface {
	EnsureDefaults(ctx context.Context) error
}

type seedService struct {
	templates repository.TemplateRepository
	personas  repository.PersonaRepository
	logger    zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(templates repository.TemplateRepository, personas repository.PersonaRepository, logger zerolog.Logger) SeedService {
	return &seedService{
		templates: templates,
		personas:  personas,
		logger:    logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) EnsureDefaults(ctx context.Context) error {
	templates, err := s.templates.List(ctx)
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}
	if len(templates) == 0 {
		for _, template := range seed.DefaultTemplates {
			record := template
			if err := s.templates.Create(ctx, &record); err != nil {
				return fmt.Errorf("seed template %q: %w", template.Name, err)
			}
		}
		s.logger.Info().Int("count", len(seed.DefaultTemplates)).Msg("default templates seeded")
	}

	personas, err := s.personas.List(ctx)
	if err != nil {
		return fmt.Errorf("list personas: %w", err)
	}
	if len(personas) == 0 {
		for _, persona := range seed.DefaultPersonas {
			record := persona
			if err := s.personas.Create(ctx, &record); err != nil {
				return fmt.Errorf("seed persona %q: %w", persona.Name, err)
			}
		}
		s.logger.Info().Int("count", len(seed.DefaultPersonas)).Msg("default personas seeded")
	}

	return nil
}
