package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/prepwise/prepwise-api/internal/models"
)

// PersonaRepository reads and seeds interviewer personas.
type PersonaRepository interface {
	List(ctx context.Context) ([]models.Persona, error)
	Get(ctx context.Context, id uint) (models.Persona, error)
	Create(ctx context.Context, persona *models.Persona) error
}

type personaRepository struct {
	db *gorm.DB
}

// NewPersonaRepository constructs a persona repository backed by GORM.
func NewPersonaRepository(db *gorm.DB) PersonaRepository {
	return &personaRepository{db: db}
}

func (r *personaRepository) List(ctx context.Context) ([]models.Persona, error) {
	var personas []models.Persona
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&personas).Error; err != nil {
		return nil, err
	}
	return personas, nil
}

func (r *personaRepository) Get(ctx context.Context, id uint) (models.Persona, error) {
	var persona models.Persona
	if err := r.db.WithContext(ctx).First(&persona, id).Error; err != nil {
		return models.Persona{}, err
	}
	return persona, nil
}

func (r *personaRepository) Create(ctx context.Context, persona *models.Persona) error {
	return r.db.WithContext(ctx).Create(persona).Error
}
