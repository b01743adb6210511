package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/prepwise/prepwise-api/internal/models"
)

// TemplateRepository reads and seeds interview templates.
type TemplateRepository interface {
	List(ctx context.Context) ([]models.Template, error)
	Get(ctx context.Context, id uint) (models.Template, error)
	Create(ctx context.Context, template *models.Template) error
}

type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository constructs a template repository backed by GORM.
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) List(ctx context.Context) ([]models.Template, error) {
	var templates []models.Template
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *templateRepository) Get(ctx context.Context, id uint) (models.Template, error) {
	var template models.Template
	if err := r.db.WithContext(ctx).First(&template, id).Error; err != nil {
		return models.Template{}, err
	}
	return template, nil
}

func (r *templateRepository) Create(ctx context.Context, template *models.Template) error {
	return r.db.WithContext(ctx).Create(template).Error
}
