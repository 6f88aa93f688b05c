package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"annotation-service/internal/models"
)

// LabelRepository defines methods for label storage operations.
type LabelRepository interface {
	Create(label *models.Label) error
	CreateAll(labels []*models.Label) error
	GetByID(id uuid.UUID) (*models.Label, error)
	ListOfProject(projectID uuid.UUID) ([]models.Label, error)
	Update(label *models.Label) error
	Delete(id uuid.UUID) error
	DeleteOfProject(projectID uuid.UUID) error
}

// LabelRepositoryImpl provides methods to interact with the Label model
// in the database.
type LabelRepositoryImpl struct {
	db *gorm.DB
}

// NewLabelRepository creates a new LabelRepositoryImpl instance.
func NewLabelRepository(db *gorm.DB) *LabelRepositoryImpl {
	return &LabelRepositoryImpl{db: db}
}

// Create inserts a new Label.
func (r *LabelRepositoryImpl) Create(label *models.Label) error {
	return r.db.Create(label).Error
}

// CreateAll inserts a batch of Labels.
func (r *LabelRepositoryImpl) CreateAll(labels []*models.Label) error {
	if len(labels) == 0 {
		return nil
	}
	return r.db.Create(labels).Error
}

// GetByID retrieves a Label by its ID.
func (r *LabelRepositoryImpl) GetByID(id uuid.UUID) (*models.Label, error) {
	var label models.Label
	err := r.db.First(&label, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &label, nil
}

// ListOfProject retrieves the Labels of a project.
func (r *LabelRepositoryImpl) ListOfProject(projectID uuid.UUID) ([]models.Label, error) {
	var labels []models.Label
	err := r.db.Where("project_id = ?", projectID).Order("name ASC").Find(&labels).Error
	return labels, err
}

// Update saves an existing Label.
func (r *LabelRepositoryImpl) Update(label *models.Label) error {
	return r.db.Save(label).Error
}

// Delete deletes a Label by its ID.
func (r *LabelRepositoryImpl) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Label{}, "id = ?", id).Error
}

// DeleteOfProject deletes all Labels of a project.
func (r *LabelRepositoryImpl) DeleteOfProject(projectID uuid.UUID) error {
	return r.db.Delete(&models.Label{}, "project_id = ?", projectID).Error
}

var _ LabelRepository = (*LabelRepositoryImpl)(nil)
