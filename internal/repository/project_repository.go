package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"annotation-service/internal/models"
)

// ProjectRepository defines methods for project storage operations.
type ProjectRepository interface {
	Create(project *models.Project) error
	GetByID(id uuid.UUID) (*models.Project, error)
	List() ([]models.Project, error)
	Update(project *models.Project) error
	Delete(id uuid.UUID) error
}

// ProjectRepositoryImpl provides methods to interact with the Project
// model in the database.
type ProjectRepositoryImpl struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepositoryImpl instance.
func NewProjectRepository(db *gorm.DB) *ProjectRepositoryImpl {
	return &ProjectRepositoryImpl{db: db}
}

// Create inserts a new Project.
func (r *ProjectRepositoryImpl) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// GetByID retrieves a Project by its ID.
func (r *ProjectRepositoryImpl) GetByID(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// List retrieves all Projects.
func (r *ProjectRepositoryImpl) List() ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Order("created_at ASC").Find(&projects).Error
	return projects, err
}

// Update saves an existing Project.
func (r *ProjectRepositoryImpl) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// Delete deletes a Project by its ID.
func (r *ProjectRepositoryImpl) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Project{}, "id = ?", id).Error
}

var _ ProjectRepository = (*ProjectRepositoryImpl)(nil)
