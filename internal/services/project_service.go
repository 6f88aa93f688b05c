package services

import (
	"github.com/google/uuid"

	"annotation-service/internal/models"
	"annotation-service/internal/repository"
)

// ProjectService provides methods for managing projects and their labels.
type ProjectService struct {
	Projects repository.ProjectRepository
	Labels   repository.LabelRepository
	Objects  repository.ObjectRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projects repository.ProjectRepository, labels repository.LabelRepository, objects repository.ObjectRepository) *ProjectService {
	return &ProjectService{
		Projects: projects,
		Labels:   labels,
		Objects:  objects,
	}
}

// CreateProject inserts a new project.
func (s *ProjectService) CreateProject(project *models.Project) error {
	return s.Projects.Create(project)
}

// GetProject retrieves a project.
func (s *ProjectService) GetProject(id uuid.UUID) (*models.Project, error) {
	return s.Projects.GetByID(id)
}

// ListProjects retrieves all projects.
func (s *ProjectService) ListProjects() ([]models.Project, error) {
	return s.Projects.List()
}

// UpdateProject saves an existing project.
func (s *ProjectService) UpdateProject(project *models.Project) error {
	return s.Projects.Update(project)
}

// DeleteProject deletes a project together with its labels and objects.
func (s *ProjectService) DeleteProject(id uuid.UUID) error {
	if _, err := s.Projects.GetByID(id); err != nil {
		return err
	}
	if err := s.Labels.DeleteOfProject(id); err != nil {
		return err
	}
	if err := s.Objects.DeleteOfProject(id); err != nil {
		return err
	}
	return s.Projects.Delete(id)
}

// CreateLabel inserts a new label.
func (s *ProjectService) CreateLabel(label *models.Label) error {
	if _, err := s.Projects.GetByID(label.ProjectID); err != nil {
		return err
	}
	return s.Labels.Create(label)
}

// ImportLabels inserts a batch of labels into a project, typically the
// output of an ontology import collaborator.
func (s *ProjectService) ImportLabels(projectID uuid.UUID, labels []*models.Label) error {
	if _, err := s.Projects.GetByID(projectID); err != nil {
		return err
	}
	for _, label := range labels {
		label.ProjectID = projectID
	}
	return s.Labels.CreateAll(labels)
}

// ListLabels retrieves the labels of a project.
func (s *ProjectService) ListLabels(projectID uuid.UUID) ([]models.Label, error) {
	return s.Labels.ListOfProject(projectID)
}

// UpdateLabel saves an existing label.
func (s *ProjectService) UpdateLabel(label *models.Label) error {
	return s.Labels.Update(label)
}

// DeleteLabel deletes a label.
func (s *ProjectService) DeleteLabel(id uuid.UUID) error {
	return s.Labels.Delete(id)
}
