package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"annotation-service/internal/models"
	"annotation-service/internal/services"
)

// ProjectHandler defines handlers for managing projects and labels.
type ProjectHandler struct {
	Service *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler with the given service.
func NewProjectHandler(service *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{Service: service}
}

// ListProjects handles GET /projects.
// @Summary List all projects
// @Tags projects
// @Produce json
// @Success 200 {array} models.Project
// @Router /projects [get]
func (h *ProjectHandler) ListProjects(c *fiber.Ctx) error {
	projects, err := h.Service.ListProjects()
	if err != nil {
		log.Printf("Error listing projects: %v", err)
		return respondError(c, err)
	}
	return c.JSON(projects)
}

// GetProject handles GET /projects/:id.
// @Summary Get a project by ID
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} models.Project
// @Failure 404 {object} map[string]interface{} "Project not found"
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetProject(c *fiber.Ctx) error {
	id, ok := parseUUID(c, "id")
	if !ok {
		return nil
	}
	project, err := h.Service.GetProject(id)
	if err != nil {
		log.Printf("Error fetching project %s: %v", id, err)
		return respondError(c, err)
	}
	return c.JSON(project)
}

// CreateProject handles POST /projects.
// @Summary Create a project
// @Tags projects
// @Accept json
// @Produce json
// @Success 201 {object} models.Project
// @Router /projects [post]
func (h *ProjectHandler) CreateProject(c *fiber.Ctx) error {
	var project models.Project
	if err := c.BodyParser(&project); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "invalid project payload",
		})
	}
	if project.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "title is required",
		})
	}
	if err := h.Service.CreateProject(&project); err != nil {
		log.Printf("Error creating project: %v", err)
		return respondError(c, err)
	}
	log.Printf("Created project %s (%s)", project.ID, project.Title)
	return c.Status(fiber.StatusCreated).JSON(project)
}

// UpdateProject handles PUT /projects/:id.
// @Summary Update a project
// @Tags projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} models.Project
// @Router /projects/{id} [put]
func (h *ProjectHandler) UpdateProject(c *fiber.Ctx) error {
	id, ok := parseUUID(c, "id")
	if !ok {
		return nil
	}
	project, err := h.Service.GetProject(id)
	if err != nil {
		return respondError(c, err)
	}
	var payload models.Project
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "invalid project payload",
		})
	}
	if payload.Title != "" {
		project.Title = payload.Title
	}
	project.Description = payload.Description
	project.CustomFields = payload.CustomFields
	project.SyncConfig = payload.SyncConfig
	if err := h.Service.UpdateProject(project); err != nil {
		log.Printf("Error updating project %s: %v", id, err)
		return respondError(c, err)
	}
	return c.JSON(project)
}

// DeleteProject handles DELETE /projects/:id. Deletes the project's
// labels and objects as well.
// @Summary Delete a project
// @Tags projects
// @Param id path string true "Project ID"
// @Success 204
// @Router /projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(c *fiber.Ctx) error {
	id, ok := parseUUID(c, "id")
	if !ok {
		return nil
	}
	if err := h.Service.DeleteProject(id); err != nil {
		log.Printf("Error deleting project %s: %v", id, err)
		return respondError(c, err)
	}
	log.Printf("Deleted project %s", id)
	return c.SendStatus(fiber.StatusNoContent)
}

// ListLabels handles GET /labels/of/:projectId.
// @Summary List the labels of a project
// @Tags labels
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 200 {array} models.Label
// @Router /labels/of/{projectId} [get]
func (h *ProjectHandler) ListLabels(c *fiber.Ctx) error {
	projectID, ok := parseUUID(c, "projectId")
	if !ok {
		return nil
	}
	labels, err := h.Service.ListLabels(projectID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(labels)
}

// CreateLabel handles POST /labels.
// @Summary Create a label
// @Tags labels
// @Accept json
// @Produce json
// @Success 201 {object} models.Label
// @Router /labels [post]
func (h *ProjectHandler) CreateLabel(c *fiber.Ctx) error {
	var label models.Label
	if err := c.BodyParser(&label); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "invalid label payload",
		})
	}
	if label.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "name is required",
		})
	}
	if err := h.Service.CreateLabel(&label); err != nil {
		log.Printf("Error creating label: %v", err)
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(label)
}

// ImportLabels handles POST /labels/import/:projectId with a batch of
// labels, typically parsed from an external ontology.
// @Summary Import labels into a project
// @Tags labels
// @Accept json
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 201 {array} models.Label
// @Router /labels/import/{projectId} [post]
func (h *ProjectHandler) ImportLabels(c *fiber.Ctx) error {
	projectID, ok := parseUUID(c, "projectId")
	if !ok {
		return nil
	}
	var labels []*models.Label
	if err := c.BodyParser(&labels); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "invalid labels payload",
		})
	}
	if err := h.Service.ImportLabels(projectID, labels); err != nil {
		log.Printf("Error importing labels into %s: %v", projectID, err)
		return respondError(c, err)
	}
	log.Printf("Imported %d labels into project %s", len(labels), projectID)
	return c.Status(fiber.StatusCreated).JSON(labels)
}

// UpdateLabel handles PUT /labels/:id.
// @Summary Update a label
// @Tags labels
// @Accept json
// @Produce json
// @Param id path string true "Label ID"
// @Success 200 {object} models.Label
// @Router /labels/{id} [put]
func (h *ProjectHandler) UpdateLabel(c *fiber.Ctx) error {
	id, ok := parseUUID(c, "id")
	if !ok {
		return nil
	}
	var label models.Label
	if err := c.BodyParser(&label); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "invalid label payload",
		})
	}
	label.ID = id
	if err := h.Service.UpdateLabel(&label); err != nil {
		log.Printf("Error updating label %s: %v", id, err)
		return respondError(c, err)
	}
	return c.JSON(label)
}

// DeleteLabel handles DELETE /labels/:id.
// @Summary Delete a label
// @Tags labels
// @Param id path string true "Label ID"
// @Success 204
// @Router /labels/{id} [delete]
func (h *ProjectHandler) DeleteLabel(c *fiber.Ctx) error {
	id, ok := parseUUID(c, "id")
	if !ok {
		return nil
	}
	if err := h.Service.DeleteLabel(id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
