package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"annotation-service/internal/services"
)

// ExportHandler defines handlers for annotation export and sync push.
type ExportHandler struct {
	Service *services.ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(service *services.ExportService) *ExportHandler {
	return &ExportHandler{Service: service}
}

// ExportYAML handles GET /export/yaml/:projectId, returning the project's
// annotation bundle as YAML.
// @Summary Export a project's annotations as YAML
// @Tags export
// @Produce plain
// @Param projectId path string true "Project ID"
// @Success 200 {string} string "YAML bundle"
// @Router /export/yaml/{projectId} [get]
func (h *ExportHandler) ExportYAML(c *fiber.Ctx) error {
	projectID, ok := parseUUID(c, "projectId")
	if !ok {
		return nil
	}
	data, err := h.Service.YAML(projectID)
	if err != nil {
		log.Printf("Error exporting project %s: %v", projectID, err)
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/yaml")
	return c.Send(data)
}

// Push handles POST /export/push/:projectId, uploading the bundle to the
// configured sink and marking the project's objects synced.
// @Summary Push a project's annotations to the export sink
// @Tags export
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 200 {object} map[string]string
// @Router /export/push/{projectId} [post]
func (h *ExportHandler) Push(c *fiber.Ctx) error {
	projectID, ok := parseUUID(c, "projectId")
	if !ok {
		return nil
	}
	name, err := h.Service.Push(c.UserContext(), projectID)
	if err != nil {
		log.Printf("Error pushing project %s: %v", projectID, err)
		return respondError(c, err)
	}
	log.Printf("Pushed project %s as %s", projectID, name)
	return c.JSON(fiber.Map{"object": name})
}
