package handlers

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"annotation-service/internal/services"
)

// ImportHandler defines handlers for object imports.
type ImportHandler struct {
	Service *services.ImportService
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(service *services.ImportService) *ImportHandler {
	return &ImportHandler{Service: service}
}

// ImportObjects handles POST /import/objects/:projectId with a batch of
// parsed object records. Without commit=true the import is a dry run.
// @Summary Import parsed object records into a project
// @Tags imports
// @Accept json
// @Produce json
// @Param projectId path string true "Project ID"
// @Param commit query bool false "Persist the import"
// @Success 200 {object} services.ImportResult
// @Router /import/objects/{projectId} [post]
func (h *ImportHandler) ImportObjects(c *fiber.Ctx) error {
	projectID, ok := parseUUID(c, "projectId")
	if !ok {
		return nil
	}
	commit, _ := strconv.ParseBool(c.Query("commit", "false"))

	var records []services.ImportObject
	if err := c.BodyParser(&records); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "invalid import payload",
		})
	}

	result, err := h.Service.Import(projectID, records, commit)
	if err != nil {
		log.Printf("Error importing objects into %s: %v", projectID, err)
		return respondError(c, err)
	}
	log.Printf("Import into %s: %d offered, %d known, %d added (commit=%t)",
		projectID, result.Total, result.Known, len(result.Added), commit)
	return c.JSON(result)
}

// ImportArchive handles POST /import/archive/:projectId with a multipart
// image archive, extracting it into the local file area and importing one
// filesystem object per image.
// @Summary Import an uploaded image archive into a project
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param projectId path string true "Project ID"
// @Param archive formData file true "Image archive (zip)"
// @Param commit query bool false "Persist the import"
// @Success 200 {object} services.ImportResult
// @Router /import/archive/{projectId} [post]
func (h *ImportHandler) ImportArchive(c *fiber.Ctx) error {
	projectID, ok := parseUUID(c, "projectId")
	if !ok {
		return nil
	}
	commit, _ := strconv.ParseBool(c.Query("commit", "false"))

	fileHeader, err := c.FormFile("archive")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "archive file is required",
		})
	}

	tempDir, err := os.MkdirTemp("", "import-*")
	if err != nil {
		return respondError(c, err)
	}
	defer os.RemoveAll(tempDir)

	archivePath := filepath.Join(tempDir, fileHeader.Filename)
	if err := c.SaveFile(fileHeader, archivePath); err != nil {
		return respondError(c, err)
	}

	result, err := h.Service.ImportArchive(c.UserContext(), projectID, archivePath, commit)
	if err != nil {
		log.Printf("Error importing archive into %s: %v", projectID, err)
		return respondError(c, err)
	}
	log.Printf("Archive import into %s: %d added (commit=%t)", projectID, len(result.Added), commit)
	return c.JSON(result)
}

// ImportDirectory handles POST /import/filesystem/:projectId, importing
// the images already present under the local file area.
// @Summary Import the local file area into a project
// @Tags imports
// @Produce json
// @Param projectId path string true "Project ID"
// @Param commit query bool false "Persist the import"
// @Success 200 {object} services.ImportResult
// @Router /import/filesystem/{projectId} [post]
func (h *ImportHandler) ImportDirectory(c *fiber.Ctx) error {
	projectID, ok := parseUUID(c, "projectId")
	if !ok {
		return nil
	}
	commit, _ := strconv.ParseBool(c.Query("commit", "false"))

	result, err := h.Service.ImportDirectory(projectID, commit)
	if err != nil {
		log.Printf("Error importing local files into %s: %v", projectID, err)
		return respondError(c, err)
	}
	return c.JSON(result)
}
