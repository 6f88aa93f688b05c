package handlers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"annotation-service/internal/services"
)

const ObjectNotFoundError = "object not found"

// ObjectHandler defines handlers for object listing, navigation,
// annotation writes and the advisory lock protocol.
type ObjectHandler struct {
	Service *services.ObjectService
	Locks   *services.LockService
}

// NewObjectHandler creates a new ObjectHandler.
func NewObjectHandler(service *services.ObjectService, locks *services.LockService) *ObjectHandler {
	return &ObjectHandler{Service: service, Locks: locks}
}

// ListObjects handles GET /objects/of/:projectId, optionally filtered by
// annotated, synced and search query parameters.
// @Summary List the objects of a project
// @Tags objects
// @Produce json
// @Param projectId path string true "Project ID"
// @Param annotated query bool false "Filter by annotated state"
// @Param synced query bool false "Filter by synced state"
// @Param search query string false "Case-insensitive substring match"
// @Success 200 {array} models.Object
// @Router /objects/of/{projectId} [get]
func (h *ObjectHandler) ListObjects(c *fiber.Ctx) error {
	projectID, ok := parseUUID(c, "projectId")
	if !ok {
		return nil
	}
	filters, err := parseFilters(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "invalid filter parameters",
		})
	}
	objects, err := h.Service.ListObjects(projectID, filters)
	if err != nil {
		log.Printf("Error listing objects of %s: %v", projectID, err)
		return respondError(c, err)
	}
	return c.JSON(objects)
}

// ObjectAt handles GET /objects/of/:projectId/at/:offset, returning the
// object at the 0-based offset within the filtered, position-ordered
// collection.
// @Summary Get the object at a filtered offset
// @Tags objects
// @Produce json
// @Param projectId path string true "Project ID"
// @Param offset path int true "0-based offset"
// @Success 200 {object} models.Object
// @Failure 404 {object} map[string]interface{} "Offset out of range"
// @Router /objects/of/{projectId}/at/{offset} [get]
func (h *ObjectHandler) ObjectAt(c *fiber.Ctx) error {
	projectID, ok := parseUUID(c, "projectId")
	if !ok {
		return nil
	}
	offset, err := strconv.Atoi(c.Params("offset"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "invalid offset",
		})
	}
	filters, err := parseFilters(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "invalid filter parameters",
		})
	}
	object, err := h.Service.ObjectAt(projectID, filters, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(object)
}

// Navigate handles GET /objects/navigate/:id?offset=N, returning the
// object N filtered matches away from the anchor. Negative offsets move
// backward; offset 0 returns the anchor.
// @Summary Navigate relative to an anchor object
// @Tags objects
// @Produce json
// @Param id path string true "Anchor object ID"
// @Param offset query int true "Relative offset, anchor not counted"
// @Success 200 {object} models.Object
// @Failure 404 {object} map[string]interface{} "Offset overruns the filtered sequence"
// @Router /objects/navigate/{id} [get]
func (h *ObjectHandler) Navigate(c *fiber.Ctx) error {
	id, ok := parseUUID(c, "id")
	if !ok {
		return nil
	}
	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "invalid offset",
		})
	}
	filters, err := parseFilters(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "invalid filter parameters",
		})
	}
	object, err := h.Service.NavigateFrom(id, filters, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(object)
}

// RandomObject handles GET /objects/random-of/:projectId, returning an
// unfinished object of the project.
// @Summary Get an unannotated object of a project
// @Tags objects
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 200 {object} models.Object
// @Failure 404 {object} map[string]interface{} "No objects found"
// @Router /objects/random-of/{projectId} [get]
func (h *ObjectHandler) RandomObject(c *fiber.Ctx) error {
	projectID, ok := parseUUID(c, "projectId")
	if !ok {
		return nil
	}
	object, err := h.Service.FirstUnannotated(projectID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(object)
}

// GetObject handles GET /objects/id/:id.
// @Summary Get an object by ID
// @Tags objects
// @Produce json
// @Param id path string true "Object ID"
// @Success 200 {object} models.Object
// @Failure 404 {object} map[string]interface{} "Object not found"
// @Router /objects/id/{id} [get]
func (h *ObjectHandler) GetObject(c *fiber.Ctx) error {
	id, ok := parseUUID(c, "id")
	if !ok {
		return nil
	}
	object, err := h.Service.GetObject(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(object)
}

// DeleteObject handles DELETE /objects/id/:id.
// @Summary Delete an object
// @Tags objects
// @Param id path string true "Object ID"
// @Success 204
// @Router /objects/id/{id} [delete]
func (h *ObjectHandler) DeleteObject(c *fiber.Ctx) error {
	id, ok := parseUUID(c, "id")
	if !ok {
		return nil
	}
	if err := h.Service.DeleteObject(id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetAnnotations handles GET /objects/annotations/:id, returning the raw
// annotation payload.
// @Summary Get the annotation payload of an object
// @Tags annotations
// @Produce json
// @Param id path string true "Object ID"
// @Success 200 {string} string "Serialized annotation payload"
// @Router /objects/annotations/{id} [get]
func (h *ObjectHandler) GetAnnotations(c *fiber.Ctx) error {
	id, ok := parseUUID(c, "id")
	if !ok {
		return nil
	}
	annotations, err := h.Service.GetAnnotations(id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.SendString(annotations)
}

// StoreAnnotations handles POST /objects/annotations/:id?session=S with
// the serialized payload as body. Rejected with 403 when a different
// session holds the advisory lock; a call without a session id is always
// accepted.
// @Summary Store the annotation payload of an object
// @Tags annotations
// @Accept json
// @Param id path string true "Object ID"
// @Param session query string false "Editing session ID"
// @Success 204
// @Failure 403 {object} map[string]interface{} "Locked by another session"
// @Router /objects/annotations/{id} [post]
func (h *ObjectHandler) StoreAnnotations(c *fiber.Ctx) error {
	id, ok := parseUUID(c, "id")
	if !ok {
		return nil
	}
	sessionID := c.Query("session")
	if err := h.Service.StoreAnnotations(id, sessionID, string(c.Body())); err != nil {
		log.Printf("Error storing annotations for %s (session %q): %v", id, sessionID, err)
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// FinishObject handles POST /objects/finish/:id, marking the object
// annotated and ending the editing session.
// @Summary Finish an object
// @Tags annotations
// @Param id path string true "Object ID"
// @Success 204
// @Router /objects/finish/{id} [post]
func (h *ObjectHandler) FinishObject(c *fiber.Ctx) error {
	id, ok := parseUUID(c, "id")
	if !ok {
		return nil
	}
	if err := h.Service.Finish(id); err != nil {
		return respondError(c, err)
	}
	log.Printf("Finished object %s", id)
	return c.SendStatus(fiber.StatusNoContent)
}

// Lock handles POST /objects/lock/:id?session=S&force=true|false. Locking
// an object held by a different session without force is a no-op; callers
// check the status afterwards.
// @Summary Acquire the advisory lock on an object
// @Tags locks
// @Param id path string true "Object ID"
// @Param session query string true "Editing session ID"
// @Param force query bool false "Overwrite a foreign lock"
// @Success 204
// @Router /objects/lock/{id} [post]
func (h *ObjectHandler) Lock(c *fiber.Ctx) error {
	id, ok := parseUUID(c, "id")
	if !ok {
		return nil
	}
	sessionID := c.Query("session")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "session is required",
		})
	}
	force, _ := strconv.ParseBool(c.Query("force", "false"))
	if err := h.Locks.Lock(id, sessionID, force); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LockStatus handles GET /objects/lock/:id?session=S.
// @Summary Check whether a session holds the lock
// @Tags locks
// @Produce json
// @Param id path string true "Object ID"
// @Param session query string true "Editing session ID"
// @Success 200 {object} map[string]bool
// @Router /objects/lock/{id} [get]
func (h *ObjectHandler) LockStatus(c *fiber.Ctx) error {
	id, ok := parseUUID(c, "id")
	if !ok {
		return nil
	}
	held, err := h.Locks.Status(id, c.Query("session"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"locked": held})
}

// Unlock handles DELETE /objects/lock/:id?session=S. The clear is gated
// on the session matching the holder; without a session it is
// unconditional.
// @Summary Release the advisory lock on an object
// @Tags locks
// @Param id path string true "Object ID"
// @Param session query string false "Editing session ID"
// @Success 204
// @Router /objects/lock/{id} [delete]
func (h *ObjectHandler) Unlock(c *fiber.Ctx) error {
	id, ok := parseUUID(c, "id")
	if !ok {
		return nil
	}
	if err := h.Locks.Unlock(id, c.Query("session")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
