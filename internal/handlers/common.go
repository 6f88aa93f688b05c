package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"annotation-service/internal/cache"
	"annotation-service/internal/imaging"
	"annotation-service/internal/repository"
	"annotation-service/internal/services"
)

const InvalidUuidError = "invalid UUID"

// parseUUID parses a path parameter as UUID, responding 400 on failure.
func parseUUID(c *fiber.Ctx, param string) (uuid.UUID, bool) {
	idStr := c.Params(param)
	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Printf("Invalid UUID format: %s - Error: %v", idStr, err)
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
		return uuid.Nil, false
	}
	return id, true
}

// parseFilters reads the object filters from query parameters. Absent
// parameters leave the corresponding filter unset.
func parseFilters(c *fiber.Ctx) (repository.ObjectFilters, error) {
	var filters repository.ObjectFilters
	if v := c.Query("annotated"); v != "" {
		annotated, err := strconv.ParseBool(v)
		if err != nil {
			return filters, err
		}
		filters.Annotated = &annotated
	}
	if v := c.Query("synced"); v != "" {
		synced, err := strconv.ParseBool(v)
		if err != nil {
			return filters, err
		}
		filters.Synced = &synced
	}
	filters.Search = c.Query("search")
	return filters, nil
}

// respondError maps the error taxonomy onto HTTP statuses in the common
// response shape.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrLocked):
		status = fiber.StatusForbidden
	case errors.Is(err, imaging.ErrUpstreamUnavailable),
		errors.Is(err, imaging.ErrInvalidServiceResponse):
		status = fiber.StatusBadGateway
	case errors.Is(err, imaging.ErrUnknownSourceType),
		errors.Is(err, imaging.ErrNoCompatibleService),
		errors.Is(err, cache.ErrCacheIO):
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(fiber.Map{
		"error": true, "message": err.Error(),
	})
}
