package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"annotation-service/internal/imaging"
	"annotation-service/internal/services"
)

// CachedImageRoute is the public path under which cache tokens are
// redeemed for pixels.
const CachedImageRoute = "/api/annotation/images/cached/"

// ImageHandler defines handlers for image resolution and the local image
// cache.
type ImageHandler struct {
	Service *services.ObjectService
}

// NewImageHandler creates a new ImageHandler.
func NewImageHandler(service *services.ObjectService) *ImageHandler {
	return &ImageHandler{Service: service}
}

// imageURIResponse is what clients receive for an image resolution: a URI
// to fetch pixels from, which is either upstream content, a locally
// served file, or this service's cached-image endpoint.
type imageURIResponse struct {
	URI        string `json:"uri"`
	CacheToken string `json:"cache_token,omitempty"`
}

// GetImageURI handles POST /images/uri/:id with an ImageRequest body.
// @Summary Resolve the image URI of an object for a requested rendering
// @Tags images
// @Accept json
// @Produce json
// @Param id path string true "Object ID"
// @Success 200 {object} imageURIResponse
// @Failure 404 {object} map[string]interface{} "Object not found"
// @Failure 502 {object} map[string]interface{} "Upstream image service unavailable"
// @Router /images/uri/{id} [post]
func (h *ImageHandler) GetImageURI(c *fiber.Ctx) error {
	id, ok := parseUUID(c, "id")
	if !ok {
		return nil
	}
	var usage imaging.ImageRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&usage); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": true, "message": "invalid usage payload",
			})
		}
	}

	location, err := h.Service.GetImageURI(c.UserContext(), id, usage)
	if err != nil {
		log.Printf("Error resolving image for %s: %v", id, err)
		return respondError(c, err)
	}

	response := imageURIResponse{URI: location.URI, CacheToken: location.CacheToken}
	if location.CacheToken != "" {
		response.URI = CachedImageRoute + location.CacheToken
	}
	return c.JSON(response)
}

// GetCachedImage handles GET /images/cached/:token, serving the cached
// file and populating the cache on a miss.
// @Summary Serve a cached image by token
// @Tags images
// @Produce octet-stream
// @Param token path string true "Cache token"
// @Success 200 {file} file
// @Failure 502 {object} map[string]interface{} "Upstream image service unavailable"
// @Router /images/cached/{token} [get]
func (h *ImageHandler) GetCachedImage(c *fiber.Ctx) error {
	token := c.Params("token")
	path, err := h.Service.GetCachedFile(c.UserContext(), token)
	if err != nil {
		log.Printf("Error serving cached image %s: %v", token, err)
		return respondError(c, err)
	}
	return c.SendFile(path)
}
