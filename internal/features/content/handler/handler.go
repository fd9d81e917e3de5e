package handler

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/core/httperror"
	"storefront/internal/core/sse"
	"storefront/internal/features/content/domain"
	"storefront/internal/features/content/ports"

	"github.com/gofiber/fiber/v2"
)

// ContentHandler handles HTTP requests for page content and creators.
type ContentHandler struct {
	service       ports.ContentService
	streamTimeout time.Duration
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(service ports.ContentService) *ContentHandler {
	return &ContentHandler{
		service:       service,
		streamTimeout: sse.DefaultTimeout,
	}
}

// ListPages handles GET /content.
// @Summary List page content
// @Description One entry per editable page; pages never saved come back empty.
// @Tags Content
// @Produce json
// @Success 200 {array} domain.PageContent
// @Failure 503 {object} httperror.ErrorResponse
// @Router /content [get]
func (h *ContentHandler) ListPages(c *fiber.Ctx) error {
	pages, err := h.service.ListPages(c.UserContext())
	if err != nil {
		return httperror.Write(c, err, "Failed to list pages")
	}
	return c.Status(http.StatusOK).JSON(pages)
}

// GetPage handles GET /content/:page.
// @Summary Get the content of a page
// @Tags Content
// @Produce json
// @Param page path string true "Page" Enums(home, criadores, sobre)
// @Success 200 {object} domain.PageContent
// @Failure 400 {object} httperror.ErrorResponse
// @Router /content/{page} [get]
func (h *ContentHandler) GetPage(c *fiber.Ctx) error {
	page, err := domain.ParsePage(c.Params("page"))
	if err != nil {
		return httperror.Write(c, err, "Invalid page")
	}

	content, err := h.service.GetPage(c.UserContext(), page)
	if err != nil {
		return httperror.Write(c, err, "Failed to load page")
	}
	return c.Status(http.StatusOK).JSON(content)
}

// SavePage handles PUT /admin/content/:page.
// @Summary Save the content of a page
// @Description Replaces the whole page, lists included.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page path string true "Page" Enums(home, criadores, sobre)
// @Param content body domain.PageContentInput true "Content"
// @Success 200 {object} domain.PageContent
// @Failure 400 {object} httperror.ErrorResponse
// @Failure 403 {object} httperror.ErrorResponse
// @Router /admin/content/{page} [put]
func (h *ContentHandler) SavePage(c *fiber.Ctx) error {
	page, err := domain.ParsePage(c.Params("page"))
	if err != nil {
		return httperror.Write(c, err, "Invalid page")
	}
	var in domain.PageContentInput
	if err := c.BodyParser(&in); err != nil {
		return httperror.Abort(c, http.StatusBadRequest, "Invalid request body")
	}

	content, err := h.service.SavePage(c.UserContext(), page, in)
	if err != nil {
		return httperror.Write(c, err, "Failed to save page")
	}
	return c.Status(http.StatusOK).JSON(content)
}

// DeletePage handles DELETE /admin/content/:page.
// @Summary Reset a page to empty
// @Tags Admin
// @Security BearerAuth
// @Param page path string true "Page" Enums(home, criadores, sobre)
// @Success 204
// @Failure 404 {object} httperror.ErrorResponse
// @Router /admin/content/{page} [delete]
func (h *ContentHandler) DeletePage(c *fiber.Ctx) error {
	page, err := domain.ParsePage(c.Params("page"))
	if err != nil {
		return httperror.Write(c, err, "Invalid page")
	}
	if err := h.service.DeletePage(c.UserContext(), page); err != nil {
		return httperror.Write(c, err, "Failed to delete page")
	}
	return c.SendStatus(http.StatusNoContent)
}

// StreamPages handles GET /admin/content/stream.
// @Summary Live page content feed
// @Description Server-sent events. Every "content" event carries every saved page.
// @Tags Admin
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200
// @Router /admin/content/stream [get]
func (h *ContentHandler) StreamPages(c *fiber.Ctx) error {
	return sse.Stream(c, "content", h.streamTimeout, func(ctx context.Context, send func(any)) (func(), error) {
		return h.service.SubscribePages(ctx, func(pages []domain.PageContent) { send(pages) })
	})
}

// ListCreators handles GET /creators.
// @Summary List creators
// @Description Sorted by name.
// @Tags Content
// @Produce json
// @Success 200 {array} domain.Creator
// @Failure 503 {object} httperror.ErrorResponse
// @Router /creators [get]
func (h *ContentHandler) ListCreators(c *fiber.Ctx) error {
	creators, err := h.service.ListCreators(c.UserContext())
	if err != nil {
		return httperror.Write(c, err, "Failed to list creators")
	}
	return c.Status(http.StatusOK).JSON(creators)
}

// GetCreator handles GET /creators/:slug.
// @Summary Get a creator by slug
// @Tags Content
// @Produce json
// @Param slug path string true "Creator slug"
// @Success 200 {object} domain.Creator
// @Failure 404 {object} httperror.ErrorResponse
// @Router /creators/{slug} [get]
func (h *ContentHandler) GetCreator(c *fiber.Ctx) error {
	creator, err := h.service.GetCreatorBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return httperror.Write(c, err, "Failed to load creator")
	}
	return c.Status(http.StatusOK).JSON(creator)
}

// CreateCreator handles POST /admin/creators.
// @Summary Create a creator
// @Description An empty slug is derived from the name. Slugs are unique.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param creator body domain.CreatorInput true "Creator"
// @Success 201 {object} domain.Creator
// @Failure 400 {object} httperror.ErrorResponse
// @Failure 409 {object} httperror.ErrorResponse
// @Router /admin/creators [post]
func (h *ContentHandler) CreateCreator(c *fiber.Ctx) error {
	var in domain.CreatorInput
	if err := c.BodyParser(&in); err != nil {
		return httperror.Abort(c, http.StatusBadRequest, "Invalid request body")
	}

	creator, err := h.service.CreateCreator(c.UserContext(), in)
	if err != nil {
		return httperror.Write(c, err, "Failed to create creator")
	}
	return c.Status(http.StatusCreated).JSON(creator)
}

// UpdateCreator handles PUT /admin/creators/:id.
// @Summary Update a creator
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Creator ID"
// @Param creator body domain.CreatorInput true "Creator"
// @Success 200 {object} domain.Creator
// @Failure 400 {object} httperror.ErrorResponse
// @Failure 404 {object} httperror.ErrorResponse
// @Failure 409 {object} httperror.ErrorResponse
// @Router /admin/creators/{id} [put]
func (h *ContentHandler) UpdateCreator(c *fiber.Ctx) error {
	var in domain.CreatorInput
	if err := c.BodyParser(&in); err != nil {
		return httperror.Abort(c, http.StatusBadRequest, "Invalid request body")
	}

	creator, err := h.service.UpdateCreator(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return httperror.Write(c, err, "Failed to update creator")
	}
	return c.Status(http.StatusOK).JSON(creator)
}

// DeleteCreator handles DELETE /admin/creators/:id.
// @Summary Delete a creator
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Creator ID"
// @Success 204
// @Failure 404 {object} httperror.ErrorResponse
// @Router /admin/creators/{id} [delete]
func (h *ContentHandler) DeleteCreator(c *fiber.Ctx) error {
	if err := h.service.DeleteCreator(c.UserContext(), c.Params("id")); err != nil {
		return httperror.Write(c, err, "Failed to delete creator")
	}
	return c.SendStatus(http.StatusNoContent)
}
