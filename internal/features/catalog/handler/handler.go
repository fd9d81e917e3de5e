package handler

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/core/httperror"
	"storefront/internal/core/sse"
	"storefront/internal/features/catalog/domain"
	"storefront/internal/features/catalog/ports"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler handles HTTP requests for products, collections and highlights.
type CatalogHandler struct {
	service       ports.CatalogService
	streamTimeout time.Duration
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		service:       service,
		streamTimeout: sse.DefaultTimeout,
	}
}

// SetProductsRequest is the body of PUT /admin/collections/:id/products.
type SetProductsRequest struct {
	ProductIDs []string `json:"productIds"`
}

// AddHighlightRequest is the body of POST /admin/highlights.
type AddHighlightRequest struct {
	ProductID string `json:"productId"`
}

// ListProducts handles GET /products.
// @Summary List products
// @Description Newest first.
// @Tags Catalog
// @Produce json
// @Success 200 {array} domain.Product
// @Failure 503 {object} httperror.ErrorResponse
// @Router /products [get]
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		return httperror.Write(c, err, "Failed to list products")
	}
	return c.Status(http.StatusOK).JSON(products)
}

// GetProduct handles GET /products/:id.
// @Summary Get a product
// @Tags Catalog
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} httperror.ErrorResponse
// @Router /products/{id} [get]
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return httperror.Write(c, err, "Failed to load product")
	}
	return c.Status(http.StatusOK).JSON(product)
}

// CreateProduct handles POST /admin/products.
// @Summary Create a product
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body domain.ProductInput true "Product"
// @Success 201 {object} domain.Product
// @Failure 400 {object} httperror.ErrorResponse
// @Failure 403 {object} httperror.ErrorResponse
// @Router /admin/products [post]
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var in domain.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return httperror.Abort(c, http.StatusBadRequest, "Invalid request body")
	}

	product, err := h.service.CreateProduct(c.UserContext(), in)
	if err != nil {
		return httperror.Write(c, err, "Failed to create product")
	}
	return c.Status(http.StatusCreated).JSON(product)
}

// UpdateProduct handles PUT /admin/products/:id.
// @Summary Replace a product
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param product body domain.ProductInput true "Product"
// @Success 200 {object} domain.Product
// @Failure 400 {object} httperror.ErrorResponse
// @Failure 404 {object} httperror.ErrorResponse
// @Router /admin/products/{id} [put]
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	var in domain.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return httperror.Abort(c, http.StatusBadRequest, "Invalid request body")
	}

	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return httperror.Write(c, err, "Failed to update product")
	}
	return c.Status(http.StatusOK).JSON(product)
}

// DeleteProduct handles DELETE /admin/products/:id.
// @Summary Delete a product
// @Description Also removes it from highlights and collections.
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 204
// @Failure 404 {object} httperror.ErrorResponse
// @Router /admin/products/{id} [delete]
func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return httperror.Write(c, err, "Failed to delete product")
	}
	return c.SendStatus(http.StatusNoContent)
}

// StreamProducts handles GET /admin/products/stream.
// @Summary Live product feed
// @Description Server-sent events. Every "products" event carries the full product list.
// @Tags Admin
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200
// @Router /admin/products/stream [get]
func (h *CatalogHandler) StreamProducts(c *fiber.Ctx) error {
	return sse.Stream(c, "products", h.streamTimeout, func(ctx context.Context, send func(any)) (func(), error) {
		return h.service.SubscribeProducts(ctx, func(products []domain.Product) { send(products) })
	})
}

// ListCollections handles GET /collections.
// @Summary List collections
// @Description Sorted by title.
// @Tags Catalog
// @Produce json
// @Success 200 {array} domain.Collection
// @Failure 503 {object} httperror.ErrorResponse
// @Router /collections [get]
func (h *CatalogHandler) ListCollections(c *fiber.Ctx) error {
	collections, err := h.service.ListCollections(c.UserContext())
	if err != nil {
		return httperror.Write(c, err, "Failed to list collections")
	}
	return c.Status(http.StatusOK).JSON(collections)
}

// GetCollection handles GET /collections/:slug.
// @Summary Get a collection by slug
// @Tags Catalog
// @Produce json
// @Param slug path string true "Collection slug"
// @Success 200 {object} domain.Collection
// @Failure 404 {object} httperror.ErrorResponse
// @Router /collections/{slug} [get]
func (h *CatalogHandler) GetCollection(c *fiber.Ctx) error {
	collection, err := h.service.GetCollectionBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return httperror.Write(c, err, "Failed to load collection")
	}
	return c.Status(http.StatusOK).JSON(collection)
}

// CreateCollection handles POST /admin/collections.
// @Summary Create a collection
// @Description An empty slug is derived from the title. Slugs are unique.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param collection body domain.CollectionInput true "Collection"
// @Success 201 {object} domain.Collection
// @Failure 400 {object} httperror.ErrorResponse
// @Failure 409 {object} httperror.ErrorResponse
// @Router /admin/collections [post]
func (h *CatalogHandler) CreateCollection(c *fiber.Ctx) error {
	var in domain.CollectionInput
	if err := c.BodyParser(&in); err != nil {
		return httperror.Abort(c, http.StatusBadRequest, "Invalid request body")
	}

	collection, err := h.service.CreateCollection(c.UserContext(), in)
	if err != nil {
		return httperror.Write(c, err, "Failed to create collection")
	}
	return c.Status(http.StatusCreated).JSON(collection)
}

// UpdateCollection handles PUT /admin/collections/:id.
// @Summary Update a collection
// @Description Omitting productIds keeps the current products.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Collection ID"
// @Param collection body domain.CollectionInput true "Collection"
// @Success 200 {object} domain.Collection
// @Failure 400 {object} httperror.ErrorResponse
// @Failure 404 {object} httperror.ErrorResponse
// @Failure 409 {object} httperror.ErrorResponse
// @Router /admin/collections/{id} [put]
func (h *CatalogHandler) UpdateCollection(c *fiber.Ctx) error {
	var in domain.CollectionInput
	if err := c.BodyParser(&in); err != nil {
		return httperror.Abort(c, http.StatusBadRequest, "Invalid request body")
	}

	collection, err := h.service.UpdateCollection(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return httperror.Write(c, err, "Failed to update collection")
	}
	return c.Status(http.StatusOK).JSON(collection)
}

// SetCollectionProducts handles PUT /admin/collections/:id/products.
// @Summary Replace the products of a collection
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Collection ID"
// @Param request body SetProductsRequest true "Product IDs"
// @Success 200 {object} domain.Collection
// @Failure 400 {object} httperror.ErrorResponse
// @Failure 404 {object} httperror.ErrorResponse
// @Router /admin/collections/{id}/products [put]
func (h *CatalogHandler) SetCollectionProducts(c *fiber.Ctx) error {
	var req SetProductsRequest
	if err := c.BodyParser(&req); err != nil {
		return httperror.Abort(c, http.StatusBadRequest, "Invalid request body")
	}

	collection, err := h.service.SetCollectionProducts(c.UserContext(), c.Params("id"), req.ProductIDs)
	if err != nil {
		return httperror.Write(c, err, "Failed to update collection products")
	}
	return c.Status(http.StatusOK).JSON(collection)
}

// DeleteCollection handles DELETE /admin/collections/:id.
// @Summary Delete a collection
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Collection ID"
// @Success 204
// @Failure 404 {object} httperror.ErrorResponse
// @Router /admin/collections/{id} [delete]
func (h *CatalogHandler) DeleteCollection(c *fiber.Ctx) error {
	if err := h.service.DeleteCollection(c.UserContext(), c.Params("id")); err != nil {
		return httperror.Write(c, err, "Failed to delete collection")
	}
	return c.SendStatus(http.StatusNoContent)
}

// StreamCollections handles GET /admin/collections/stream.
// @Summary Live collection feed
// @Description Server-sent events. Every "collections" event carries the full collection list.
// @Tags Admin
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200
// @Router /admin/collections/stream [get]
func (h *CatalogHandler) StreamCollections(c *fiber.Ctx) error {
	return sse.Stream(c, "collections", h.streamTimeout, func(ctx context.Context, send func(any)) (func(), error) {
		return h.service.SubscribeCollections(ctx, func(collections []domain.Collection) { send(collections) })
	})
}

// ListHighlights handles GET /highlights.
// @Summary List highlighted products
// @Description In the order they were highlighted.
// @Tags Catalog
// @Produce json
// @Success 200 {array} domain.Product
// @Failure 503 {object} httperror.ErrorResponse
// @Router /highlights [get]
func (h *CatalogHandler) ListHighlights(c *fiber.Ctx) error {
	products, err := h.service.ListHighlights(c.UserContext())
	if err != nil {
		return httperror.Write(c, err, "Failed to list highlights")
	}
	return c.Status(http.StatusOK).JSON(products)
}

// AddHighlight handles POST /admin/highlights.
// @Summary Highlight a product
// @Description Highlighting an already highlighted product is a no-op.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddHighlightRequest true "Product"
// @Success 200 {object} domain.Highlight
// @Failure 400 {object} httperror.ErrorResponse
// @Failure 404 {object} httperror.ErrorResponse
// @Router /admin/highlights [post]
func (h *CatalogHandler) AddHighlight(c *fiber.Ctx) error {
	var req AddHighlightRequest
	if err := c.BodyParser(&req); err != nil {
		return httperror.Abort(c, http.StatusBadRequest, "Invalid request body")
	}

	highlight, err := h.service.AddHighlight(c.UserContext(), req.ProductID)
	if err != nil {
		return httperror.Write(c, err, "Failed to add highlight")
	}
	return c.Status(http.StatusOK).JSON(highlight)
}

// RemoveHighlight handles DELETE /admin/highlights/:productId.
// @Summary Remove a highlight
// @Tags Admin
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Success 204
// @Failure 404 {object} httperror.ErrorResponse
// @Router /admin/highlights/{productId} [delete]
func (h *CatalogHandler) RemoveHighlight(c *fiber.Ctx) error {
	if err := h.service.RemoveHighlight(c.UserContext(), c.Params("productId")); err != nil {
		return httperror.Write(c, err, "Failed to remove highlight")
	}
	return c.SendStatus(http.StatusNoContent)
}
