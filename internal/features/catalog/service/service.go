package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"storefront/internal/core/apperror"
	"storefront/internal/core/logger"
	"storefront/internal/features/catalog/domain"
	"storefront/internal/features/catalog/ports"

	"go.uber.org/zap"
)

// CatalogServiceImpl implements ports.CatalogService.
type CatalogServiceImpl struct {
	products    ports.ProductRepository
	collections ports.CollectionRepository
	highlights  ports.HighlightRepository
	now         func() time.Time
}

var _ ports.CatalogService = (*CatalogServiceImpl)(nil)

// NewCatalogService creates a new CatalogServiceImpl.
func NewCatalogService(products ports.ProductRepository, collections ports.CollectionRepository, highlights ports.HighlightRepository) *CatalogServiceImpl {
	return &CatalogServiceImpl{
		products:    products,
		collections: collections,
		highlights:  highlights,
		now:         time.Now,
	}
}

// ListProducts returns every product, newest first.
func (s *CatalogServiceImpl) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list products")
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (s *CatalogServiceImpl) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to load product")
	}
	return product, nil
}

func (s *CatalogServiceImpl) CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	in, err := in.Normalize()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	product := &domain.Product{CreatedAt: now}
	applyProduct(product, in, now)

	id, err := s.products.Create(ctx, product)
	if err != nil {
		return nil, storeError(err, "failed to create product")
	}
	product.ID = id

	logger.Get().Info("Product created", zap.String("product_id", id), zap.String("title", product.Title))
	return product, nil
}

// UpdateProduct replaces the editable fields and keeps CreatedAt.
func (s *CatalogServiceImpl) UpdateProduct(ctx context.Context, id string, in domain.ProductInput) (*domain.Product, error) {
	in, err := in.Normalize()
	if err != nil {
		return nil, err
	}

	product, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to load product")
	}
	applyProduct(product, in, s.now().UTC())

	if err := s.products.Replace(ctx, product); err != nil {
		return nil, storeError(err, "failed to update product")
	}
	return product, nil
}

func (s *CatalogServiceImpl) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return storeError(err, "failed to delete product")
	}
	logger.Get().Info("Product deleted", zap.String("product_id", id))

	// The product is gone either way; stale references only hide it from listings.
	if _, err := s.highlights.Delete(ctx, id); err != nil {
		logger.Get().Warn("Failed to remove highlight of deleted product", zap.String("product_id", id), zap.Error(err))
	}
	s.dropFromCollections(ctx, id)
	return nil
}

func (s *CatalogServiceImpl) dropFromCollections(ctx context.Context, productID string) {
	collections, err := s.collections.List(ctx)
	if err != nil {
		logger.Get().Warn("Failed to list collections for product cleanup", zap.String("product_id", productID), zap.Error(err))
		return
	}
	for _, c := range collections {
		kept := make([]string, 0, len(c.ProductIDs))
		for _, id := range c.ProductIDs {
			if id != productID {
				kept = append(kept, id)
			}
		}
		if len(kept) == len(c.ProductIDs) {
			continue
		}
		if err := s.collections.SetProducts(ctx, c.ID, kept, s.now().UTC()); err != nil {
			logger.Get().Warn("Failed to remove deleted product from collection",
				zap.String("product_id", productID),
				zap.String("collection_id", c.ID),
				zap.Error(err),
			)
		}
	}
}

func (s *CatalogServiceImpl) SubscribeProducts(ctx context.Context, fn func([]domain.Product)) (func(), error) {
	unsubscribe, err := s.products.Subscribe(ctx, fn)
	if err != nil {
		return nil, storeError(err, "failed to subscribe to products")
	}
	return unsubscribe, nil
}

// ListCollections returns every collection sorted by title.
func (s *CatalogServiceImpl) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	collections, err := s.collections.List(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list collections")
	}
	sort.SliceStable(collections, func(i, j int) bool {
		return collections[i].Title < collections[j].Title
	})
	return collections, nil
}

func (s *CatalogServiceImpl) GetCollectionBySlug(ctx context.Context, slug string) (*domain.Collection, error) {
	collection, err := s.collections.FindBySlug(ctx, slug)
	if err != nil {
		return nil, storeError(err, "failed to load collection")
	}
	if collection == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, slug)
	}
	return collection, nil
}

func (s *CatalogServiceImpl) CreateCollection(ctx context.Context, in domain.CollectionInput) (*domain.Collection, error) {
	in, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, in.Slug); err != nil {
		return nil, err
	}
	if err := s.ensureProductsExist(ctx, in.ProductIDs); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	collection := &domain.Collection{
		Title:       in.Title,
		Slug:        in.Slug,
		Description: in.Description,
		Cover:       in.Cover,
		ProductIDs:  in.ProductIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if collection.ProductIDs == nil {
		collection.ProductIDs = []string{}
	}

	id, err := s.collections.Create(ctx, collection)
	if err != nil {
		return nil, storeError(err, "failed to create collection")
	}
	collection.ID = id

	logger.Get().Info("Collection created", zap.String("collection_id", id), zap.String("slug", collection.Slug))
	return collection, nil
}

// UpdateCollection checks slug uniqueness only when the slug changes.
func (s *CatalogServiceImpl) UpdateCollection(ctx context.Context, id string, in domain.CollectionInput) (*domain.Collection, error) {
	in, err := in.Normalize()
	if err != nil {
		return nil, err
	}

	collection, err := s.collections.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to load collection")
	}
	if in.Slug != collection.Slug {
		if err := s.ensureSlugFree(ctx, in.Slug); err != nil {
			return nil, err
		}
	}
	if in.ProductIDs != nil {
		if err := s.ensureProductsExist(ctx, in.ProductIDs); err != nil {
			return nil, err
		}
		collection.ProductIDs = in.ProductIDs
	}

	collection.Title = in.Title
	collection.Slug = in.Slug
	collection.Description = in.Description
	collection.Cover = in.Cover
	collection.UpdatedAt = s.now().UTC()

	if err := s.collections.Replace(ctx, collection); err != nil {
		return nil, storeError(err, "failed to update collection")
	}
	return collection, nil
}

func (s *CatalogServiceImpl) SetCollectionProducts(ctx context.Context, id string, productIDs []string) (*domain.Collection, error) {
	productIDs = domain.UniqueIDs(productIDs)
	if err := s.ensureProductsExist(ctx, productIDs); err != nil {
		return nil, err
	}
	if err := s.collections.SetProducts(ctx, id, productIDs, s.now().UTC()); err != nil {
		return nil, storeError(err, "failed to update collection products")
	}

	collection, err := s.collections.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to reload collection")
	}
	return collection, nil
}

func (s *CatalogServiceImpl) DeleteCollection(ctx context.Context, id string) error {
	if err := s.collections.Delete(ctx, id); err != nil {
		return storeError(err, "failed to delete collection")
	}
	logger.Get().Info("Collection deleted", zap.String("collection_id", id))
	return nil
}

func (s *CatalogServiceImpl) SubscribeCollections(ctx context.Context, fn func([]domain.Collection)) (func(), error) {
	unsubscribe, err := s.collections.Subscribe(ctx, fn)
	if err != nil {
		return nil, storeError(err, "failed to subscribe to collections")
	}
	return unsubscribe, nil
}

// ListHighlights skips highlights whose product no longer exists.
func (s *CatalogServiceImpl) ListHighlights(ctx context.Context) ([]domain.Product, error) {
	highlights, err := s.highlights.List(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list highlights")
	}
	sort.SliceStable(highlights, func(i, j int) bool {
		return highlights[i].CreatedAt.Before(highlights[j].CreatedAt)
	})

	products := make([]domain.Product, 0, len(highlights))
	for _, h := range highlights {
		product, err := s.products.Get(ctx, h.ProductID)
		if errors.Is(err, domain.ErrProductNotFound) {
			continue
		}
		if err != nil {
			return nil, storeError(err, "failed to load highlighted product")
		}
		products = append(products, *product)
	}
	return products, nil
}

// AddHighlight is idempotent: highlighting a product twice keeps the first highlight.
func (s *CatalogServiceImpl) AddHighlight(ctx context.Context, productID string) (*domain.Highlight, error) {
	if productID == "" {
		return nil, apperror.Validation("productId is required")
	}
	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, storeError(err, "failed to load product")
	}

	highlight := &domain.Highlight{ProductID: productID, CreatedAt: s.now().UTC()}
	added, err := s.highlights.Add(ctx, highlight)
	if err != nil {
		return nil, storeError(err, "failed to add highlight")
	}
	if added {
		logger.Get().Info("Product highlighted", zap.String("product_id", productID))
	}
	return highlight, nil
}

func (s *CatalogServiceImpl) RemoveHighlight(ctx context.Context, productID string) error {
	removed, err := s.highlights.Delete(ctx, productID)
	if err != nil {
		return storeError(err, "failed to remove highlight")
	}
	if !removed {
		return fmt.Errorf("highlight for product %s %w", productID, apperror.ErrNotFound)
	}
	return nil
}

func (s *CatalogServiceImpl) ensureSlugFree(ctx context.Context, slug string) error {
	taken, err := s.collections.SlugExists(ctx, slug)
	if err != nil {
		return storeError(err, "failed to check slug")
	}
	if taken {
		return fmt.Errorf("%w: %s", domain.ErrSlugTaken, slug)
	}
	return nil
}

func (s *CatalogServiceImpl) ensureProductsExist(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if _, err := s.products.Get(ctx, id); err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				return apperror.Validation("unknown product %s", id)
			}
			return storeError(err, "failed to load product")
		}
	}
	return nil
}

func applyProduct(p *domain.Product, in domain.ProductInput, now time.Time) {
	p.Title = in.Title
	p.Price = in.Price
	p.Cover = in.Cover
	p.Sizes = in.Sizes
	p.Colors = in.Colors
	p.ColorImages = in.ColorImages
	p.UpdatedAt = now
}

// storeError passes domain errors through and marks anything else as a store failure.
func storeError(err error, msg string) error {
	if errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrValidation) || errors.Is(err, apperror.ErrConflict) {
		return err
	}
	return fmt.Errorf("%w: service: %s: %v", apperror.ErrStore, msg, err)
}
