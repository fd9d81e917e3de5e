package ports

import (
	"context"
	"time"

	"storefront/internal/features/catalog/domain"
)

// CatalogService defines the primary port for products, collections and highlights.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in domain.ProductInput) (*domain.Product, error)
	// DeleteProduct also removes the product from highlights and collections.
	DeleteProduct(ctx context.Context, id string) error
	SubscribeProducts(ctx context.Context, fn func([]domain.Product)) (func(), error)

	ListCollections(ctx context.Context) ([]domain.Collection, error)
	GetCollectionBySlug(ctx context.Context, slug string) (*domain.Collection, error)
	CreateCollection(ctx context.Context, in domain.CollectionInput) (*domain.Collection, error)
	UpdateCollection(ctx context.Context, id string, in domain.CollectionInput) (*domain.Collection, error)
	SetCollectionProducts(ctx context.Context, id string, productIDs []string) (*domain.Collection, error)
	DeleteCollection(ctx context.Context, id string) error
	SubscribeCollections(ctx context.Context, fn func([]domain.Collection)) (func(), error)

	// ListHighlights returns the highlighted products, oldest highlight first.
	ListHighlights(ctx context.Context) ([]domain.Product, error)
	AddHighlight(ctx context.Context, productID string) (*domain.Highlight, error)
	RemoveHighlight(ctx context.Context, productID string) error
}

// ProductRepository defines the secondary port for product storage.
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (string, error)
	// Replace overwrites every editable field of the stored product.
	Replace(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	Subscribe(ctx context.Context, fn func([]domain.Product)) (func(), error)
}

// CollectionRepository defines the secondary port for collection storage.
type CollectionRepository interface {
	List(ctx context.Context) ([]domain.Collection, error)
	Get(ctx context.Context, id string) (*domain.Collection, error)
	// FindBySlug returns nil and no error when no collection uses slug.
	FindBySlug(ctx context.Context, slug string) (*domain.Collection, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, collection *domain.Collection) (string, error)
	Replace(ctx context.Context, collection *domain.Collection) error
	SetProducts(ctx context.Context, id string, productIDs []string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	Subscribe(ctx context.Context, fn func([]domain.Collection)) (func(), error)
}

// HighlightRepository defines the secondary port for highlight storage.
type HighlightRepository interface {
	List(ctx context.Context) ([]domain.Highlight, error)
	// Add reports false when the product is already highlighted.
	Add(ctx context.Context, highlight *domain.Highlight) (bool, error)
	// Delete reports false when the product was not highlighted.
	Delete(ctx context.Context, productID string) (bool, error)
}
