package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/core/docstore"
	"storefront/internal/features/catalog/domain"
	"storefront/internal/features/catalog/ports"
)

// Collections holding the catalog.
const (
	ProductsCollection    = "products"
	CollectionsCollection = "collections"
	HighlightsCollection  = "highlights"
)

var errHighlightNotFound = errors.New("highlight not found")

// DocstoreProductRepository implements ports.ProductRepository.
type DocstoreProductRepository struct {
	docs documents[domain.Product]
}

var _ ports.ProductRepository = (*DocstoreProductRepository)(nil)

// NewDocstoreProductRepository creates a repository over the products collection of store.
func NewDocstoreProductRepository(store docstore.Store) *DocstoreProductRepository {
	return &DocstoreProductRepository{docs: documents[domain.Product]{
		coll:     store.Collection(ProductsCollection),
		notFound: domain.ErrProductNotFound,
	}}
}

func (r *DocstoreProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	return r.docs.list(ctx)
}

func (r *DocstoreProductRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	return r.docs.get(ctx, id)
}

func (r *DocstoreProductRepository) Create(ctx context.Context, product *domain.Product) (string, error) {
	return r.docs.create(ctx, product)
}

func (r *DocstoreProductRepository) Replace(ctx context.Context, product *domain.Product) error {
	return r.docs.replace(ctx, product.ID, product)
}

func (r *DocstoreProductRepository) Delete(ctx context.Context, id string) error {
	return r.docs.delete(ctx, id)
}

func (r *DocstoreProductRepository) Subscribe(ctx context.Context, fn func([]domain.Product)) (func(), error) {
	return r.docs.subscribe(ctx, fn)
}

// DocstoreCollectionRepository implements ports.CollectionRepository.
type DocstoreCollectionRepository struct {
	docs documents[domain.Collection]
}

var _ ports.CollectionRepository = (*DocstoreCollectionRepository)(nil)

// NewDocstoreCollectionRepository creates a repository over the collections collection of store.
func NewDocstoreCollectionRepository(store docstore.Store) *DocstoreCollectionRepository {
	return &DocstoreCollectionRepository{docs: documents[domain.Collection]{
		coll:     store.Collection(CollectionsCollection),
		notFound: domain.ErrCollectionNotFound,
	}}
}

func (r *DocstoreCollectionRepository) List(ctx context.Context) ([]domain.Collection, error) {
	return r.docs.list(ctx)
}

func (r *DocstoreCollectionRepository) Get(ctx context.Context, id string) (*domain.Collection, error) {
	return r.docs.get(ctx, id)
}

func (r *DocstoreCollectionRepository) FindBySlug(ctx context.Context, slug string) (*domain.Collection, error) {
	return r.docs.findOne(ctx, "slug", slug)
}

func (r *DocstoreCollectionRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return r.docs.coll.ExistsByField(ctx, "slug", slug)
}

func (r *DocstoreCollectionRepository) Create(ctx context.Context, collection *domain.Collection) (string, error) {
	return r.docs.create(ctx, collection)
}

func (r *DocstoreCollectionRepository) Replace(ctx context.Context, collection *domain.Collection) error {
	return r.docs.replace(ctx, collection.ID, collection)
}

// SetProducts replaces the product list and bumps updatedAt.
func (r *DocstoreCollectionRepository) SetProducts(ctx context.Context, id string, productIDs []string, updatedAt time.Time) error {
	if productIDs == nil {
		productIDs = []string{}
	}
	return r.docs.update(ctx, id, docstore.Document{
		"productIds": productIDs,
		"updatedAt":  updatedAt.UTC().Format(time.RFC3339Nano),
	})
}

func (r *DocstoreCollectionRepository) Delete(ctx context.Context, id string) error {
	return r.docs.delete(ctx, id)
}

func (r *DocstoreCollectionRepository) Subscribe(ctx context.Context, fn func([]domain.Collection)) (func(), error) {
	return r.docs.subscribe(ctx, fn)
}

// DocstoreHighlightRepository implements ports.HighlightRepository. Each
// highlight is stored under its product id, which keeps them unique.
type DocstoreHighlightRepository struct {
	docs documents[domain.Highlight]
}

var _ ports.HighlightRepository = (*DocstoreHighlightRepository)(nil)

// NewDocstoreHighlightRepository creates a repository over the highlights collection of store.
func NewDocstoreHighlightRepository(store docstore.Store) *DocstoreHighlightRepository {
	return &DocstoreHighlightRepository{docs: documents[domain.Highlight]{
		coll:     store.Collection(HighlightsCollection),
		notFound: errHighlightNotFound,
	}}
}

func (r *DocstoreHighlightRepository) List(ctx context.Context) ([]domain.Highlight, error) {
	return r.docs.list(ctx)
}

func (r *DocstoreHighlightRepository) Add(ctx context.Context, highlight *domain.Highlight) (bool, error) {
	doc, err := docstore.Encode(highlight)
	if err != nil {
		return false, err
	}
	doc[docstore.IDField] = highlight.ProductID
	_, err = r.docs.coll.Create(ctx, doc)
	if errors.Is(err, docstore.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to add highlight: %w", err)
	}
	return true, nil
}

func (r *DocstoreHighlightRepository) Delete(ctx context.Context, productID string) (bool, error) {
	err := r.docs.delete(ctx, productID)
	if errors.Is(err, errHighlightNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
