package ports

import (
	"context"

	"storefront/internal/features/content/domain"
)

// ContentService defines the primary port for page content and creators.
type ContentService interface {
	// ListPages returns the content of every page, unsaved pages included as empty.
	ListPages(ctx context.Context) ([]domain.PageContent, error)
	// GetPage returns domain.Empty(page) when nothing was saved yet.
	GetPage(ctx context.Context, page domain.Page) (*domain.PageContent, error)
	SavePage(ctx context.Context, page domain.Page, in domain.PageContentInput) (*domain.PageContent, error)
	DeletePage(ctx context.Context, page domain.Page) error
	SubscribePages(ctx context.Context, fn func([]domain.PageContent)) (func(), error)

	ListCreators(ctx context.Context) ([]domain.Creator, error)
	GetCreatorBySlug(ctx context.Context, slug string) (*domain.Creator, error)
	CreateCreator(ctx context.Context, in domain.CreatorInput) (*domain.Creator, error)
	UpdateCreator(ctx context.Context, id string, in domain.CreatorInput) (*domain.Creator, error)
	DeleteCreator(ctx context.Context, id string) error
}

// PageRepository defines the secondary port for page content storage.
type PageRepository interface {
	List(ctx context.Context) ([]domain.PageContent, error)
	// Get returns nil and no error when the page was never saved.
	Get(ctx context.Context, page domain.Page) (*domain.PageContent, error)
	// Save creates or overwrites the content of content.Page.
	Save(ctx context.Context, content *domain.PageContent) error
	Delete(ctx context.Context, page domain.Page) error
	Subscribe(ctx context.Context, fn func([]domain.PageContent)) (func(), error)
}

// CreatorRepository defines the secondary port for creator storage.
type CreatorRepository interface {
	List(ctx context.Context) ([]domain.Creator, error)
	Get(ctx context.Context, id string) (*domain.Creator, error)
	// FindBySlug returns nil and no error when no creator uses slug.
	FindBySlug(ctx context.Context, slug string) (*domain.Creator, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, creator *domain.Creator) (string, error)
	Replace(ctx context.Context, creator *domain.Creator) error
	Delete(ctx context.Context, id string) error
}
