package adapters

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/core/docstore"
	"storefront/internal/core/logger"
	"storefront/internal/features/content/domain"
	"storefront/internal/features/content/ports"

	"go.uber.org/zap"
)

// Collections holding editable content.
const (
	PagesCollection    = "content"
	CreatorsCollection = "creators"
)

// DocstorePageRepository implements ports.PageRepository. Each page is
// stored under its name.
type DocstorePageRepository struct {
	coll docstore.Collection
}

var _ ports.PageRepository = (*DocstorePageRepository)(nil)

// NewDocstorePageRepository creates a repository over the content collection of store.
func NewDocstorePageRepository(store docstore.Store) *DocstorePageRepository {
	return &DocstorePageRepository{coll: store.Collection(PagesCollection)}
}

func (r *DocstorePageRepository) List(ctx context.Context) ([]domain.PageContent, error) {
	docs, err := r.coll.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PageContent, 0, len(docs))
	for _, doc := range docs {
		var c domain.PageContent
		if err := docstore.Decode(doc, &c); err != nil {
			return nil, fmt.Errorf("page %s: %w", doc.ID(), err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *DocstorePageRepository) Get(ctx context.Context, page domain.Page) (*domain.PageContent, error) {
	doc, err := r.coll.Get(ctx, string(page))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var c domain.PageContent
	if err := docstore.Decode(doc, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save overwrites an existing page and creates a missing one. A concurrent
// first save turns the create into an overwrite.
func (r *DocstorePageRepository) Save(ctx context.Context, content *domain.PageContent) error {
	doc, err := docstore.Encode(content)
	if err != nil {
		return err
	}
	id := string(content.Page)

	err = r.coll.Update(ctx, id, doc)
	if !errors.Is(err, docstore.ErrNotFound) {
		return err
	}

	doc[docstore.IDField] = id
	_, err = r.coll.Create(ctx, doc)
	if errors.Is(err, docstore.ErrConflict) {
		delete(doc, docstore.IDField)
		return r.coll.Update(ctx, id, doc)
	}
	return err
}

func (r *DocstorePageRepository) Delete(ctx context.Context, page domain.Page) error {
	err := r.coll.Delete(ctx, string(page))
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrPageNotFound, page)
	}
	return err
}

func (r *DocstorePageRepository) Subscribe(ctx context.Context, fn func([]domain.PageContent)) (func(), error) {
	return r.coll.Subscribe(ctx, func(docs []docstore.Document) {
		out := make([]domain.PageContent, 0, len(docs))
		for _, doc := range docs {
			var c domain.PageContent
			if err := docstore.Decode(doc, &c); err != nil {
				logger.Get().Warn("Skipping undecodable page content", zap.String("page", doc.ID()), zap.Error(err))
				continue
			}
			out = append(out, c)
		}
		fn(out)
	})
}

// DocstoreCreatorRepository implements ports.CreatorRepository.
type DocstoreCreatorRepository struct {
	coll docstore.Collection
}

var _ ports.CreatorRepository = (*DocstoreCreatorRepository)(nil)

// NewDocstoreCreatorRepository creates a repository over the creators collection of store.
func NewDocstoreCreatorRepository(store docstore.Store) *DocstoreCreatorRepository {
	return &DocstoreCreatorRepository{coll: store.Collection(CreatorsCollection)}
}

func (r *DocstoreCreatorRepository) List(ctx context.Context) ([]domain.Creator, error) {
	docs, err := r.coll.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Creator, 0, len(docs))
	for _, doc := range docs {
		var c domain.Creator
		if err := docstore.Decode(doc, &c); err != nil {
			return nil, fmt.Errorf("creator %s: %w", doc.ID(), err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *DocstoreCreatorRepository) Get(ctx context.Context, id string) (*domain.Creator, error) {
	doc, err := r.coll.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrCreatorNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	var c domain.Creator
	if err := docstore.Decode(doc, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *DocstoreCreatorRepository) FindBySlug(ctx context.Context, slug string) (*domain.Creator, error) {
	docs, err := r.coll.FindByField(ctx, "slug", slug)
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	var c domain.Creator
	if err := docstore.Decode(docs[0], &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *DocstoreCreatorRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return r.coll.ExistsByField(ctx, "slug", slug)
}

func (r *DocstoreCreatorRepository) Create(ctx context.Context, creator *domain.Creator) (string, error) {
	doc, err := docstore.Encode(creator)
	if err != nil {
		return "", err
	}
	return r.coll.Create(ctx, doc)
}

func (r *DocstoreCreatorRepository) Replace(ctx context.Context, creator *domain.Creator) error {
	doc, err := docstore.Encode(creator)
	if err != nil {
		return err
	}
	delete(doc, docstore.IDField)
	err = r.coll.Update(ctx, creator.ID, doc)
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrCreatorNotFound, creator.ID)
	}
	return err
}

func (r *DocstoreCreatorRepository) Delete(ctx context.Context, id string) error {
	err := r.coll.Delete(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrCreatorNotFound, id)
	}
	return err
}
