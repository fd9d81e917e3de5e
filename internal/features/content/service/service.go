package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"storefront/internal/core/apperror"
	"storefront/internal/core/logger"
	"storefront/internal/features/content/domain"
	"storefront/internal/features/content/ports"

	"go.uber.org/zap"
)

// ContentServiceImpl implements ports.ContentService.
type ContentServiceImpl struct {
	pages    ports.PageRepository
	creators ports.CreatorRepository
	now      func() time.Time
}

var _ ports.ContentService = (*ContentServiceImpl)(nil)

// NewContentService creates a new ContentServiceImpl.
func NewContentService(pages ports.PageRepository, creators ports.CreatorRepository) *ContentServiceImpl {
	return &ContentServiceImpl{
		pages:    pages,
		creators: creators,
		now:      time.Now,
	}
}

// ListPages returns one entry per domain.Pages, in that order.
func (s *ContentServiceImpl) ListPages(ctx context.Context) ([]domain.PageContent, error) {
	saved, err := s.pages.List(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list pages")
	}
	byPage := make(map[domain.Page]domain.PageContent, len(saved))
	for _, c := range saved {
		byPage[c.Page] = c
	}

	out := make([]domain.PageContent, 0, len(domain.Pages))
	for _, page := range domain.Pages {
		if c, ok := byPage[page]; ok {
			out = append(out, c)
		} else {
			out = append(out, *domain.Empty(page))
		}
	}
	return out, nil
}

func (s *ContentServiceImpl) GetPage(ctx context.Context, page domain.Page) (*domain.PageContent, error) {
	c, err := s.pages.Get(ctx, page)
	if err != nil {
		return nil, storeError(err, "failed to load page")
	}
	if c == nil {
		return domain.Empty(page), nil
	}
	return c, nil
}

func (s *ContentServiceImpl) SavePage(ctx context.Context, page domain.Page, in domain.PageContentInput) (*domain.PageContent, error) {
	c, err := in.Content(page, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.pages.Save(ctx, c); err != nil {
		return nil, storeError(err, "failed to save page")
	}

	logger.Get().Info("Page content saved", zap.String("page", string(page)))
	return c, nil
}

func (s *ContentServiceImpl) DeletePage(ctx context.Context, page domain.Page) error {
	if err := s.pages.Delete(ctx, page); err != nil {
		return storeError(err, "failed to delete page")
	}
	logger.Get().Info("Page content deleted", zap.String("page", string(page)))
	return nil
}

func (s *ContentServiceImpl) SubscribePages(ctx context.Context, fn func([]domain.PageContent)) (func(), error) {
	unsubscribe, err := s.pages.Subscribe(ctx, fn)
	if err != nil {
		return nil, storeError(err, "failed to subscribe to pages")
	}
	return unsubscribe, nil
}

// ListCreators returns creators sorted by name.
func (s *ContentServiceImpl) ListCreators(ctx context.Context) ([]domain.Creator, error) {
	creators, err := s.creators.List(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list creators")
	}
	sort.SliceStable(creators, func(i, j int) bool {
		return creators[i].Name < creators[j].Name
	})
	return creators, nil
}

func (s *ContentServiceImpl) GetCreatorBySlug(ctx context.Context, slug string) (*domain.Creator, error) {
	creator, err := s.creators.FindBySlug(ctx, slug)
	if err != nil {
		return nil, storeError(err, "failed to load creator")
	}
	if creator == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrCreatorNotFound, slug)
	}
	return creator, nil
}

func (s *ContentServiceImpl) CreateCreator(ctx context.Context, in domain.CreatorInput) (*domain.Creator, error) {
	in, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, in.Slug); err != nil {
		return nil, err
	}

	creator := &domain.Creator{
		Name:     in.Name,
		Slug:     in.Slug,
		Avatar:   in.Avatar,
		Subtitle: in.Subtitle,
		Bio:      in.Bio,
	}
	id, err := s.creators.Create(ctx, creator)
	if err != nil {
		return nil, storeError(err, "failed to create creator")
	}
	creator.ID = id

	logger.Get().Info("Creator created", zap.String("creator_id", id), zap.String("slug", creator.Slug))
	return creator, nil
}

// UpdateCreator checks slug uniqueness only when the slug changes.
func (s *ContentServiceImpl) UpdateCreator(ctx context.Context, id string, in domain.CreatorInput) (*domain.Creator, error) {
	in, err := in.Normalize()
	if err != nil {
		return nil, err
	}

	creator, err := s.creators.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to load creator")
	}
	if in.Slug != creator.Slug {
		if err := s.ensureSlugFree(ctx, in.Slug); err != nil {
			return nil, err
		}
	}

	creator.Name = in.Name
	creator.Slug = in.Slug
	creator.Avatar = in.Avatar
	creator.Subtitle = in.Subtitle
	creator.Bio = in.Bio
	if err := s.creators.Replace(ctx, creator); err != nil {
		return nil, storeError(err, "failed to update creator")
	}
	return creator, nil
}

func (s *ContentServiceImpl) DeleteCreator(ctx context.Context, id string) error {
	if err := s.creators.Delete(ctx, id); err != nil {
		return storeError(err, "failed to delete creator")
	}
	logger.Get().Info("Creator deleted", zap.String("creator_id", id))
	return nil
}

func (s *ContentServiceImpl) ensureSlugFree(ctx context.Context, slug string) error {
	taken, err := s.creators.SlugExists(ctx, slug)
	if err != nil {
		return storeError(err, "failed to check slug")
	}
	if taken {
		return fmt.Errorf("%w: %s", domain.ErrCreatorSlugTaken, slug)
	}
	return nil
}

func storeError(err error, msg string) error {
	if errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrValidation) || errors.Is(err, apperror.ErrConflict) {
		return err
	}
	return fmt.Errorf("%w: service: %s: %v", apperror.ErrStore, msg, err)
}
