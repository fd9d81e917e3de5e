package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/core/apperror"
	"storefront/internal/core/docstore"
	"storefront/internal/features/content/adapters"
	"storefront/internal/features/content/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *ContentServiceImpl {
	store := docstore.NewMemoryStore()
	s := NewContentService(adapters.NewDocstorePageRepository(store), adapters.NewDocstoreCreatorRepository(store))
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

// failingPages fails every call.
type failingPages struct{}

func (failingPages) List(context.Context) ([]domain.PageContent, error) {
	return nil, errors.New("connection refused")
}

func (failingPages) Get(context.Context, domain.Page) (*domain.PageContent, error) {
	return nil, errors.New("connection refused")
}

func (failingPages) Save(context.Context, *domain.PageContent) error {
	return errors.New("connection refused")
}

func (failingPages) Delete(context.Context, domain.Page) error {
	return errors.New("connection refused")
}

func (failingPages) Subscribe(context.Context, func([]domain.PageContent)) (func(), error) {
	return nil, errors.New("change streams need a replica set")
}

func TestContentService_Pages(t *testing.T) {
	ctx := context.Background()

	t.Run("UnsavedPageIsEmpty", func(t *testing.T) {
		s := newTestService()
		c, err := s.GetPage(ctx, domain.PageAbout)
		require.NoError(t, err)
		assert.Equal(t, domain.PageAbout, c.Page)
		assert.Empty(t, c.Title)
		assert.Nil(t, c.UpdatedAt)
	})

	t.Run("SaveThenGet", func(t *testing.T) {
		s := newTestService()
		saved, err := s.SavePage(ctx, domain.PageHome, domain.PageContentInput{
			Title:          "Vista a criatividade",
			FeaturedBlocks: []domain.FeaturedBlock{{Title: "Coleção Verão", Href: "/colecoes/verao"}},
		})
		require.NoError(t, err)
		require.NotNil(t, saved.UpdatedAt)

		got, err := s.GetPage(ctx, domain.PageHome)
		require.NoError(t, err)
		assert.Equal(t, "Vista a criatividade", got.Title)
		require.Len(t, got.FeaturedBlocks, 1)
		assert.Equal(t, "/colecoes/verao", got.FeaturedBlocks[0].Href)
	})

	t.Run("ListCoversEveryPage", func(t *testing.T) {
		s := newTestService()
		_, err := s.SavePage(ctx, domain.PageAbout, domain.PageContentInput{Title: "Sobre nós"})
		require.NoError(t, err)

		pages, err := s.ListPages(ctx)
		require.NoError(t, err)
		require.Len(t, pages, len(domain.Pages))
		assert.Equal(t, domain.PageHome, pages[0].Page)
		assert.Empty(t, pages[0].Title)
		assert.Equal(t, "Sobre nós", pages[2].Title)
	})

	t.Run("InvalidContent", func(t *testing.T) {
		s := newTestService()
		_, err := s.SavePage(ctx, domain.PageHome, domain.PageContentInput{CtaHref: "/x"})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("DeleteUnsaved", func(t *testing.T) {
		s := newTestService()
		assert.ErrorIs(t, s.DeletePage(ctx, domain.PageHome), domain.ErrPageNotFound)
	})

	t.Run("StoreDown", func(t *testing.T) {
		s := NewContentService(failingPages{}, adapters.NewDocstoreCreatorRepository(docstore.NewMemoryStore()))

		_, err := s.GetPage(ctx, domain.PageHome)
		assert.ErrorIs(t, err, apperror.ErrStore)
		_, err = s.SubscribePages(ctx, func([]domain.PageContent) {})
		assert.ErrorIs(t, err, apperror.ErrStore)
	})
}

func TestContentService_Creators(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateDerivesSlug", func(t *testing.T) {
		s := newTestService()
		c, err := s.CreateCreator(ctx, domain.CreatorInput{Name: "Marina Lopes"})
		require.NoError(t, err)
		assert.Equal(t, "marina-lopes", c.Slug)

		got, err := s.GetCreatorBySlug(ctx, "marina-lopes")
		require.NoError(t, err)
		assert.Equal(t, c.ID, got.ID)
	})

	t.Run("SlugTaken", func(t *testing.T) {
		s := newTestService()
		_, err := s.CreateCreator(ctx, domain.CreatorInput{Name: "Marina Lopes"})
		require.NoError(t, err)

		_, err = s.CreateCreator(ctx, domain.CreatorInput{Name: "Marina  Lopes"})
		assert.ErrorIs(t, err, domain.ErrCreatorSlugTaken)
		assert.Equal(t, 409, apperror.HTTPStatus(err))
	})

	t.Run("UpdateKeepsOwnSlug", func(t *testing.T) {
		s := newTestService()
		c, err := s.CreateCreator(ctx, domain.CreatorInput{Name: "Marina Lopes"})
		require.NoError(t, err)

		updated, err := s.UpdateCreator(ctx, c.ID, domain.CreatorInput{Name: "Marina Lopes", Slug: "marina-lopes", Bio: "Ilustradora"})
		require.NoError(t, err)
		assert.Equal(t, "Ilustradora", updated.Bio)
	})

	t.Run("UpdateToTakenSlug", func(t *testing.T) {
		s := newTestService()
		_, err := s.CreateCreator(ctx, domain.CreatorInput{Name: "Marina"})
		require.NoError(t, err)
		c, err := s.CreateCreator(ctx, domain.CreatorInput{Name: "Joana"})
		require.NoError(t, err)

		_, err = s.UpdateCreator(ctx, c.ID, domain.CreatorInput{Name: "Joana", Slug: "marina"})
		assert.ErrorIs(t, err, domain.ErrCreatorSlugTaken)
	})

	t.Run("ListSortedByName", func(t *testing.T) {
		s := newTestService()
		_, err := s.CreateCreator(ctx, domain.CreatorInput{Name: "Marina"})
		require.NoError(t, err)
		_, err = s.CreateCreator(ctx, domain.CreatorInput{Name: "Joana"})
		require.NoError(t, err)

		creators, err := s.ListCreators(ctx)
		require.NoError(t, err)
		require.Len(t, creators, 2)
		assert.Equal(t, "Joana", creators[0].Name)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		s := newTestService()
		assert.ErrorIs(t, s.DeleteCreator(ctx, "missing"), domain.ErrCreatorNotFound)
		_, err := s.GetCreatorBySlug(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrCreatorNotFound)
	})
}
