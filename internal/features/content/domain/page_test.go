package domain

import (
	"testing"
	"time"

	"storefront/internal/core/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePage(t *testing.T) {
	p, err := ParsePage(" Home ")
	require.NoError(t, err)
	assert.Equal(t, PageHome, p)

	_, err = ParsePage("contato")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestPageContentInput_Content(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Trims", func(t *testing.T) {
		in := PageContentInput{
			Title:         "  Vista a criatividade ",
			CtaLabel:      "Ver",
			CtaHref:       "/colecoes/verao",
			CarouselItems: []CarouselItem{{Image: " https://cdn.example.com/1.jpg ", Href: "/p/1"}},
		}
		c, err := in.Content(PageHome, now)
		require.NoError(t, err)
		assert.Equal(t, PageHome, c.Page)
		assert.Equal(t, "Vista a criatividade", c.Title)
		assert.Equal(t, "https://cdn.example.com/1.jpg", c.CarouselItems[0].Image)
		assert.NotNil(t, c.FeaturedBlocks)
		require.NotNil(t, c.UpdatedAt)
		assert.True(t, now.Equal(*c.UpdatedAt))
	})

	tests := []struct {
		name string
		in   PageContentInput
	}{
		{"CtaWithoutHref", PageContentInput{CtaLabel: "Ver"}},
		{"CarouselWithoutImage", PageContentInput{CarouselItems: []CarouselItem{{Href: "/p/1"}}}},
		{"BlockWithoutTitle", PageContentInput{FeaturedBlocks: []FeaturedBlock{{Description: "x"}}}},
		{"CreatorWithoutName", PageContentInput{FeaturedCreators: []FeaturedCreator{{Role: "Ilustradora"}}}},
		{"TooManySlides", PageContentInput{CarouselItems: make([]CarouselItem, maxListLength+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.Content(PageHome, now)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestCreatorInput_Normalize(t *testing.T) {
	c, err := CreatorInput{Name: " Marina Lopes "}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "marina-lopes", c.Slug)

	c, err = CreatorInput{Name: "Marina", Slug: "Marina-Ilustra"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "marina-ilustra", c.Slug)

	_, err = CreatorInput{Name: "Marina", Slug: "marina lopes"}.Normalize()
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = CreatorInput{}.Normalize()
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
