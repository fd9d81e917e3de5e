package domain

import (
	"strings"
	"testing"

	"storefront/internal/core/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProduct() ProductInput {
	return ProductInput{
		Title:  "  Camiseta Oversized ",
		Price:  decimal.RequireFromString("89.90"),
		Cover:  "https://cdn.example.com/p1.jpg",
		Sizes:  []string{"gg", "P", "M", "P"},
		Colors: []string{"Preto", " Branco", "Preto", ""},
		ColorImages: map[string]string{
			"Preto":  "https://cdn.example.com/p1-preto.jpg",
			"Branco": " ",
		},
	}
}

func TestProductInput_Normalize(t *testing.T) {
	got, err := validProduct().Normalize()
	require.NoError(t, err)

	assert.Equal(t, "Camiseta Oversized", got.Title)
	assert.Equal(t, []string{"P", "M", "GG"}, got.Sizes)
	assert.Equal(t, []string{"Preto", "Branco"}, got.Colors)
	assert.Equal(t, map[string]string{"Preto": "https://cdn.example.com/p1-preto.jpg"}, got.ColorImages)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("89.90")))
}

func TestProductInput_Normalize_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *ProductInput)
	}{
		{"MissingTitle", func(in *ProductInput) { in.Title = "   " }},
		{"LongTitle", func(in *ProductInput) { in.Title = strings.Repeat("a", maxTitleLength+1) }},
		{"ZeroPrice", func(in *ProductInput) { in.Price = decimal.Zero }},
		{"NegativePrice", func(in *ProductInput) { in.Price = decimal.NewFromInt(-5) }},
		{"NoSizes", func(in *ProductInput) { in.Sizes = nil }},
		{"UnknownSize", func(in *ProductInput) { in.Sizes = []string{"XL"} }},
		{"NoColors", func(in *ProductInput) { in.Colors = []string{" "} }},
		{"ImageForMissingColor", func(in *ProductInput) { in.ColorImages = map[string]string{"Azul": "x"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validProduct()
			tt.mutate(&in)
			_, err := in.Normalize()
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestCollectionInput_Normalize(t *testing.T) {
	t.Run("DerivesSlug", func(t *testing.T) {
		got, err := CollectionInput{Title: "Coleção Verão 2025"}.Normalize()
		require.NoError(t, err)
		assert.Equal(t, "colecao-verao-2025", got.Slug)
		assert.Nil(t, got.ProductIDs)
	})

	t.Run("KeepsGivenSlug", func(t *testing.T) {
		got, err := CollectionInput{Title: "Verão", Slug: " Verao ", ProductIDs: []string{"p1", " p2", "p1", ""}}.Normalize()
		require.NoError(t, err)
		assert.Equal(t, "verao", got.Slug)
		assert.Equal(t, []string{"p1", "p2"}, got.ProductIDs)
	})

	t.Run("InvalidSlug", func(t *testing.T) {
		_, err := CollectionInput{Title: "Verão", Slug: "verão 2025"}.Normalize()
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("MissingTitle", func(t *testing.T) {
		_, err := CollectionInput{Slug: "verao"}.Normalize()
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}

func TestSlugTakenIsConflict(t *testing.T) {
	assert.ErrorIs(t, ErrSlugTaken, apperror.ErrConflict)
	assert.Equal(t, 409, apperror.HTTPStatus(ErrSlugTaken))
}
