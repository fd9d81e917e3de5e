package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"storefront/internal/core/apperror"

	"github.com/shopspring/decimal"
)

const maxTitleLength = 200

var (
	// ErrProductNotFound is returned when the product does not exist.
	ErrProductNotFound = fmt.Errorf("product %w", apperror.ErrNotFound)
	// ErrCollectionNotFound is returned when the collection does not exist.
	ErrCollectionNotFound = fmt.Errorf("collection %w", apperror.ErrNotFound)
	// ErrSlugTaken is returned when another collection already uses the slug.
	ErrSlugTaken = fmt.Errorf("collection slug %w", apperror.ErrConflict)
)

// AvailableSizes lists the sizes the store sells, smallest first.
var AvailableSizes = []string{"P", "M", "G", "GG", "G1"}

// Product is an item of the catalog.
type Product struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price" swaggertype:"string"`
	// Cover is the main image URL.
	Cover  string   `json:"cover"`
	Sizes  []string `json:"sizes"`
	Colors []string `json:"colors"`
	// ColorImages maps a color name to the image shown when it is selected.
	ColorImages map[string]string `json:"colorImages"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// ProductInput is the editable part of a product.
type ProductInput struct {
	Title       string            `json:"title" example:"Camiseta Oversized"`
	Price       decimal.Decimal   `json:"price" swaggertype:"string" example:"89.90"`
	Cover       string            `json:"cover" example:"https://cdn.example.com/p1.jpg"`
	Sizes       []string          `json:"sizes" example:"P,M,G"`
	Colors      []string          `json:"colors" example:"Preto,Branco"`
	ColorImages map[string]string `json:"colorImages"`
}

// Normalize trims and validates in. Sizes come back in AvailableSizes order
// and duplicates are dropped.
func (in ProductInput) Normalize() (ProductInput, error) {
	out := ProductInput{
		Title: strings.TrimSpace(in.Title),
		Price: in.Price,
		Cover: strings.TrimSpace(in.Cover),
	}

	if out.Title == "" {
		return ProductInput{}, apperror.Validation("product title is required")
	}
	if utf8.RuneCountInString(out.Title) > maxTitleLength {
		return ProductInput{}, apperror.Validation("product title must have at most %d characters", maxTitleLength)
	}
	if !out.Price.IsPositive() {
		return ProductInput{}, apperror.Validation("product price must be positive, got %s", out.Price)
	}

	chosen := make(map[string]bool, len(in.Sizes))
	for _, s := range in.Sizes {
		size := strings.ToUpper(strings.TrimSpace(s))
		if !isAvailableSize(size) {
			return ProductInput{}, apperror.Validation("unknown size %q", s)
		}
		chosen[size] = true
	}
	for _, size := range AvailableSizes {
		if chosen[size] {
			out.Sizes = append(out.Sizes, size)
		}
	}
	if len(out.Sizes) == 0 {
		return ProductInput{}, apperror.Validation("select at least one size")
	}

	seen := make(map[string]bool, len(in.Colors))
	for _, c := range in.Colors {
		color := strings.TrimSpace(c)
		if color == "" || seen[color] {
			continue
		}
		seen[color] = true
		out.Colors = append(out.Colors, color)
	}
	if len(out.Colors) == 0 {
		return ProductInput{}, apperror.Validation("select at least one color")
	}

	for color, image := range in.ColorImages {
		if !seen[color] {
			return ProductInput{}, apperror.Validation("image given for color %q which the product does not have", color)
		}
		if image = strings.TrimSpace(image); image != "" {
			if out.ColorImages == nil {
				out.ColorImages = make(map[string]string)
			}
			out.ColorImages[color] = image
		}
	}

	return out, nil
}

func isAvailableSize(size string) bool {
	for _, s := range AvailableSizes {
		if s == size {
			return true
		}
	}
	return false
}
