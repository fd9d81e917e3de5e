package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"storefront/internal/core/apperror"
	"storefront/internal/core/slug"
)

// Collection groups products under a public page addressed by Slug.
type Collection struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Cover       string    `json:"cover"`
	ProductIDs  []string  `json:"productIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CollectionInput is the editable part of a collection. A nil ProductIDs on
// update keeps the collection's current products.
type CollectionInput struct {
	Title       string   `json:"title" example:"Coleção Verão"`
	Slug        string   `json:"slug" example:"colecao-verao"`
	Description string   `json:"description"`
	Cover       string   `json:"cover"`
	ProductIDs  []string `json:"productIds"`
}

// Normalize trims and validates in. An empty slug is derived from the title.
func (in CollectionInput) Normalize() (CollectionInput, error) {
	out := CollectionInput{
		Title:       strings.TrimSpace(in.Title),
		Slug:        strings.ToLower(strings.TrimSpace(in.Slug)),
		Description: strings.TrimSpace(in.Description),
		Cover:       strings.TrimSpace(in.Cover),
	}

	if out.Title == "" {
		return CollectionInput{}, apperror.Validation("collection title is required")
	}
	if utf8.RuneCountInString(out.Title) > maxTitleLength {
		return CollectionInput{}, apperror.Validation("collection title must have at most %d characters", maxTitleLength)
	}
	if out.Slug == "" {
		out.Slug = slug.Make(out.Title)
	}
	if !slug.Valid(out.Slug) {
		return CollectionInput{}, apperror.Validation("invalid slug %q: use lowercase letters, digits and dashes", out.Slug)
	}
	if in.ProductIDs != nil {
		out.ProductIDs = UniqueIDs(in.ProductIDs)
	}
	return out, nil
}

// UniqueIDs trims ids and drops blanks and repeats, keeping the first occurrence.
func UniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
