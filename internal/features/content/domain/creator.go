package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"storefront/internal/core/apperror"
	"storefront/internal/core/slug"
)

const maxNameLength = 120

var (
	// ErrCreatorNotFound is returned when the creator does not exist.
	ErrCreatorNotFound = fmt.Errorf("creator %w", apperror.ErrNotFound)
	// ErrCreatorSlugTaken is returned when another creator already uses the slug.
	ErrCreatorSlugTaken = fmt.Errorf("creator slug %w", apperror.ErrConflict)
)

// Creator is an artist whose work the store sells. Profiles live at /criadores/{slug}.
type Creator struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Avatar   string `json:"avatar"`
	Subtitle string `json:"subtitle"`
	Bio      string `json:"bio"`
}

// CreatorInput is the editable part of a creator.
type CreatorInput struct {
	Name     string `json:"name" example:"Marina Lopes"`
	Slug     string `json:"slug" example:"marina-lopes"`
	Avatar   string `json:"avatar"`
	Subtitle string `json:"subtitle" example:"Ilustradora"`
	Bio      string `json:"bio"`
}

// Normalize trims and validates in. An empty slug is derived from the name.
func (in CreatorInput) Normalize() (CreatorInput, error) {
	out := CreatorInput{
		Name:     strings.TrimSpace(in.Name),
		Slug:     strings.ToLower(strings.TrimSpace(in.Slug)),
		Avatar:   strings.TrimSpace(in.Avatar),
		Subtitle: strings.TrimSpace(in.Subtitle),
		Bio:      strings.TrimSpace(in.Bio),
	}
	if out.Name == "" {
		return CreatorInput{}, apperror.Validation("creator name is required")
	}
	if utf8.RuneCountInString(out.Name) > maxNameLength {
		return CreatorInput{}, apperror.Validation("creator name must have at most %d characters", maxNameLength)
	}
	if out.Slug == "" {
		out.Slug = slug.Make(out.Name)
	}
	if !slug.Valid(out.Slug) {
		return CreatorInput{}, apperror.Validation("invalid slug %q: use lowercase letters, digits and dashes", out.Slug)
	}
	return out, nil
}
