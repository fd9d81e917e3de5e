package domain

import (
	"fmt"
	"strings"
	"time"

	"storefront/internal/core/apperror"
)

// Page names an editable page of the storefront.
type Page string

const (
	PageHome     Page = "home"
	PageCreators Page = "criadores"
	PageAbout    Page = "sobre"
)

const maxListLength = 20

// Pages lists every editable page.
var Pages = []Page{PageHome, PageCreators, PageAbout}

// ErrPageNotFound is returned when deleting content that was never saved.
var ErrPageNotFound = fmt.Errorf("page content %w", apperror.ErrNotFound)

// ParsePage validates a page name taken from a URL.
func ParsePage(raw string) (Page, error) {
	p := Page(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Pages {
		if p == known {
			return p, nil
		}
	}
	return "", apperror.Validation("unknown page %q", raw)
}

// CarouselItem is one slide of the home carousel.
type CarouselItem struct {
	Image string `json:"image"`
	Href  string `json:"href"`
}

// FeaturedBlock is a call-out card linking elsewhere in the store.
type FeaturedBlock struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Href        string `json:"href"`
	Image       string `json:"image"`
}

// FeaturedCreator is a creator card shown on a page.
type FeaturedCreator struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Image string `json:"image"`
	Href  string `json:"href"`
}

// PageContent is the editable copy of one page. It is stored under its Page.
type PageContent struct {
	Page             Page              `json:"page"`
	Title            string            `json:"title"`
	Subtitle         string            `json:"subtitle"`
	Body             string            `json:"body"`
	HeroImage        string            `json:"heroImage"`
	CtaLabel         string            `json:"ctaLabel"`
	CtaHref          string            `json:"ctaHref"`
	CarouselItems    []CarouselItem    `json:"carouselItems"`
	FeaturedBlocks   []FeaturedBlock   `json:"featuredBlocks"`
	FeaturedCreators []FeaturedCreator `json:"featuredCreators"`
	UpdatedAt        *time.Time        `json:"updatedAt,omitempty"`
}

// Empty returns the content of a page that was never saved.
func Empty(page Page) *PageContent {
	return &PageContent{
		Page:             page,
		CarouselItems:    []CarouselItem{},
		FeaturedBlocks:   []FeaturedBlock{},
		FeaturedCreators: []FeaturedCreator{},
	}
}

// PageContentInput is the body of a page save.
type PageContentInput struct {
	Title            string            `json:"title" example:"Vista a criatividade"`
	Subtitle         string            `json:"subtitle"`
	Body             string            `json:"body"`
	HeroImage        string            `json:"heroImage"`
	CtaLabel         string            `json:"ctaLabel" example:"Ver coleção"`
	CtaHref          string            `json:"ctaHref" example:"/colecoes/verao"`
	CarouselItems    []CarouselItem    `json:"carouselItems"`
	FeaturedBlocks   []FeaturedBlock   `json:"featuredBlocks"`
	FeaturedCreators []FeaturedCreator `json:"featuredCreators"`
}

// Content trims in and turns it into the content of page. Entries missing
// their required field are rejected.
func (in PageContentInput) Content(page Page, now time.Time) (*PageContent, error) {
	out := Empty(page)
	out.Title = strings.TrimSpace(in.Title)
	out.Subtitle = strings.TrimSpace(in.Subtitle)
	out.Body = strings.TrimSpace(in.Body)
	out.HeroImage = strings.TrimSpace(in.HeroImage)
	out.CtaLabel = strings.TrimSpace(in.CtaLabel)
	out.CtaHref = strings.TrimSpace(in.CtaHref)
	out.UpdatedAt = &now

	if (out.CtaLabel == "") != (out.CtaHref == "") {
		return nil, apperror.Validation("ctaLabel and ctaHref must be set together")
	}
	if len(in.CarouselItems) > maxListLength || len(in.FeaturedBlocks) > maxListLength || len(in.FeaturedCreators) > maxListLength {
		return nil, apperror.Validation("lists hold at most %d entries", maxListLength)
	}

	for i, item := range in.CarouselItems {
		item = CarouselItem{Image: strings.TrimSpace(item.Image), Href: strings.TrimSpace(item.Href)}
		if item.Image == "" {
			return nil, apperror.Validation("carousel item %d needs an image", i+1)
		}
		out.CarouselItems = append(out.CarouselItems, item)
	}
	for i, block := range in.FeaturedBlocks {
		block = FeaturedBlock{
			Title:       strings.TrimSpace(block.Title),
			Description: strings.TrimSpace(block.Description),
			Href:        strings.TrimSpace(block.Href),
			Image:       strings.TrimSpace(block.Image),
		}
		if block.Title == "" {
			return nil, apperror.Validation("featured block %d needs a title", i+1)
		}
		out.FeaturedBlocks = append(out.FeaturedBlocks, block)
	}
	for i, creator := range in.FeaturedCreators {
		creator = FeaturedCreator{
			Name:  strings.TrimSpace(creator.Name),
			Role:  strings.TrimSpace(creator.Role),
			Image: strings.TrimSpace(creator.Image),
			Href:  strings.TrimSpace(creator.Href),
		}
		if creator.Name == "" {
			return nil, apperror.Validation("featured creator %d needs a name", i+1)
		}
		out.FeaturedCreators = append(out.FeaturedCreators, creator)
	}
	return out, nil
}
