package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/maxviazov/marketplace-items-service/internal/model"
	"github.com/maxviazov/marketplace-items-service/internal/repository"
)

const (
	defaultPageLimit  = 50
	maxPageLimit      = 200
	maxTitleLen       = 120
	maxDescriptionLen = 2000
	maxCategories     = 20
	maxImageURLs      = 10
)

var validate = validator.New()

func normalizePage(p repository.Page) repository.Page {
	limit := p.Limit
	offset := p.Offset
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.Page{Limit: limit, Offset: offset}
}

// normalizeCategories trims tags, drops empty ones and removes
// case-insensitive duplicates; the first spelling of a tag wins.
func normalizeCategories(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		key := strings.ToLower(c)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// normalizeNewItem trims free text and canonicalizes list fields, then
// collects every field error rather than stopping at the first.
func normalizeNewItem(in model.NewItem) (model.NewItem, []FieldError) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.OwnerID = strings.TrimSpace(in.OwnerID)
	in.Categories = normalizeCategories(in.Categories)

	images := make([]string, 0, len(in.ImageURLs))
	for _, u := range in.ImageURLs {
		images = append(images, strings.TrimSpace(u))
	}
	in.ImageURLs = images

	var ferrs []FieldError
	if in.Title == "" {
		ferrs = append(ferrs, FieldError{Field: "title", Message: "must not be empty"})
	} else if utf8.RuneCountInString(in.Title) > maxTitleLen {
		ferrs = append(ferrs, FieldError{Field: "title", Message: fmt.Sprintf("length must be <= %d", maxTitleLen)})
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionLen {
		ferrs = append(ferrs, FieldError{Field: "description", Message: fmt.Sprintf("length must be <= %d", maxDescriptionLen)})
	}
	if in.Latitude < -90 || in.Latitude > 90 {
		ferrs = append(ferrs, FieldError{Field: "latitude", Message: "must be between -90 and 90"})
	}
	if in.Longitude < -180 || in.Longitude > 180 {
		ferrs = append(ferrs, FieldError{Field: "longitude", Message: "must be between -180 and 180"})
	}
	if in.OwnerID == "" {
		ferrs = append(ferrs, FieldError{Field: "owner_id", Message: "must not be empty"})
	}
	if len(in.Categories) > maxCategories {
		ferrs = append(ferrs, FieldError{Field: "categories", Message: fmt.Sprintf("at most %d distinct categories", maxCategories)})
	}
	if len(in.ImageURLs) > maxImageURLs {
		ferrs = append(ferrs, FieldError{Field: "image_urls", Message: fmt.Sprintf("at most %d images", maxImageURLs)})
	}
	for i, u := range in.ImageURLs {
		if err := validate.Var(u, "required,http_url"); err != nil {
			ferrs = append(ferrs, FieldError{Field: fmt.Sprintf("image_urls[%d]", i), Message: "must be an absolute http(s) URL"})
		}
	}
	return in, ferrs
}
