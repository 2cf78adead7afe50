// Package catalog provides business logic for catalog items: CRUD with
// per-category slug generation, a globally unique business code, and the
// referential check that every item belongs to an existing category.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/forgecommerce/catalog/internal/slug"
)

var (
	// ErrNotFound is returned when the requested catalog item does not
	// exist.
	ErrNotFound = errors.New("catalog item not found")
	// ErrNameRequired is returned when a create or update carries no name.
	ErrNameRequired = errors.New("catalog item name is required")
	// ErrCodeRequired is returned when a create or update carries no code.
	ErrCodeRequired = errors.New("catalog item code is required")
	// ErrNegativePrice rejects prices below zero.
	ErrNegativePrice = errors.New("catalog item price cannot be negative")
	// ErrCategoryNotFound is returned when the owning category does not
	// exist.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCodeTaken is returned when another item already uses the code.
	// Codes are unique across all categories.
	ErrCodeTaken = errors.New("catalog item code already exists")
	// ErrSlugTaken is reported when a concurrent writer claimed the slug
	// between the uniqueness probe and the write.
	ErrSlugTaken = errors.New("catalog item slug already exists in this category")
)

// slugFallback replaces names that normalize to nothing.
const slugFallback = "item"

// Catalog is a sellable entry owned by exactly one category. Slug is
// unique within the owning category; Code is unique globally and stored
// trimmed and upper-cased.
type Catalog struct {
	ID           uuid.UUID
	Name         string
	Code         string
	Slug         string
	CategoryID   uuid.UUID
	CategoryName string // joined in by the store for reads
	Price        decimal.Decimal
	ImageURL     *string
	Description  *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// CreateParams holds the input for creating a new catalog item.
type CreateParams struct {
	Name        string
	Code        string
	CategoryID  uuid.UUID
	Price       decimal.Decimal
	ImageURL    *string
	Description *string
	IsActive    bool
}

// UpdateParams holds the input for updating an existing catalog item.
type UpdateParams struct {
	Name        string
	Code        string
	CategoryID  uuid.UUID
	Price       decimal.Decimal
	ImageURL    *string
	Description *string
	IsActive    bool
}

// Filter narrows and pages List results. Query matches name, slug, or
// code, case-insensitively.
type Filter struct {
	Page       int
	Size       int
	Query      string
	CategoryID *uuid.UUID
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	IsActive   *bool
}

// Service provides catalog item CRUD with slug resolution and referential
// guards, mirroring the category service. The store's unique indexes are
// the authority of last resort under concurrent writers.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a catalog service backed by the given store.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// List returns one page of catalog items plus the total match count.
// Non-positive page or size fall back to 1 and 10.
func (s *Service) List(ctx context.Context, filter Filter) ([]Catalog, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Size <= 0 {
		filter.Size = 10
	}

	items, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("listing catalog items: %w", err)
	}
	return items, total, nil
}

// Get returns a single catalog item by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Catalog, error) {
	return s.store.Get(ctx, id)
}

// Create validates the category reference and code, resolves a free slug
// within the category's scope, and persists the item.
func (s *Service) Create(ctx context.Context, params CreateParams) (Catalog, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return Catalog{}, ErrNameRequired
	}
	code := NormalizeCode(params.Code)
	if code == "" {
		return Catalog{}, ErrCodeRequired
	}
	if params.Price.IsNegative() {
		return Catalog{}, ErrNegativePrice
	}

	ok, err := s.store.CategoryExists(ctx, params.CategoryID)
	if err != nil {
		return Catalog{}, fmt.Errorf("checking category %s: %w", params.CategoryID, err)
	}
	if !ok {
		return Catalog{}, ErrCategoryNotFound
	}

	taken, err := s.store.CodeExists(ctx, code, uuid.Nil)
	if err != nil {
		return Catalog{}, fmt.Errorf("checking code %q: %w", code, err)
	}
	if taken {
		return Catalog{}, ErrCodeTaken
	}

	slugValue, err := slug.Resolve(ctx, name, slugFallback, s.slugLookup(params.CategoryID, uuid.Nil))
	if err != nil {
		return Catalog{}, err
	}

	item := Catalog{
		ID:          uuid.New(),
		Name:        name,
		Code:        code,
		Slug:        slugValue,
		CategoryID:  params.CategoryID,
		Price:       params.Price,
		ImageURL:    normalizeImageURL(params.ImageURL),
		Description: params.Description,
		IsActive:    params.IsActive,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.Insert(ctx, item); err != nil {
		return Catalog{}, err
	}

	s.logger.Info("catalog item created",
		slog.String("id", item.ID.String()),
		slog.String("code", item.Code),
		slog.String("slug", item.Slug),
	)

	return item, nil
}

// Update applies an edit to an existing catalog item. The slug is
// re-resolved only when the new name normalizes to something different
// from the stored slug.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (Catalog, error) {
	item, err := s.store.Get(ctx, id)
	if err != nil {
		return Catalog{}, err
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return Catalog{}, ErrNameRequired
	}
	code := NormalizeCode(params.Code)
	if code == "" {
		return Catalog{}, ErrCodeRequired
	}
	if params.Price.IsNegative() {
		return Catalog{}, ErrNegativePrice
	}

	ok, err := s.store.CategoryExists(ctx, params.CategoryID)
	if err != nil {
		return Catalog{}, fmt.Errorf("checking category %s: %w", params.CategoryID, err)
	}
	if !ok {
		return Catalog{}, ErrCategoryNotFound
	}

	taken, err := s.store.CodeExists(ctx, code, id)
	if err != nil {
		return Catalog{}, fmt.Errorf("checking code %q: %w", code, err)
	}
	if taken {
		return Catalog{}, ErrCodeTaken
	}

	item.Name = name
	item.Code = code
	item.CategoryID = params.CategoryID
	item.Price = params.Price
	item.ImageURL = normalizeImageURL(params.ImageURL)
	item.Description = params.Description
	item.IsActive = params.IsActive
	now := time.Now().UTC()
	item.UpdatedAt = &now

	if next := slug.Make(name, slugFallback); !strings.EqualFold(next, item.Slug) {
		resolved, err := slug.Resolve(ctx, name, slugFallback, s.slugLookup(params.CategoryID, id))
		if err != nil {
			return Catalog{}, err
		}
		item.Slug = resolved
	}

	if err := s.store.Update(ctx, item); err != nil {
		return Catalog{}, err
	}

	s.logger.Info("catalog item updated",
		slog.String("id", item.ID.String()),
		slog.String("code", item.Code),
		slog.String("slug", item.Slug),
	)

	return item, nil
}

// Delete removes a catalog item. Items have no dependents, so deletion is
// unconditional and succeeds silently when the id is already gone.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if deleted {
		s.logger.Info("catalog item deleted", slog.String("id", id.String()))
	}
	return nil
}

// NormalizeCode trims and upper-cases a business code. Uniqueness is
// checked against the normalized form, so "abc" and "ABC" collide.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// normalizeImageURL trims the URL and maps blank values to nil.
func normalizeImageURL(u *string) *string {
	if u == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*u)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// slugLookup binds the scoped existence probe for the resolver.
func (s *Service) slugLookup(categoryID uuid.UUID, excludeID uuid.UUID) slug.LookupFunc {
	return func(ctx context.Context, candidate string) (bool, error) {
		return s.store.SlugExists(ctx, categoryID, candidate, excludeID)
	}
}
