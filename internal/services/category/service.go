// Package category provides business logic for the hierarchical category
// tree: CRUD with scoped slug generation and the referential checks that
// keep the taxonomy consistent (no self-parenting, no deleting a category
// that still has children or catalog items).
package category

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forgecommerce/catalog/internal/slug"
)

var (
	// ErrNotFound is returned when the requested category does not exist.
	ErrNotFound = errors.New("category not found")
	// ErrNameRequired is returned when a create or update carries no name.
	ErrNameRequired = errors.New("category name is required")
	// ErrParentNotFound is returned when the referenced parent category
	// does not exist.
	ErrParentNotFound = errors.New("parent category not found")
	// ErrSelfParent is returned when an update points a category's parent
	// at itself.
	ErrSelfParent = errors.New("category cannot be its own parent")
	// ErrHasChildren blocks deletion while child categories exist.
	ErrHasChildren = errors.New("category still has child categories")
	// ErrHasCatalogs blocks deletion while catalog items reference the
	// category.
	ErrHasCatalogs = errors.New("category is still referenced by catalog items")
	// ErrSlugTaken is reported when a concurrent writer claimed the slug
	// between the uniqueness probe and the write.
	ErrSlugTaken = errors.New("category slug already exists under this parent")
)

// slugFallback replaces names that normalize to nothing.
const slugFallback = "category"

// Category is a node in the taxonomy tree. Slug is unique among the
// siblings sharing the same parent; root categories form one scope.
type Category struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	ParentID  *uuid.UUID // nil = top-level category
	SortOrder int32
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// CreateParams holds the input for creating a new category.
type CreateParams struct {
	Name      string
	ParentID  *uuid.UUID
	SortOrder int32
	IsActive  bool
}

// UpdateParams holds the input for updating an existing category.
type UpdateParams struct {
	Name      string
	ParentID  *uuid.UUID
	SortOrder int32
	IsActive  bool
}

// Filter narrows and pages List results. Query matches name or slug,
// case-insensitively.
type Filter struct {
	Page     int
	Size     int
	Query    string
	ParentID *uuid.UUID
}

// Service provides category CRUD with slug resolution and referential
// guards. It holds no state and does no locking of its own: the store's
// unique index is the authority of last resort under concurrent writers.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a category service backed by the given store.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// List returns one page of categories plus the total match count.
// Non-positive page or size fall back to 1 and 10.
func (s *Service) List(ctx context.Context, filter Filter) ([]Category, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Size <= 0 {
		filter.Size = 10
	}

	items, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("listing categories: %w", err)
	}
	return items, total, nil
}

// Get returns a single category by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Category, error) {
	return s.store.Get(ctx, id)
}

// Create validates the parent reference, resolves a free slug within the
// parent's scope, and persists the category.
func (s *Service) Create(ctx context.Context, params CreateParams) (Category, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return Category{}, ErrNameRequired
	}

	if params.ParentID != nil {
		ok, err := s.store.Exists(ctx, *params.ParentID)
		if err != nil {
			return Category{}, fmt.Errorf("checking parent %s: %w", *params.ParentID, err)
		}
		if !ok {
			return Category{}, ErrParentNotFound
		}
	}

	slugValue, err := slug.Resolve(ctx, name, slugFallback, s.slugLookup(params.ParentID, uuid.Nil))
	if err != nil {
		return Category{}, err
	}

	cat := Category{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slugValue,
		ParentID:  params.ParentID,
		SortOrder: params.SortOrder,
		IsActive:  params.IsActive,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.Insert(ctx, cat); err != nil {
		return Category{}, err
	}

	s.logger.Info("category created",
		slog.String("id", cat.ID.String()),
		slog.String("name", cat.Name),
		slog.String("slug", cat.Slug),
	)

	return cat, nil
}

// Update applies an edit to an existing category. The slug is re-resolved
// only when the new name normalizes to something different from the
// stored slug; renaming to an equivalent spelling keeps the slug stable.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (Category, error) {
	cat, err := s.store.Get(ctx, id)
	if err != nil {
		return Category{}, err
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return Category{}, ErrNameRequired
	}

	if params.ParentID != nil {
		if *params.ParentID == id {
			return Category{}, ErrSelfParent
		}
		ok, err := s.store.Exists(ctx, *params.ParentID)
		if err != nil {
			return Category{}, fmt.Errorf("checking parent %s: %w", *params.ParentID, err)
		}
		if !ok {
			return Category{}, ErrParentNotFound
		}
	}

	cat.Name = name
	cat.ParentID = params.ParentID
	cat.SortOrder = params.SortOrder
	cat.IsActive = params.IsActive
	now := time.Now().UTC()
	cat.UpdatedAt = &now

	if next := slug.Make(name, slugFallback); !strings.EqualFold(next, cat.Slug) {
		resolved, err := slug.Resolve(ctx, name, slugFallback, s.slugLookup(params.ParentID, id))
		if err != nil {
			return Category{}, err
		}
		cat.Slug = resolved
	}

	if err := s.store.Update(ctx, cat); err != nil {
		return Category{}, err
	}

	s.logger.Info("category updated",
		slog.String("id", cat.ID.String()),
		slog.String("name", cat.Name),
		slog.String("slug", cat.Slug),
	)

	return cat, nil
}

// Delete removes a category. It is refused while child categories or
// catalog items still reference it, and succeeds silently when the id is
// already gone.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	hasChildren, err := s.store.HasChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("checking children of category %s: %w", id, err)
	}
	if hasChildren {
		return ErrHasChildren
	}

	inUse, err := s.store.HasCatalogs(ctx, id)
	if err != nil {
		return fmt.Errorf("checking catalog usage of category %s: %w", id, err)
	}
	if inUse {
		return ErrHasCatalogs
	}

	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if deleted {
		s.logger.Info("category deleted", slog.String("id", id.String()))
	}
	return nil
}

// slugLookup binds the scoped existence probe for the resolver.
func (s *Service) slugLookup(parentID *uuid.UUID, excludeID uuid.UUID) slug.LookupFunc {
	return func(ctx context.Context, candidate string) (bool, error) {
		return s.store.SlugExists(ctx, parentID, candidate, excludeID)
	}
}
