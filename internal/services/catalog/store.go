package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence port the catalog service depends on. The
// backing store must enforce the (category_id, slug) and (code) unique
// constraints as the final arbiter under concurrent writers, reporting
// violations as ErrSlugTaken and ErrCodeTaken.
type Store interface {
	// Get returns a catalog item (with its category name joined in) or
	// ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (Catalog, error)
	// CategoryExists reports whether the owning category exists.
	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)
	// CodeExists reports whether another item (excluding excludeID; pass
	// uuid.Nil to exclude nothing) already uses the normalized code.
	// Codes are stored normalized, so this is an exact match.
	CodeExists(ctx context.Context, code string, excludeID uuid.UUID) (bool, error)
	// SlugExists reports whether another item in the category (excluding
	// excludeID) already uses slug.
	SlugExists(ctx context.Context, categoryID uuid.UUID, slug string, excludeID uuid.UUID) (bool, error)
	// List returns one page of catalog items matching the filter plus the
	// total match count. Order: category_id, name, id.
	List(ctx context.Context, filter Filter) ([]Catalog, int64, error)
	// Insert persists a new item. Returns ErrCodeTaken or ErrSlugTaken on
	// the matching unique index, ErrCategoryNotFound on a bad category
	// reference.
	Insert(ctx context.Context, item Catalog) error
	// Update persists changes to an existing item. Same error contract as
	// Insert, plus ErrNotFound when the row is gone.
	Update(ctx context.Context, item Catalog) error
	// Delete removes an item. Returns false when no row matched.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
