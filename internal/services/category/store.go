package category

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence port the category service depends on. The
// backing store must enforce the (parent_id, slug) unique constraint —
// treating NULL parents as one scope — as the final arbiter under
// concurrent writers, and report a violation as ErrSlugTaken.
type Store interface {
	// Get returns a category or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (Category, error)
	// Exists reports whether a category with the given id exists.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	// SlugExists reports whether a sibling of parentID (nil = root scope)
	// other than excludeID already uses slug. Pass uuid.Nil to exclude
	// nothing.
	SlugExists(ctx context.Context, parentID *uuid.UUID, slug string, excludeID uuid.UUID) (bool, error)
	// HasChildren reports whether any category has id as its parent.
	HasChildren(ctx context.Context, id uuid.UUID) (bool, error)
	// HasCatalogs reports whether any catalog item belongs to id.
	HasCatalogs(ctx context.Context, id uuid.UUID) (bool, error)
	// List returns one page of categories matching the filter plus the
	// total match count. Order: parent_id, sort_order, name, id.
	List(ctx context.Context, filter Filter) ([]Category, int64, error)
	// Insert persists a new category. Returns ErrSlugTaken when the
	// (parent_id, slug) index rejects it, ErrParentNotFound when the
	// parent reference is invalid.
	Insert(ctx context.Context, cat Category) error
	// Update persists changes to an existing category. Same error
	// contract as Insert, plus ErrNotFound when the row is gone.
	Update(ctx context.Context, cat Category) error
	// Delete removes a category. Returns false when no row matched;
	// ErrHasChildren/ErrHasCatalogs when a foreign key blocks it.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
