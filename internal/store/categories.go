package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forgecommerce/catalog/internal/services/category"
)

var _ category.Store = (*CategoryStore)(nil)

// CategoryStore persists categories in the categories table.
type CategoryStore struct {
	pool *pgxpool.Pool
}

// NewCategoryStore creates a category store over the given pool.
func NewCategoryStore(pool *pgxpool.Pool) *CategoryStore {
	return &CategoryStore{pool: pool}
}

const categoryColumns = "id, name, slug, parent_id, sort_order, is_active, created_at, updated_at"

func scanCategory(row pgx.Row) (category.Category, error) {
	var c category.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Get returns a category by id.
func (s *CategoryStore) Get(ctx context.Context, id uuid.UUID) (category.Category, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = $1", id)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return category.Category{}, category.ErrNotFound
		}
		return category.Category{}, fmt.Errorf("getting category %s: %w", id, err)
	}
	return c, nil
}

// Exists reports whether a category with the given id exists.
func (s *CategoryStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking category %s: %w", id, err)
	}
	return exists, nil
}

// SlugExists reports whether a sibling under parentID already uses slug.
// IS NOT DISTINCT FROM makes the NULL parent behave as one scope, mirroring
// the NULLS NOT DISTINCT unique index.
func (s *CategoryStore) SlugExists(ctx context.Context, parentID *uuid.UUID, slug string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM categories
			WHERE parent_id IS NOT DISTINCT FROM $1 AND slug = $2 AND id <> $3
		)`, parentID, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking category slug %q: %w", slug, err)
	}
	return exists, nil
}

// HasChildren reports whether any category has id as its parent.
func (s *CategoryStore) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM categories WHERE parent_id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking children of category %s: %w", id, err)
	}
	return exists, nil
}

// HasCatalogs reports whether any catalog item belongs to id.
func (s *CategoryStore) HasCatalogs(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM catalogs WHERE category_id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking catalog usage of category %s: %w", id, err)
	}
	return exists, nil
}

// List returns one page of categories matching the filter plus the total
// match count. Filters are an ordered set of optional predicates ANDed
// together; the sort order is fixed so pagination stays stable.
func (s *CategoryStore) List(ctx context.Context, f category.Filter) ([]category.Category, int64, error) {
	var (
		where []string
		args  []any
	)
	if f.ParentID != nil {
		args = append(args, *f.ParentID)
		where = append(where, fmt.Sprintf("parent_id = $%d", len(args)))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR slug ILIKE $%d)", n, n))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM categories"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting categories: %w", err)
	}

	args = append(args, f.Size, (f.Page-1)*f.Size)
	query := "SELECT " + categoryColumns + " FROM categories" + clause +
		fmt.Sprintf(" ORDER BY parent_id NULLS FIRST, sort_order, name, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var items []category.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning category: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("listing categories: %w", err)
	}
	return items, total, nil
}

// Insert persists a new category.
func (s *CategoryStore) Insert(ctx context.Context, c category.Category) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO categories (id, name, slug, parent_id, sort_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Name, c.Slug, c.ParentID, c.SortOrder, c.IsActive, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if mapped := mapCategoryConstraint(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("inserting category %q: %w", c.Name, err)
	}
	return nil
}

// Update persists changes to an existing category.
func (s *CategoryStore) Update(ctx context.Context, c category.Category) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE categories
		SET name = $2, slug = $3, parent_id = $4, sort_order = $5, is_active = $6, updated_at = $7
		WHERE id = $1`,
		c.ID, c.Name, c.Slug, c.ParentID, c.SortOrder, c.IsActive, c.UpdatedAt)
	if err != nil {
		if mapped := mapCategoryConstraint(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("updating category %s: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return category.ErrNotFound
	}
	return nil
}

// Delete removes a category, reporting whether a row was deleted. The
// RESTRICT foreign keys block deletion of a category that is still
// referenced, in case the service's pre-checks raced a concurrent insert.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		switch constraintName(err) {
		case categoryParentConstraint:
			return false, category.ErrHasChildren
		case catalogCategoryFK:
			return false, category.ErrHasCatalogs
		}
		return false, fmt.Errorf("deleting category %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// mapCategoryConstraint translates constraint violations on writes into
// the service sentinels, or returns nil for unrelated errors.
func mapCategoryConstraint(err error) error {
	switch constraintName(err) {
	case categorySlugConstraint:
		return category.ErrSlugTaken
	case categoryParentConstraint:
		return category.ErrParentNotFound
	}
	return nil
}
