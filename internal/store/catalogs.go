package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forgecommerce/catalog/internal/services/catalog"
)

var _ catalog.Store = (*CatalogStore)(nil)

// CatalogStore persists catalog items in the catalogs table.
type CatalogStore struct {
	pool *pgxpool.Pool
}

// NewCatalogStore creates a catalog store over the given pool.
func NewCatalogStore(pool *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

// Reads join the owning category so callers get its name for free.
const catalogSelect = `
	SELECT c.id, c.name, c.code, c.slug, c.category_id, cat.name,
	       c.price, c.image_url, c.description, c.is_active, c.created_at, c.updated_at
	FROM catalogs c
	JOIN categories cat ON cat.id = c.category_id`

func scanCatalog(row pgx.Row) (catalog.Catalog, error) {
	var c catalog.Catalog
	err := row.Scan(&c.ID, &c.Name, &c.Code, &c.Slug, &c.CategoryID, &c.CategoryName,
		&c.Price, &c.ImageURL, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Get returns a catalog item by id, with its category name joined in.
func (s *CatalogStore) Get(ctx context.Context, id uuid.UUID) (catalog.Catalog, error) {
	row := s.pool.QueryRow(ctx, catalogSelect+" WHERE c.id = $1", id)
	c, err := scanCatalog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Catalog{}, catalog.ErrNotFound
		}
		return catalog.Catalog{}, fmt.Errorf("getting catalog item %s: %w", id, err)
	}
	return c, nil
}

// CategoryExists reports whether the owning category exists.
func (s *CatalogStore) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking category %s: %w", id, err)
	}
	return exists, nil
}

// CodeExists reports whether another item already uses the code. Codes
// are stored normalized, so the comparison is exact.
func (s *CatalogStore) CodeExists(ctx context.Context, code string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM catalogs WHERE code = $1 AND id <> $2)",
		code, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking catalog code %q: %w", code, err)
	}
	return exists, nil
}

// SlugExists reports whether another item in the category already uses
// slug.
func (s *CatalogStore) SlugExists(ctx context.Context, categoryID uuid.UUID, slug string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM catalogs
			WHERE category_id = $1 AND slug = $2 AND id <> $3
		)`, categoryID, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking catalog slug %q: %w", slug, err)
	}
	return exists, nil
}

// List returns one page of catalog items matching the filter plus the
// total match count. Same ordered-optional-predicates composition as the
// category store, with a fixed sort for stable pagination.
func (s *CatalogStore) List(ctx context.Context, f catalog.Filter) ([]catalog.Catalog, int64, error) {
	var (
		where []string
		args  []any
	)
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		where = append(where, fmt.Sprintf("c.category_id = $%d", len(args)))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(c.name ILIKE $%d OR c.slug ILIKE $%d OR c.code ILIKE $%d)", n, n, n))
	}
	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		where = append(where, fmt.Sprintf("c.price >= $%d", len(args)))
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		where = append(where, fmt.Sprintf("c.price <= $%d", len(args)))
	}
	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		where = append(where, fmt.Sprintf("c.is_active = $%d", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := s.pool.QueryRow(ctx,
		"SELECT count(*) FROM catalogs c"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting catalog items: %w", err)
	}

	args = append(args, f.Size, (f.Page-1)*f.Size)
	query := catalogSelect + clause +
		fmt.Sprintf(" ORDER BY c.category_id, c.name, c.id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing catalog items: %w", err)
	}
	defer rows.Close()

	var items []catalog.Catalog
	for rows.Next() {
		c, err := scanCatalog(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning catalog item: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("listing catalog items: %w", err)
	}
	return items, total, nil
}

// Insert persists a new catalog item.
func (s *CatalogStore) Insert(ctx context.Context, c catalog.Catalog) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO catalogs (id, name, code, slug, category_id, price, image_url, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.Name, c.Code, c.Slug, c.CategoryID, c.Price, c.ImageURL, c.Description, c.IsActive, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if mapped := mapCatalogConstraint(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("inserting catalog item %q: %w", c.Code, err)
	}
	return nil
}

// Update persists changes to an existing catalog item.
func (s *CatalogStore) Update(ctx context.Context, c catalog.Catalog) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE catalogs
		SET name = $2, code = $3, slug = $4, category_id = $5, price = $6,
		    image_url = $7, description = $8, is_active = $9, updated_at = $10
		WHERE id = $1`,
		c.ID, c.Name, c.Code, c.Slug, c.CategoryID, c.Price, c.ImageURL, c.Description, c.IsActive, c.UpdatedAt)
	if err != nil {
		if mapped := mapCatalogConstraint(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("updating catalog item %s: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Delete removes a catalog item, reporting whether a row was deleted.
func (s *CatalogStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM catalogs WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("deleting catalog item %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// mapCatalogConstraint translates constraint violations on writes into
// the service sentinels, or returns nil for unrelated errors.
func mapCatalogConstraint(err error) error {
	switch constraintName(err) {
	case catalogCodeConstraint:
		return catalog.ErrCodeTaken
	case catalogSlugConstraint:
		return catalog.ErrSlugTaken
	case catalogCategoryFK:
		return catalog.ErrCategoryNotFound
	}
	return nil
}
