package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FixtureCategory inserts a minimal active category and returns its ID.
// parentID may be nil for a top-level category.
func (tdb *TestDB) FixtureCategory(t *testing.T, name, slug string, parentID *uuid.UUID) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := tdb.Pool.Exec(context.Background(), `
		INSERT INTO categories (id, name, slug, parent_id, sort_order, is_active, created_at)
		VALUES ($1, $2, $3, $4, 0, true, $5)`,
		id, name, slug, parentID, time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("creating fixture category %q: %v", name, err)
	}
	return id
}

// FixtureCatalog inserts a minimal active catalog item and returns its ID.
func (tdb *TestDB) FixtureCatalog(t *testing.T, name, code, slug string, categoryID uuid.UUID, price decimal.Decimal) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := tdb.Pool.Exec(context.Background(), `
		INSERT INTO catalogs (id, name, code, slug, category_id, price, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, true, $7)`,
		id, name, code, slug, categoryID, price, time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("creating fixture catalog item %q: %v", name, err)
	}
	return id
}
