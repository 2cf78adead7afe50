// Package store implements the persistence ports of the category and
// catalog services on PostgreSQL via pgx. The schema's unique indexes
// on (parent_id, slug), (category_id, slug) and (code) are the final
// arbiter for the uniqueness rules the services pre-check optimistically,
// so the constraint-violation translation here is what turns a lost
// validate-then-write race into the same conflict error the pre-check
// would have produced.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes of interest.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Constraint names from the migrations, used to pick the right sentinel.
const (
	categorySlugConstraint   = "categories_parent_id_slug_key"
	categoryParentConstraint = "categories_parent_id_fkey"
	catalogCodeConstraint    = "catalogs_code_key"
	catalogSlugConstraint    = "catalogs_category_id_slug_key"
	catalogCategoryFK        = "catalogs_category_id_fkey"
)

// constraintName extracts the violated constraint from a pg error, or ""
// when the error is not a unique or foreign key violation.
func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.SQLState() {
		case uniqueViolation, foreignKeyViolation:
			return pgErr.ConstraintName
		}
	}
	return ""
}
