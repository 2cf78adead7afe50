// Command seed fills the database with a small demo taxonomy. It goes
// through the services so slugs and codes come out exactly as they would
// through the API.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/forgecommerce/catalog/internal/database"
	"github.com/forgecommerce/catalog/internal/services/catalog"
	"github.com/forgecommerce/catalog/internal/services/category"
	"github.com/forgecommerce/catalog/internal/store"
)

func main() {
	dbURL := flag.String("db", "", "Database URL")
	flag.Parse()

	if *dbURL == "" {
		*dbURL = os.Getenv("DATABASE_URL")
	}
	if *dbURL == "" {
		log.Fatal("database URL is required: use -db flag or DATABASE_URL env var")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := context.Background()

	pool, err := database.Connect(ctx, *dbURL)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(*dbURL); err != nil {
		log.Fatalf("running migrations: %v", err)
	}

	categorySvc := category.NewService(store.NewCategoryStore(pool), logger)
	catalogSvc := catalog.NewService(store.NewCatalogStore(pool), logger)

	mustCategory := func(name string, parentID *uuid.UUID, sortOrder int32) category.Category {
		c, err := categorySvc.Create(ctx, category.CreateParams{
			Name: name, ParentID: parentID, SortOrder: sortOrder, IsActive: true,
		})
		if err != nil {
			log.Fatalf("seeding category %q: %v", name, err)
		}
		return c
	}

	mustItem := func(name, code string, categoryID uuid.UUID, price string) {
		_, err := catalogSvc.Create(ctx, catalog.CreateParams{
			Name:       name,
			Code:       code,
			CategoryID: categoryID,
			Price:      decimal.RequireFromString(price),
			IsActive:   true,
		})
		if err != nil {
			log.Fatalf("seeding catalog item %q: %v", name, err)
		}
	}

	drinks := mustCategory("Đồ uống", nil, 1)
	food := mustCategory("Món ăn", nil, 2)
	coffee := mustCategory("Cà phê", &drinks.ID, 1)
	tea := mustCategory("Trà", &drinks.ID, 2)

	mustItem("Cà phê sữa đá", "cf01", coffee.ID, "3.50")
	mustItem("Cà phê đen", "cf02", coffee.ID, "3.00")
	mustItem("Trà đào cam sả", "tr01", tea.ID, "4.50")
	mustItem("Bánh mì thịt nướng", "bm01", food.ID, "5.00")
	mustItem("Phở bò", "ph01", food.ID, "9.50")

	logger.Info("seed complete")
}
