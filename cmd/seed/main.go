package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/alialmasri-information-technology/restaurant-management/internal/config"
	"github.com/alialmasri-information-technology/restaurant-management/internal/database"
	"github.com/alialmasri-information-technology/restaurant-management/internal/enum"
	"github.com/alialmasri-information-technology/restaurant-management/internal/service"
)

// Sample catalog for a demo restaurant. Stock arrives through the inventory
// ledger so every item starts with an auditable Initial Stock entry.
var sampleCatalog = []struct {
	Category    string
	Description string
	Items       []struct {
		Name  string
		Price string
		Stock int32
	}
}{
	{
		Category:    "Mains",
		Description: "Grilled and fried dishes",
		Items: []struct {
			Name  string
			Price string
			Stock int32
		}{
			{"Classic Burger", "8.50", 40},
			{"Grilled Chicken", "11.00", 30},
			{"Margherita Pizza", "9.75", 25},
		},
	},
	{
		Category:    "Sides",
		Description: "",
		Items: []struct {
			Name  string
			Price string
			Stock int32
		}{
			{"French Fries", "3.00", 60},
			{"Garden Salad", "4.25", 20},
		},
	},
	{
		Category:    "Beverages",
		Description: "Cold and hot drinks",
		Items: []struct {
			Name  string
			Price string
			Stock int32
		}{
			{"Cola", "2.00", 100},
			{"Fresh Orange Juice", "3.50", 35},
			{"Coffee", "2.50", 80},
		},
	},
}

var sampleTables = []struct {
	Number   string
	Capacity int32
}{
	{"T1", 2}, {"T2", 2}, {"T3", 4}, {"T4", 4}, {"T5", 6}, {"T6", 8},
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	if err := database.SeedDefaultUsers(ctx, pool); err != nil {
		log.Fatalf("Failed to seed default users: %v", err)
	}

	if err := seedCatalog(ctx, pool); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	if err := seedTables(ctx, pool); err != nil {
		log.Fatalf("Failed to seed tables: %v", err)
	}

	log.Println("Seed completed successfully")
}

// seedCatalog inserts the sample categories and menu items. Skipped entirely
// when any category already exists, so repeated runs leave a live catalog
// alone.
func seedCatalog(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	q := database.New(tx)

	existing, err := q.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	if len(existing) > 0 {
		log.Printf("Catalog already has %d categories, skipping", len(existing))
		return nil
	}

	admin, err := q.GetUserByUsername(ctx, "admin")
	if err != nil {
		return fmt.Errorf("look up admin user: %w", err)
	}
	adminID := pgtype.UUID{Bytes: admin.ID, Valid: true}

	for _, cat := range sampleCatalog {
		desc := pgtype.Text{}
		if cat.Description != "" {
			desc = pgtype.Text{String: cat.Description, Valid: true}
		}
		category, err := q.CreateCategory(ctx, database.CreateCategoryParams{
			Name:        cat.Category,
			Description: desc,
		})
		if err != nil {
			return fmt.Errorf("create category %s: %w", cat.Category, err)
		}

		for _, it := range cat.Items {
			price, err := decimal.NewFromString(it.Price)
			if err != nil {
				return fmt.Errorf("parse price for %s: %w", it.Name, err)
			}
			var n pgtype.Numeric
			if err := n.Scan(price.StringFixed(2)); err != nil {
				return fmt.Errorf("convert price for %s: %w", it.Name, err)
			}

			item, err := q.CreateMenuItem(ctx, database.CreateMenuItemParams{
				Name:        it.Name,
				Price:       n,
				CategoryID:  category.ID,
				IsAvailable: true,
			})
			if err != nil {
				return fmt.Errorf("create item %s: %w", it.Name, err)
			}

			if it.Stock > 0 {
				if _, err := service.ApplyStockChange(ctx, q, item.ID, it.Stock,
					enum.ReasonInitialStock, pgtype.UUID{}, adminID); err != nil {
					return fmt.Errorf("seed stock for %s: %w", it.Name, err)
				}
			}
		}
		log.Printf("Created category %s with %d items", cat.Category, len(cat.Items))
	}

	return tx.Commit(ctx)
}

// seedTables inserts the sample dining tables, skipping numbers that exist.
func seedTables(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	q := database.New(tx)

	existing, err := q.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	taken := make(map[string]bool, len(existing))
	for _, t := range existing {
		taken[t.TableNumber] = true
	}

	created := 0
	for _, t := range sampleTables {
		if taken[t.Number] {
			continue
		}
		if _, err := q.CreateTable(ctx, database.CreateTableParams{
			TableNumber: t.Number,
			Capacity:    t.Capacity,
			Status:      enum.TableStatusAvailable,
		}); err != nil {
			return fmt.Errorf("create table %s: %w", t.Number, err)
		}
		created++
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if created > 0 {
		log.Printf("Created %d tables", created)
	} else {
		log.Println("All sample tables already exist, skipping")
	}
	return nil
}
