package core_test

import (
	"context"
	"os"
	"testing"
	"time"

	"giftbox-manager/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE users, materials, purchases, purchase_items, purchase_applications,
		               installments, products, recipe_entries, sales, delivery_costs
		RESTART IDENTITY CASCADE;

		INSERT INTO products (name) VALUES
		    ('Box Café da manhã/tarde'),
		    ('Box Chocolate'),
		    ('Box Maternidade'),
		    ('Box Casamento'),
		    ('Box Aniversário');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

// seedPurchase inserts a bare purchase header and returns its id.
func seedPurchase(t *testing.T, ctx context.Context, pool *pgxpool.Pool, total string) int {
	t.Helper()
	var id int
	err := pool.QueryRow(ctx, `
		INSERT INTO purchases (purchase_date, total_value, supplier_name)
		VALUES ($1, $2, 'Fornecedor Teste') RETURNING id`,
		time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), decimal.RequireFromString(total),
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to seed purchase: %v", err)
	}
	return id
}

// seedMaterial inserts a material with the given stock and cost and returns it.
func seedMaterial(t *testing.T, ctx context.Context, inv core.InventoryService, name, stock, cost string) *core.Material {
	t.Helper()
	m, err := inv.CreateMaterial(ctx, core.MaterialInput{
		Name:          name,
		StockQuantity: decimal.RequireFromString(stock),
		UnitCost:      decimal.RequireFromString(cost),
	})
	if err != nil {
		t.Fatalf("Failed to seed material %q: %v", name, err)
	}
	return m
}
