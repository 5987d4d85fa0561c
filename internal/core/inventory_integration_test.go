package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"giftbox-manager/internal/core"

	"github.com/shopspring/decimal"
)

func TestInventory_ApplyPurchase_WeightedAverage(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	inv := core.NewInventoryService(pool)

	m := seedMaterial(t, ctx, inv, "Fita de Cetim 10m", "10", "2.00")
	purchaseID := seedPurchase(t, ctx, pool, "40.00")

	// 10 on hand @ 2.00 + 10 incoming @ 4.00 → 20 @ 3.00
	newCost, err := inv.ApplyPurchase(ctx, purchaseID, m.ID,
		decimal.NewFromInt(10), decimal.RequireFromString("4.00"),
		"Fornecedor Teste", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ApplyPurchase failed: %v", err)
	}
	if !newCost.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected blended cost 3, got %s", newCost)
	}

	got, err := inv.GetMaterial(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMaterial failed: %v", err)
	}
	if !got.StockQuantity.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Expected stock 20, got %s", got.StockQuantity)
	}
	if !got.UnitCost.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected unit cost 3, got %s", got.UnitCost)
	}
	if got.LastPurchaseDate == nil {
		t.Error("Expected last_purchase_date to be set")
	}
}

func TestInventory_ApplyPurchase_RefusesDoubleApplication(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	inv := core.NewInventoryService(pool)

	m := seedMaterial(t, ctx, inv, "Caneca Personalizada", "5", "10.00")
	purchaseID := seedPurchase(t, ctx, pool, "50.00")

	qty := decimal.NewFromInt(5)
	cost := decimal.RequireFromString("12.00")
	date := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	if _, err := inv.ApplyPurchase(ctx, purchaseID, m.ID, qty, cost, "", date); err != nil {
		t.Fatalf("First ApplyPurchase failed: %v", err)
	}

	_, err := inv.ApplyPurchase(ctx, purchaseID, m.ID, qty, cost, "", date)
	if !errors.Is(err, core.ErrAlreadyApplied) {
		t.Fatalf("Expected ErrAlreadyApplied on second application, got %v", err)
	}

	// The ledger must be unchanged by the refused second application.
	got, err := inv.GetMaterial(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMaterial failed: %v", err)
	}
	if !got.StockQuantity.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected stock 10 after single application, got %s", got.StockQuantity)
	}
	if !got.UnitCost.Equal(decimal.NewFromInt(11)) {
		t.Errorf("Expected unit cost 11, got %s", got.UnitCost)
	}
}

func TestInventory_ApplyPurchase_ZeroStockTakesIncomingCost(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	inv := core.NewInventoryService(pool)

	m := seedMaterial(t, ctx, inv, "Glitter Dourado 5g", "0", "0")
	purchaseID := seedPurchase(t, ctx, pool, "15.00")

	newCost, err := inv.ApplyPurchase(ctx, purchaseID, m.ID,
		decimal.NewFromInt(3), decimal.RequireFromString("5.00"),
		"", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ApplyPurchase failed: %v", err)
	}
	if !newCost.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected cost 5 for first lot into empty stock, got %s", newCost)
	}
}

func TestInventory_FindMatches(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	inv := core.NewInventoryService(pool)

	seedMaterial(t, ctx, inv, "Balão Bubble 24pol", "1", "8.00")
	seedMaterial(t, ctx, inv, "Chocolate Ferrero", "1", "3.00")

	matches, err := inv.FindMatches(ctx, "Bubble Balão 24pol", core.DefaultMatchThreshold)
	if err != nil {
		t.Fatalf("FindMatches failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
	if matches[0].Material.Name != "Balão Bubble 24pol" {
		t.Errorf("Expected Balão match, got %q", matches[0].Material.Name)
	}
	if matches[0].Score < core.DefaultMatchThreshold {
		t.Errorf("Expected score >= %.2f, got %.2f", core.DefaultMatchThreshold, matches[0].Score)
	}
}

func TestInventory_CreateMaterial_ClassifiesUnit(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	inv := core.NewInventoryService(pool)

	m, err := inv.CreateMaterial(ctx, core.MaterialInput{Name: "Óleo de Massagem 500ml"})
	if err != nil {
		t.Fatalf("CreateMaterial failed: %v", err)
	}
	if m.UnitOfMeasure != core.UnitLiter {
		t.Errorf("Expected liter from name classification, got %s", m.UnitOfMeasure)
	}

	_, err = inv.CreateMaterial(ctx, core.MaterialInput{Name: "Óleo de Massagem 500ml"})
	if err == nil {
		t.Error("Expected duplicate name to be rejected")
	}
}
