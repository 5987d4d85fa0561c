package core_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"giftbox-manager/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func setupPurchaseTestDB(t *testing.T) (*pgxpool.Pool, core.InventoryService, core.PurchaseService, context.Context) {
	t.Helper()
	pool := setupTestDB(t)
	inv := core.NewInventoryService(pool)
	purchases := core.NewPurchaseService(pool, inv)
	return pool, inv, purchases, context.Background()
}

func listInstallments(t *testing.T, ctx context.Context, pool *pgxpool.Pool, purchaseID int) []core.Installment {
	t.Helper()
	rows, err := pool.Query(ctx, `
		SELECT id, purchase_id, sequence_number, total_count, amount, due_date, status, paid_date
		FROM installments WHERE purchase_id = $1 ORDER BY sequence_number`, purchaseID)
	if err != nil {
		t.Fatalf("Failed to query installments: %v", err)
	}
	defer rows.Close()

	var out []core.Installment
	for rows.Next() {
		var ins core.Installment
		if err := rows.Scan(&ins.ID, &ins.PurchaseID, &ins.SequenceNumber, &ins.TotalCount,
			&ins.Amount, &ins.DueDate, &ins.Status, &ins.PaidDate); err != nil {
			t.Fatalf("Failed to scan installment: %v", err)
		}
		out = append(out, ins)
	}
	return out
}

func TestPurchase_CreateWithInstallments(t *testing.T) {
	pool, _, purchases, ctx := setupPurchaseTestDB(t)
	defer pool.Close()

	p, err := purchases.CreatePurchase(ctx, core.PurchaseInput{
		PurchaseDate:     time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		TotalValue:       decimal.RequireFromString("100.00"),
		Description:      "Compra de materiais",
		SupplierName:     "Armarinhos Centro",
		InstallmentCount: 3,
		Items: []core.PurchaseItemInput{
			{Name: "Fita de Cetim 10m", Quantity: decimal.NewFromInt(4), UnitPrice: decimal.RequireFromString("25.00")},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchase failed: %v", err)
	}
	if len(p.Items) != 1 {
		t.Fatalf("Expected 1 line item, got %d", len(p.Items))
	}
	if !p.Items[0].LineTotal.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("Expected derived line total 100.00, got %s", p.Items[0].LineTotal)
	}

	installments := listInstallments(t, ctx, pool, p.ID)
	if len(installments) != 3 {
		t.Fatalf("Expected 3 installments, got %d", len(installments))
	}
	wantAmounts := []string{"33.33", "33.33", "33.34"}
	wantMonths := []time.Month{time.March, time.April, time.May}
	for i, ins := range installments {
		if !ins.Amount.Equal(decimal.RequireFromString(wantAmounts[i])) {
			t.Errorf("Installment %d: expected %s, got %s", i+1, wantAmounts[i], ins.Amount)
		}
		if ins.DueDate.Day() != core.InstallmentAnchorDay || ins.DueDate.Month() != wantMonths[i] {
			t.Errorf("Installment %d: expected due %s 12, got %s", i+1, wantMonths[i], ins.DueDate)
		}
		if ins.Status != core.InstallmentPending {
			t.Errorf("Installment %d: expected pending, got %s", i+1, ins.Status)
		}
	}
}

func TestPurchase_UpdateRegeneratesSchedule(t *testing.T) {
	pool, _, purchases, ctx := setupPurchaseTestDB(t)
	defer pool.Close()

	p, err := purchases.CreatePurchase(ctx, core.PurchaseInput{
		PurchaseDate:     time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		TotalValue:       decimal.RequireFromString("100.00"),
		InstallmentCount: 2,
	})
	if err != nil {
		t.Fatalf("CreatePurchase failed: %v", err)
	}

	_, err = purchases.UpdatePurchase(ctx, p.ID, core.PurchaseUpdate{
		PurchaseDate:     p.PurchaseDate,
		TotalValue:       decimal.RequireFromString("150.00"),
		InstallmentCount: 4,
	})
	if err != nil {
		t.Fatalf("UpdatePurchase failed: %v", err)
	}

	installments := listInstallments(t, ctx, pool, p.ID)
	if len(installments) != 4 {
		t.Fatalf("Expected 4 installments after update, got %d", len(installments))
	}
	sum := decimal.Zero
	for _, ins := range installments {
		sum = sum.Add(ins.Amount)
	}
	if !sum.Equal(decimal.RequireFromString("150.00")) {
		t.Errorf("Expected regenerated amounts to sum to 150.00, got %s", sum)
	}

	// A no-op edit of total and count must keep the schedule untouched.
	before := listInstallments(t, ctx, pool, p.ID)
	_, err = purchases.UpdatePurchase(ctx, p.ID, core.PurchaseUpdate{
		PurchaseDate:     p.PurchaseDate,
		TotalValue:       decimal.RequireFromString("150.00"),
		Description:      "nova descrição",
		InstallmentCount: 4,
	})
	if err != nil {
		t.Fatalf("No-op UpdatePurchase failed: %v", err)
	}
	after := listInstallments(t, ctx, pool, p.ID)
	for i := range before {
		if before[i].ID != after[i].ID {
			t.Fatalf("Expected schedule rows preserved on description-only edit")
		}
	}
}

const importNFe = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
  <NFe>
    <infNFe Id="NFe35260314200166000187550010000001234550001234" versao="4.00">
      <ide>
        <nNF>1234</nNF>
        <dhEmi>2026-03-05T10:00:00-03:00</dhEmi>
      </ide>
      <emit>
        <xNome>ARMARINHOS CENTRO LTDA</xNome>
      </emit>
      <det nItem="1">
        <prod>
          <xProd>Fita de Cetim 10m Rosa</xProd>
          <qCom>3.0000</qCom>
          <vUnCom>4.5000</vUnCom>
          <vProd>13.50</vProd>
        </prod>
      </det>
      <det nItem="2">
        <prod>
          <xProd>Balão Bubble Metalizado 24pol</xProd>
          <qCom>2.0000</qCom>
          <vUnCom>8.0000</vUnCom>
          <vProd>16.00</vProd>
        </prod>
      </det>
      <det nItem="3">
        <prod>
          <xProd>Papel Seda Colorido</xProd>
          <qCom>5.0000</qCom>
          <vUnCom>1.2000</vUnCom>
          <vProd>6.00</vProd>
        </prod>
      </det>
      <total>
        <ICMSTot>
          <vNF>35.50</vNF>
        </ICMSTot>
      </total>
    </infNFe>
  </NFe>
</nfeProc>`

func TestPurchase_ImportDocument(t *testing.T) {
	pool, inv, purchases, ctx := setupPurchaseTestDB(t)
	defer pool.Close()

	exact := seedMaterial(t, ctx, inv, "Fita de Cetim 10m Rosa", "10", "4.00")
	seedMaterial(t, ctx, inv, "Balão Bubble 24pol", "5", "7.00")

	outcome, err := purchases.ImportDocument(ctx, []byte(importNFe), 2)
	if err != nil {
		t.Fatalf("ImportDocument failed: %v", err)
	}
	if outcome.Purchase == nil {
		t.Fatalf("Expected purchase to be created, got message: %s", outcome.Message)
	}
	if !outcome.Purchase.TotalValue.Equal(decimal.RequireFromString("35.50")) {
		t.Errorf("Expected total 35.50, got %s", outcome.Purchase.TotalValue)
	}
	if outcome.Purchase.SupplierName != "ARMARINHOS CENTRO LTDA" {
		t.Errorf("Unexpected supplier: %q", outcome.Purchase.SupplierName)
	}
	if len(outcome.Lines) != 3 {
		t.Fatalf("Expected 3 resolved lines, got %d", len(outcome.Lines))
	}

	// Line 1: exact name match, applied automatically.
	if outcome.Lines[0].AutoLinked == nil {
		t.Fatal("Expected line 1 to auto-link to the exact match")
	}
	if outcome.Lines[0].AutoLinked.ID != exact.ID {
		t.Errorf("Line 1 linked to material %d, want %d", outcome.Lines[0].AutoLinked.ID, exact.ID)
	}
	// 10 @ 4.00 + 3 @ 4.50 → 13 @ 4.1154 (rounded by NUMERIC(14,4))
	if !outcome.Lines[0].AutoLinked.StockQuantity.Equal(decimal.NewFromInt(13)) {
		t.Errorf("Expected stock 13 after auto-apply, got %s", outcome.Lines[0].AutoLinked.StockQuantity)
	}

	// Line 2: fuzzy match, left for confirmation.
	if len(outcome.Lines[1].Candidates) == 0 {
		t.Fatal("Expected fuzzy candidates for line 2")
	}
	if outcome.Lines[1].AutoLinked != nil || outcome.Lines[1].Created != nil {
		t.Error("Fuzzy line must not be applied automatically")
	}
	if outcome.Lines[1].Candidates[0].Material.Name != "Balão Bubble 24pol" {
		t.Errorf("Expected Balão candidate, got %q", outcome.Lines[1].Candidates[0].Material.Name)
	}

	// Line 3: unknown item, new material created and applied.
	if outcome.Lines[2].Created == nil {
		t.Fatal("Expected line 3 to create a new material")
	}
	if !outcome.Lines[2].Created.StockQuantity.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected created material stock 5, got %s", outcome.Lines[2].Created.StockQuantity)
	}

	installments := listInstallments(t, ctx, pool, outcome.Purchase.ID)
	if len(installments) != 2 {
		t.Fatalf("Expected 2 installments, got %d", len(installments))
	}

	// Confirm the fuzzy line against the suggested material.
	candID := outcome.Lines[1].Candidates[0].Material.ID
	confirmed, err := purchases.ConfirmLineMatch(ctx, outcome.Lines[1].Item.ID, &candID)
	if err != nil {
		t.Fatalf("ConfirmLineMatch failed: %v", err)
	}
	// 5 @ 7.00 + 2 @ 8.00 → 7 on hand
	if !confirmed.StockQuantity.Equal(decimal.NewFromInt(7)) {
		t.Errorf("Expected stock 7 after confirmation, got %s", confirmed.StockQuantity)
	}

	// Confirming the same line again must be refused.
	if _, err := purchases.ConfirmLineMatch(ctx, outcome.Lines[1].Item.ID, &candID); err == nil {
		t.Error("Expected second confirmation of the same line to fail")
	}
}

const importNFeDuplicateLines = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
  <NFe>
    <infNFe Id="NFe35260314200166000187550010000001235550001235" versao="4.00">
      <ide>
        <nNF>1235</nNF>
        <dhEmi>2026-03-05T10:00:00-03:00</dhEmi>
      </ide>
      <emit>
        <xNome>ARMARINHOS CENTRO LTDA</xNome>
      </emit>
      <det nItem="1">
        <prod>
          <xProd>Fita de Cetim 10m Rosa</xProd>
          <qCom>3.0000</qCom>
          <vUnCom>4.5000</vUnCom>
          <vProd>13.50</vProd>
        </prod>
      </det>
      <det nItem="2">
        <prod>
          <xProd>Fita de Cetim 10m Rosa</xProd>
          <qCom>2.0000</qCom>
          <vUnCom>4.5000</vUnCom>
          <vProd>9.00</vProd>
        </prod>
      </det>
      <total>
        <ICMSTot>
          <vNF>22.50</vNF>
        </ICMSTot>
      </total>
    </infNFe>
  </NFe>
</nfeProc>`

func TestPurchase_ImportDocument_DuplicateLineSkipsStock(t *testing.T) {
	pool, inv, purchases, ctx := setupPurchaseTestDB(t)
	defer pool.Close()

	exact := seedMaterial(t, ctx, inv, "Fita de Cetim 10m Rosa", "10", "4.00")

	outcome, err := purchases.ImportDocument(ctx, []byte(importNFeDuplicateLines), 0)
	if err != nil {
		t.Fatalf("ImportDocument failed: %v", err)
	}
	if len(outcome.Lines) != 2 {
		t.Fatalf("Expected 2 resolved lines, got %d", len(outcome.Lines))
	}

	// First line applies; the repeated name on line 2 links but must not
	// reach the ledger a second time.
	if outcome.Lines[0].StockSkipped {
		t.Error("First line must not be marked as skipped")
	}
	if !outcome.Lines[1].StockSkipped {
		t.Error("Expected duplicate line to be marked as skipped")
	}
	if outcome.Lines[1].AutoLinked == nil {
		t.Fatal("Duplicate line must still link to the material")
	}

	// 10 @ 4.00 + 3 @ 4.50 → 13 on hand; line 2's quantity stays out.
	m, err := inv.GetMaterial(ctx, exact.ID)
	if err != nil {
		t.Fatalf("GetMaterial failed: %v", err)
	}
	if !m.StockQuantity.Equal(decimal.NewFromInt(13)) {
		t.Errorf("Expected stock 13 after duplicate import, got %s", m.StockQuantity)
	}

	if !strings.Contains(outcome.Message, "duplicada") {
		t.Errorf("Expected message to mention the skipped duplicate, got %q", outcome.Message)
	}
}

func TestPurchase_ImportDocument_Idempotent(t *testing.T) {
	pool, _, purchases, ctx := setupPurchaseTestDB(t)
	defer pool.Close()

	if _, err := purchases.ImportDocument(ctx, []byte(importNFe), 0); err != nil {
		t.Fatalf("First import failed: %v", err)
	}

	_, err := purchases.ImportDocument(ctx, []byte(importNFe), 0)
	if !errors.Is(err, core.ErrDocumentImported) {
		t.Fatalf("Expected ErrDocumentImported on re-import, got %v", err)
	}
}

func TestPurchase_ImportDocument_Unparseable(t *testing.T) {
	pool, _, purchases, ctx := setupPurchaseTestDB(t)
	defer pool.Close()

	outcome, err := purchases.ImportDocument(ctx, []byte("not a fiscal document"), 0)
	if err != nil {
		t.Fatalf("ImportDocument returned error for unparseable input: %v", err)
	}
	if outcome.Purchase != nil {
		t.Error("Expected no purchase for unparseable input")
	}
	if outcome.Message == "" {
		t.Error("Expected a failure message for unparseable input")
	}
}
