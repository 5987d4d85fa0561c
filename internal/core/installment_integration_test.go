package core_test

import (
	"context"
	"testing"
	"time"

	"giftbox-manager/internal/core"

	"github.com/shopspring/decimal"
)

func TestInstallments_OverdueSweep(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	svc := core.NewInstallmentService(pool)

	purchaseID := seedPurchase(t, ctx, pool, "60.00")

	// One overdue, one future.
	past := time.Now().AddDate(0, 0, -40).Format("2006-01-02")
	future := time.Now().AddDate(0, 0, 40).Format("2006-01-02")
	_, err := pool.Exec(ctx, `
		INSERT INTO installments (purchase_id, sequence_number, total_count, amount, due_date) VALUES
		($1, 1, 2, 30.00, $2),
		($1, 2, 2, 30.00, $3)`, purchaseID, past, future)
	if err != nil {
		t.Fatalf("Failed to seed installments: %v", err)
	}

	payables, err := svc.ListPayables(ctx)
	if err != nil {
		t.Fatalf("ListPayables failed: %v", err)
	}
	if len(payables) != 2 {
		t.Fatalf("Expected 2 installments, got %d", len(payables))
	}

	// Overdue one is swept to paid with its due date as the paid date.
	if payables[0].Status != core.InstallmentPaid {
		t.Errorf("Expected overdue installment swept to paid, got %s", payables[0].Status)
	}
	if payables[0].PaidDate == nil || !payables[0].PaidDate.Equal(payables[0].DueDate) {
		t.Errorf("Expected paid date = due date for swept installment, got %v", payables[0].PaidDate)
	}
	if payables[1].Status != core.InstallmentPending {
		t.Errorf("Expected future installment still pending, got %s", payables[1].Status)
	}
}

func TestInstallments_MarkPaidAndPending(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	svc := core.NewInstallmentService(pool)

	purchaseID := seedPurchase(t, ctx, pool, "50.00")
	var id int
	err := pool.QueryRow(ctx, `
		INSERT INTO installments (purchase_id, sequence_number, total_count, amount, due_date)
		VALUES ($1, 1, 1, 50.00, $2) RETURNING id`,
		purchaseID, time.Now().AddDate(0, 0, 20).Format("2006-01-02"),
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to seed installment: %v", err)
	}

	paid, err := svc.MarkPaid(ctx, id)
	if err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}
	if paid.Status != core.InstallmentPaid || paid.PaidDate == nil {
		t.Errorf("Expected paid with a paid date, got %s / %v", paid.Status, paid.PaidDate)
	}
	if !paid.Amount.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("Expected amount 50.00, got %s", paid.Amount)
	}

	pending, err := svc.MarkPending(ctx, id)
	if err != nil {
		t.Fatalf("MarkPending failed: %v", err)
	}
	if pending.Status != core.InstallmentPending || pending.PaidDate != nil {
		t.Errorf("Expected pending with no paid date, got %s / %v", pending.Status, pending.PaidDate)
	}

	if _, err := svc.MarkPaid(ctx, 99999); err == nil {
		t.Error("Expected error for unknown installment id")
	}
}

func TestInstallments_ListUpcoming(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	svc := core.NewInstallmentService(pool)

	purchaseID := seedPurchase(t, ctx, pool, "90.00")
	_, err := pool.Exec(ctx, `
		INSERT INTO installments (purchase_id, sequence_number, total_count, amount, due_date) VALUES
		($1, 1, 3, 30.00, $2),
		($1, 2, 3, 30.00, $3),
		($1, 3, 3, 30.00, $4)`,
		purchaseID,
		time.Now().AddDate(0, 0, 10).Format("2006-01-02"),
		time.Now().AddDate(0, 0, 25).Format("2006-01-02"),
		time.Now().AddDate(0, 0, 90).Format("2006-01-02"))
	if err != nil {
		t.Fatalf("Failed to seed installments: %v", err)
	}

	upcoming, err := svc.ListUpcoming(ctx, 30)
	if err != nil {
		t.Fatalf("ListUpcoming failed: %v", err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("Expected 2 installments within 30 days, got %d", len(upcoming))
	}
}
