package core_test

import (
	"testing"
	"time"

	"giftbox-manager/internal/core"

	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildSchedule_RemainderOnLast(t *testing.T) {
	schedule := core.BuildSchedule(decimal.NewFromFloat(100.00), date(2024, time.March, 5), 3)
	if len(schedule) != 3 {
		t.Fatalf("expected 3 installments, got %d", len(schedule))
	}

	wantAmounts := []string{"33.33", "33.33", "33.34"}
	for i, s := range schedule {
		if s.Amount.StringFixed(2) != wantAmounts[i] {
			t.Errorf("installment %d amount = %s, want %s", i+1, s.Amount.StringFixed(2), wantAmounts[i])
		}
		if s.SequenceNumber != i+1 || s.TotalCount != 3 {
			t.Errorf("installment %d has sequence %d/%d", i+1, s.SequenceNumber, s.TotalCount)
		}
	}
}

func TestBuildSchedule_SumEqualsTotal(t *testing.T) {
	totals := []string{"100.00", "99.99", "0.01", "1234.56", "10.00"}
	for _, raw := range totals {
		total := decimal.RequireFromString(raw)
		for count := 1; count <= 12; count++ {
			sum := decimal.Zero
			for _, s := range core.BuildSchedule(total, date(2024, time.January, 3), count) {
				sum = sum.Add(s.Amount)
			}
			if !sum.Equal(total) {
				t.Errorf("total %s count %d: sum %s != total", raw, count, sum)
			}
		}
	}
}

func TestBuildSchedule_SmallTotalNeverNegative(t *testing.T) {
	// A total smaller than one cent per installment must not push the
	// remainder-absorbing final amount below zero.
	schedule := core.BuildSchedule(decimal.RequireFromString("0.05"), date(2024, time.March, 5), 10)
	sum := decimal.Zero
	for i, s := range schedule {
		if s.Amount.IsNegative() {
			t.Errorf("installment %d amount is negative: %s", i+1, s.Amount)
		}
		sum = sum.Add(s.Amount)
	}
	if !sum.Equal(decimal.RequireFromString("0.05")) {
		t.Errorf("sum %s != total 0.05", sum)
	}
	if last := schedule[len(schedule)-1].Amount; !last.Equal(decimal.RequireFromString("0.05")) {
		t.Errorf("last installment = %s, want 0.05", last)
	}
}

func TestBuildSchedule_AnchorDayAndMonotonicDates(t *testing.T) {
	schedule := core.BuildSchedule(decimal.NewFromInt(600), date(2024, time.April, 2), 6)
	prev := time.Time{}
	for _, s := range schedule {
		if s.DueDate.Day() != core.InstallmentAnchorDay {
			t.Errorf("due date %v not on anchor day", s.DueDate)
		}
		if !s.DueDate.After(prev) {
			t.Errorf("due dates not strictly increasing: %v after %v", s.DueDate, prev)
		}
		prev = s.DueDate
	}
	// Purchase on day 2 makes the current month's cycle: first due April 12.
	if first := schedule[0].DueDate; first.Month() != time.April || first.Year() != 2024 {
		t.Errorf("first due date = %v, want April 2024", first)
	}
}

func TestBuildSchedule_PurchaseAfterAnchorShiftsMonth(t *testing.T) {
	schedule := core.BuildSchedule(decimal.NewFromInt(300), date(2024, time.March, 13), 3)
	if first := schedule[0].DueDate; first.Month() != time.April {
		t.Errorf("purchase on day 13 should first fall due in April, got %v", first)
	}

	// Day 12 itself still makes the cycle.
	schedule = core.BuildSchedule(decimal.NewFromInt(300), date(2024, time.March, 12), 1)
	if first := schedule[0].DueDate; first.Month() != time.March {
		t.Errorf("purchase on day 12 should fall due in March, got %v", first)
	}
}

func TestBuildSchedule_YearRollover(t *testing.T) {
	schedule := core.BuildSchedule(decimal.NewFromInt(400), date(2024, time.November, 20), 4)
	want := []struct {
		y int
		m time.Month
	}{
		{2024, time.December}, {2025, time.January}, {2025, time.February}, {2025, time.March},
	}
	for i, s := range schedule {
		if s.DueDate.Year() != want[i].y || s.DueDate.Month() != want[i].m {
			t.Errorf("installment %d due %v, want %v %d", i+1, s.DueDate, want[i].m, want[i].y)
		}
	}
}

func TestBuildSchedule_ZeroCountMeansPaidOutright(t *testing.T) {
	if s := core.BuildSchedule(decimal.NewFromInt(50), date(2024, time.May, 1), 0); s != nil {
		t.Errorf("count 0 should produce no installments, got %d", len(s))
	}
}
