package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentAnchorDay is the fixed billing-cycle close: every installment is
// due on this day of its month regardless of the purchase day.
const InstallmentAnchorDay = 12

// ScheduledInstallment is one entry of a generated payment schedule, not yet
// persisted.
type ScheduledInstallment struct {
	SequenceNumber int
	TotalCount     int
	Amount         decimal.Decimal
	DueDate        time.Time
}

// BuildSchedule splits a purchase total into count installments due on day 12
// of successive months. A purchase made after the anchor day missed the
// current cycle's close, so its first installment shifts one month forward.
//
// Amounts are total/count floored to 2 decimals; the final installment
// absorbs the rounding remainder so that the amounts sum exactly to total
// (100.00 / 3 → 33.33, 33.33, 33.34). Flooring keeps the remainder
// non-negative, so the last installment can never drop below the others'
// base (0.05 / 10 → nine 0.00 and one 0.05, not a negative final amount).
// count == 0 means paid outright and yields an empty schedule.
func BuildSchedule(total decimal.Decimal, purchaseDate time.Time, count int) []ScheduledInstallment {
	if count <= 0 {
		return nil
	}

	firstMonth := time.Date(purchaseDate.Year(), purchaseDate.Month(), 1, 0, 0, 0, 0, purchaseDate.Location())
	if purchaseDate.Day() > InstallmentAnchorDay {
		firstMonth = firstMonth.AddDate(0, 1, 0)
	}

	base := total.Div(decimal.NewFromInt(int64(count))).RoundDown(2)
	last := total.Sub(base.Mul(decimal.NewFromInt(int64(count - 1))))

	schedule := make([]ScheduledInstallment, 0, count)
	for i := 0; i < count; i++ {
		amount := base
		if i == count-1 {
			amount = last
		}
		// AddDate on a day-1 date is safe from end-of-month normalization.
		month := firstMonth.AddDate(0, i, 0)
		schedule = append(schedule, ScheduledInstallment{
			SequenceNumber: i + 1,
			TotalCount:     count,
			Amount:         amount,
			DueDate: time.Date(month.Year(), month.Month(), InstallmentAnchorDay,
				0, 0, 0, 0, purchaseDate.Location()),
		})
	}
	return schedule
}
