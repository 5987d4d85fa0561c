package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InstallmentService tracks scheduled purchase payments.
type InstallmentService interface {
	// ListPayables returns every installment ordered by due date. Pending
	// installments whose due date has passed are marked paid in the same
	// transaction before the list is read, so the caller always sees the
	// swept state.
	ListPayables(ctx context.Context) ([]Installment, error)

	// ListUpcoming returns pending installments due within the next days.
	ListUpcoming(ctx context.Context, days int) ([]Installment, error)

	MarkPaid(ctx context.Context, id int) (*Installment, error)
	MarkPending(ctx context.Context, id int) (*Installment, error)
}

type installmentService struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewInstallmentService(pool *pgxpool.Pool) InstallmentService {
	return &installmentService{pool: pool, now: time.Now}
}

const installmentColumns = `id, purchase_id, sequence_number, total_count, amount, due_date, status, paid_date`

func scanInstallment(row pgx.Row) (*Installment, error) {
	var ins Installment
	err := row.Scan(&ins.ID, &ins.PurchaseID, &ins.SequenceNumber, &ins.TotalCount,
		&ins.Amount, &ins.DueDate, &ins.Status, &ins.PaidDate)
	if err != nil {
		return nil, err
	}
	return &ins, nil
}

func (s *installmentService) ListPayables(ctx context.Context) ([]Installment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	today := s.now().Format("2006-01-02")

	// Overdue pending installments are assumed settled. The paid date
	// recorded is the due date, not today, so a late sweep does not shift
	// the payment into the wrong month.
	_, err = tx.Exec(ctx, `
		UPDATE installments
		SET status = 'paid', paid_date = due_date
		WHERE status = 'pending' AND due_date < $1`, today)
	if err != nil {
		return nil, fmt.Errorf("sweep overdue installments: %w", err)
	}

	rows, err := tx.Query(ctx,
		`SELECT `+installmentColumns+` FROM installments ORDER BY due_date, purchase_id, sequence_number`)
	if err != nil {
		return nil, fmt.Errorf("list installments: %w", err)
	}
	installments, err := collectInstallments(rows)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit payables sweep: %w", err)
	}
	return installments, nil
}

func (s *installmentService) ListUpcoming(ctx context.Context, days int) ([]Installment, error) {
	if days <= 0 {
		days = 30
	}
	now := s.now()
	rows, err := s.pool.Query(ctx, `
		SELECT `+installmentColumns+` FROM installments
		WHERE status = 'pending' AND due_date >= $1 AND due_date <= $2
		ORDER BY due_date, purchase_id, sequence_number`,
		now.Format("2006-01-02"), now.AddDate(0, 0, days).Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("list upcoming installments: %w", err)
	}
	return collectInstallments(rows)
}

func collectInstallments(rows pgx.Rows) ([]Installment, error) {
	defer rows.Close()
	var installments []Installment
	for rows.Next() {
		ins, err := scanInstallment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan installment: %w", err)
		}
		installments = append(installments, *ins)
	}
	return installments, rows.Err()
}

func (s *installmentService) MarkPaid(ctx context.Context, id int) (*Installment, error) {
	ins, err := scanInstallment(s.pool.QueryRow(ctx, `
		UPDATE installments SET status = 'paid', paid_date = $1
		WHERE id = $2
		RETURNING `+installmentColumns,
		s.now().Format("2006-01-02"), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("installment %d not found", id)
		}
		return nil, fmt.Errorf("mark installment %d paid: %w", id, err)
	}
	return ins, nil
}

func (s *installmentService) MarkPending(ctx context.Context, id int) (*Installment, error) {
	ins, err := scanInstallment(s.pool.QueryRow(ctx, `
		UPDATE installments SET status = 'pending', paid_date = NULL
		WHERE id = $1
		RETURNING `+installmentColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("installment %d not found", id)
		}
		return nil, fmt.Errorf("mark installment %d pending: %w", id, err)
	}
	return ins, nil
}
