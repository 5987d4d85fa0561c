package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// SalesService records box sales and standalone delivery expenses.
type SalesService interface {
	ListSales(ctx context.Context, limit int) ([]Sale, error)
	CreateSale(ctx context.Context, input SaleInput) (*Sale, error)
	DeleteSale(ctx context.Context, id int) error

	ListDeliveryCosts(ctx context.Context, limit int) ([]DeliveryCost, error)
	CreateDeliveryCost(ctx context.Context, input DeliveryCostInput) (*DeliveryCost, error)
	DeleteDeliveryCost(ctx context.Context, id int) error
}

type SaleInput struct {
	SaleDate   time.Time
	ProductID  *int
	Product    string
	Quantity   int
	TotalValue decimal.Decimal
}

type DeliveryCostInput struct {
	CostDate    time.Time
	Description string
	Value       decimal.Decimal
}

type salesService struct {
	pool *pgxpool.Pool
}

func NewSalesService(pool *pgxpool.Pool) SalesService {
	return &salesService{pool: pool}
}

func (s *salesService) ListSales(ctx context.Context, limit int) ([]Sale, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, sale_date, product_id, product, quantity, total_value, created_at
		FROM sales ORDER BY sale_date DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		var sale Sale
		if err := rows.Scan(&sale.ID, &sale.SaleDate, &sale.ProductID, &sale.Product,
			&sale.Quantity, &sale.TotalValue, &sale.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

func (s *salesService) CreateSale(ctx context.Context, input SaleInput) (*Sale, error) {
	product := strings.TrimSpace(input.Product)
	if product == "" {
		return nil, fmt.Errorf("sale product is required")
	}
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("sale quantity must be positive, got %d", input.Quantity)
	}
	if input.TotalValue.IsNegative() {
		return nil, fmt.Errorf("sale total cannot be negative")
	}
	if input.SaleDate.IsZero() {
		input.SaleDate = time.Now()
	}

	var sale Sale
	err := s.pool.QueryRow(ctx, `
		INSERT INTO sales (sale_date, product_id, product, quantity, total_value)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, sale_date, product_id, product, quantity, total_value, created_at`,
		input.SaleDate, input.ProductID, product, input.Quantity, input.TotalValue,
	).Scan(&sale.ID, &sale.SaleDate, &sale.ProductID, &sale.Product,
		&sale.Quantity, &sale.TotalValue, &sale.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}
	return &sale, nil
}

func (s *salesService) DeleteSale(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sale %d not found", id)
	}
	return nil
}

func (s *salesService) ListDeliveryCosts(ctx context.Context, limit int) ([]DeliveryCost, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, cost_date, description, value, created_at
		FROM delivery_costs ORDER BY cost_date DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list delivery costs: %w", err)
	}
	defer rows.Close()

	var costs []DeliveryCost
	for rows.Next() {
		var dc DeliveryCost
		if err := rows.Scan(&dc.ID, &dc.CostDate, &dc.Description, &dc.Value, &dc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan delivery cost: %w", err)
		}
		costs = append(costs, dc)
	}
	return costs, rows.Err()
}

func (s *salesService) CreateDeliveryCost(ctx context.Context, input DeliveryCostInput) (*DeliveryCost, error) {
	if input.Value.IsNegative() {
		return nil, fmt.Errorf("delivery cost cannot be negative")
	}
	if input.CostDate.IsZero() {
		input.CostDate = time.Now()
	}

	var dc DeliveryCost
	err := s.pool.QueryRow(ctx, `
		INSERT INTO delivery_costs (cost_date, description, value)
		VALUES ($1, $2, $3)
		RETURNING id, cost_date, description, value, created_at`,
		input.CostDate, strings.TrimSpace(input.Description), input.Value,
	).Scan(&dc.ID, &dc.CostDate, &dc.Description, &dc.Value, &dc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create delivery cost: %w", err)
	}
	return &dc, nil
}

func (s *salesService) DeleteDeliveryCost(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM delivery_costs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete delivery cost %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delivery cost %d not found", id)
	}
	return nil
}
