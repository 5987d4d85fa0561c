package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrAlreadyApplied is returned when a purchase line is folded into a
// material a second time. The weighted average cannot be rewound, so the
// caller must treat this as a hard stop, not a retry.
var ErrAlreadyApplied = errors.New("purchase already applied to this material")

// InventoryService manages the material catalog and its weighted-average
// cost ledger.
type InventoryService interface {
	ListMaterials(ctx context.Context) ([]Material, error)
	GetMaterial(ctx context.Context, id int) (*Material, error)

	// CreateMaterial inserts a new material. An empty unit of measure is
	// classified from the name.
	CreateMaterial(ctx context.Context, input MaterialInput) (*Material, error)
	UpdateMaterial(ctx context.Context, id int, input MaterialInput) (*Material, error)
	DeleteMaterial(ctx context.Context, id int) error

	// FindMatches scores every existing material against a candidate name and
	// returns those at or above threshold, best first. Heuristic: the caller
	// must route fuzzy results through user confirmation.
	FindMatches(ctx context.Context, name string, threshold float64) ([]MaterialMatch, error)

	// ApplyPurchase folds one purchase line into a material: stock increases
	// by qty and unit cost becomes the weighted average of old stock and the
	// incoming lot. Runs in its own transaction with the material row locked;
	// a (purchase, material) pair can be applied exactly once.
	ApplyPurchase(ctx context.Context, purchaseID, materialID int, qty, unitCost decimal.Decimal, supplier string, purchaseDate time.Time) (newCost decimal.Decimal, err error)
}

type inventoryService struct {
	pool *pgxpool.Pool
}

func NewInventoryService(pool *pgxpool.Pool) InventoryService {
	return &inventoryService{pool: pool}
}

// MaterialInput holds the fields for creating or updating a material.
type MaterialInput struct {
	Name          string
	UnitOfMeasure MeasurementUnit
	StockQuantity decimal.Decimal
	UnitCost      decimal.Decimal
	Supplier      string
}

const materialColumns = `id, name, unit_of_measure, stock_quantity, unit_cost, supplier, last_purchase_date, created_at, updated_at`

func scanMaterial(row pgx.Row) (*Material, error) {
	m := &Material{}
	err := row.Scan(&m.ID, &m.Name, &m.UnitOfMeasure, &m.StockQuantity, &m.UnitCost,
		&m.Supplier, &m.LastPurchaseDate, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *inventoryService) ListMaterials(ctx context.Context) ([]Material, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+materialColumns+` FROM materials ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	var materials []Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		materials = append(materials, *m)
	}
	return materials, rows.Err()
}

func (s *inventoryService) GetMaterial(ctx context.Context, id int) (*Material, error) {
	m, err := scanMaterial(s.pool.QueryRow(ctx,
		`SELECT `+materialColumns+` FROM materials WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("material %d not found", id)
		}
		return nil, fmt.Errorf("get material %d: %w", id, err)
	}
	return m, nil
}

func (s *inventoryService) CreateMaterial(ctx context.Context, input MaterialInput) (*Material, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("material name is required")
	}
	unit := input.UnitOfMeasure
	if unit == "" {
		unit = ClassifyUnit(name)
	}

	m, err := scanMaterial(s.pool.QueryRow(ctx, `
		INSERT INTO materials (name, unit_of_measure, stock_quantity, unit_cost, supplier)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+materialColumns,
		name, unit, input.StockQuantity, input.UnitCost, input.Supplier))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("material %q already exists", name)
		}
		return nil, fmt.Errorf("create material %q: %w", name, err)
	}
	return m, nil
}

func (s *inventoryService) UpdateMaterial(ctx context.Context, id int, input MaterialInput) (*Material, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("material name is required")
	}
	unit := input.UnitOfMeasure
	if unit == "" {
		unit = ClassifyUnit(name)
	}

	m, err := scanMaterial(s.pool.QueryRow(ctx, `
		UPDATE materials
		SET name = $1, unit_of_measure = $2, stock_quantity = $3, unit_cost = $4,
		    supplier = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING `+materialColumns,
		name, unit, input.StockQuantity, input.UnitCost, input.Supplier, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("material %d not found", id)
		}
		return nil, fmt.Errorf("update material %d: %w", id, err)
	}
	return m, nil
}

// DeleteMaterial removes a material. Materials are never deleted
// automatically — this is the manual path only, and the database cascades
// recipe entries and purchase applications.
func (s *inventoryService) DeleteMaterial(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete material %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("material %d not found", id)
	}
	return nil
}

func (s *inventoryService) FindMatches(ctx context.Context, name string, threshold float64) ([]MaterialMatch, error) {
	materials, err := s.ListMaterials(ctx)
	if err != nil {
		return nil, err
	}
	return FindSimilar(name, materials, threshold), nil
}

// ApplyPurchase performs the weighted-average update:
//
//	new_cost = (stock × cost + qty × unitCost) / (stock + qty)
//
// inside one transaction. The purchase_applications unique pair guards
// against double application; the FOR UPDATE lock keeps concurrent purchases
// of the same material serialized.
func (s *inventoryService) ApplyPurchase(ctx context.Context, purchaseID, materialID int,
	qty, unitCost decimal.Decimal, supplier string, purchaseDate time.Time) (decimal.Decimal, error) {

	if qty.IsNegative() || qty.IsZero() {
		return decimal.Zero, fmt.Errorf("apply purchase: quantity must be positive, got %s", qty)
	}
	if unitCost.IsNegative() {
		return decimal.Zero, fmt.Errorf("apply purchase: unit cost cannot be negative, got %s", unitCost)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Claim the (purchase, material) pair first so a double application
	// fails before touching the ledger.
	_, err = tx.Exec(ctx, `
		INSERT INTO purchase_applications (purchase_id, material_id, quantity, unit_cost)
		VALUES ($1, $2, $3, $4)`,
		purchaseID, materialID, qty, unitCost)
	if err != nil {
		if isUniqueViolation(err) {
			return decimal.Zero, ErrAlreadyApplied
		}
		return decimal.Zero, fmt.Errorf("record purchase application: %w", err)
	}

	var stockQty, currentCost decimal.Decimal
	err = tx.QueryRow(ctx,
		`SELECT stock_quantity, unit_cost FROM materials WHERE id = $1 FOR UPDATE`,
		materialID,
	).Scan(&stockQty, &currentCost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("material %d not found", materialID)
		}
		return decimal.Zero, fmt.Errorf("lock material %d: %w", materialID, err)
	}

	newCost := BlendedUnitCost(stockQty, currentCost, qty, unitCost)
	newStock := stockQty.Add(qty)

	_, err = tx.Exec(ctx, `
		UPDATE materials
		SET stock_quantity = $1, unit_cost = $2, supplier = COALESCE(NULLIF($3, ''), supplier),
		    last_purchase_date = $4, updated_at = NOW()
		WHERE id = $5`,
		newStock, newCost, supplier, purchaseDate, materialID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("update material %d ledger: %w", materialID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("commit purchase application: %w", err)
	}
	return newCost, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
