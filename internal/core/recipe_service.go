package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// RecipeService manages the bill of materials of the fixed box catalog and
// derives production costs from current material prices.
type RecipeService interface {
	ListProducts(ctx context.Context) ([]Product, error)

	// GetRecipe returns the entries of a product's bill of materials with the
	// owning material's current name and unit cost attached.
	GetRecipe(ctx context.Context, productID int) ([]RecipeEntry, error)

	// AddEntry adds a material requirement. A second entry for the same
	// (product, material) pair is rejected.
	AddEntry(ctx context.Context, productID, materialID int, quantity decimal.Decimal) (*RecipeEntry, error)
	UpdateEntry(ctx context.Context, entryID int, quantity decimal.Decimal) (*RecipeEntry, error)
	DeleteEntry(ctx context.Context, entryID int) error

	// CostReport prices a product's recipe at current material costs. Pack
	// sized materials contribute their per-piece share.
	CostReport(ctx context.Context, productID int) (*ProductCostReport, error)
}

// ProductCostReport is the priced bill of materials of one product.
type ProductCostReport struct {
	Product   Product         `json:"product"`
	Entries   []RecipeEntry   `json:"entries"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

type recipeService struct {
	pool *pgxpool.Pool
}

func NewRecipeService(pool *pgxpool.Pool) RecipeService {
	return &recipeService{pool: pool}
}

func (s *recipeService) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, is_active, created_at FROM products WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *recipeService) getProduct(ctx context.Context, id int) (*Product, error) {
	var p Product
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, is_active, created_at FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d not found", id)
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &p, nil
}

const recipeEntryQuery = `
	SELECT r.id, r.product_id, r.material_id, m.name, m.unit_cost, r.quantity_consumed
	FROM recipe_entries r
	JOIN materials m ON m.id = r.material_id`

func scanRecipeEntry(row pgx.Row) (*RecipeEntry, error) {
	var e RecipeEntry
	err := row.Scan(&e.ID, &e.ProductID, &e.MaterialID, &e.MaterialName,
		&e.MaterialUnitCost, &e.QuantityConsumed)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *recipeService) GetRecipe(ctx context.Context, productID int) ([]RecipeEntry, error) {
	rows, err := s.pool.Query(ctx,
		recipeEntryQuery+` WHERE r.product_id = $1 ORDER BY m.name`, productID)
	if err != nil {
		return nil, fmt.Errorf("get recipe for product %d: %w", productID, err)
	}
	defer rows.Close()

	var entries []RecipeEntry
	for rows.Next() {
		e, err := scanRecipeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (s *recipeService) AddEntry(ctx context.Context, productID, materialID int, quantity decimal.Decimal) (*RecipeEntry, error) {
	if quantity.IsZero() || quantity.IsNegative() {
		return nil, fmt.Errorf("recipe quantity must be positive, got %s", quantity)
	}

	var entryID int
	err := s.pool.QueryRow(ctx, `
		INSERT INTO recipe_entries (product_id, material_id, quantity_consumed)
		VALUES ($1, $2, $3) RETURNING id`,
		productID, materialID, quantity,
	).Scan(&entryID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("product %d already uses material %d; edit the existing entry instead", productID, materialID)
		}
		return nil, fmt.Errorf("add recipe entry: %w", err)
	}

	return scanRecipeEntry(s.pool.QueryRow(ctx, recipeEntryQuery+` WHERE r.id = $1`, entryID))
}

func (s *recipeService) UpdateEntry(ctx context.Context, entryID int, quantity decimal.Decimal) (*RecipeEntry, error) {
	if quantity.IsZero() || quantity.IsNegative() {
		return nil, fmt.Errorf("recipe quantity must be positive, got %s", quantity)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE recipe_entries SET quantity_consumed = $1 WHERE id = $2`, quantity, entryID)
	if err != nil {
		return nil, fmt.Errorf("update recipe entry %d: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("recipe entry %d not found", entryID)
	}

	return scanRecipeEntry(s.pool.QueryRow(ctx, recipeEntryQuery+` WHERE r.id = $1`, entryID))
}

func (s *recipeService) DeleteEntry(ctx context.Context, entryID int) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM recipe_entries WHERE id = $1`, entryID)
	if err != nil {
		return fmt.Errorf("delete recipe entry %d: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recipe entry %d not found", entryID)
	}
	return nil
}

func (s *recipeService) CostReport(ctx context.Context, productID int) (*ProductCostReport, error) {
	product, err := s.getProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	entries, err := s.GetRecipe(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &ProductCostReport{
		Product:   *product,
		Entries:   entries,
		TotalCost: ProductCost(entries),
	}, nil
}
