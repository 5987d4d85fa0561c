package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"giftbox-manager/internal/docparse"
)

// ErrDocumentImported is returned when a fiscal document with the same
// identifying key has already been imported.
var ErrDocumentImported = errors.New("document already imported")

// PurchaseService manages supplier purchases, their line items and the
// installment schedule derived from them.
type PurchaseService interface {
	ListPurchases(ctx context.Context, limit int) ([]Purchase, error)
	GetPurchase(ctx context.Context, id int) (*Purchase, error)
	CreatePurchase(ctx context.Context, input PurchaseInput) (*Purchase, error)

	// UpdatePurchase rewrites the editable header fields. When the total or
	// the installment count changes the whole schedule is regenerated and any
	// paid marks on the old schedule are discarded.
	UpdatePurchase(ctx context.Context, id int, input PurchaseUpdate) (*Purchase, error)
	DeletePurchase(ctx context.Context, id int) error

	// ImportDocument parses a fiscal document (NF-e XML or receipt HTML),
	// records the purchase with its extracted lines and installment schedule,
	// and resolves each line against the material catalog. Exact name matches
	// are applied to stock immediately; unknown items create a new material;
	// fuzzy matches are left unlinked with candidates for user confirmation.
	ImportDocument(ctx context.Context, data []byte, installmentCount int) (*ImportOutcome, error)

	// ConfirmLineMatch links a still-unlinked imported line to a material and
	// applies it to stock. A nil materialID creates a new material named
	// after the line.
	ConfirmLineMatch(ctx context.Context, lineID int, materialID *int) (*Material, error)
}

type purchaseService struct {
	pool      *pgxpool.Pool
	inventory InventoryService
}

func NewPurchaseService(pool *pgxpool.Pool, inventory InventoryService) PurchaseService {
	return &purchaseService{pool: pool, inventory: inventory}
}

// PurchaseInput describes a manually entered purchase.
type PurchaseInput struct {
	PurchaseDate     time.Time
	TotalValue       decimal.Decimal
	Description      string
	SupplierName     string
	DocumentNumber   string
	InstallmentCount int
	Items            []PurchaseItemInput
}

type PurchaseItemInput struct {
	Name      string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// PurchaseUpdate holds the editable header fields of a purchase.
type PurchaseUpdate struct {
	PurchaseDate     time.Time
	TotalValue       decimal.Decimal
	Description      string
	SupplierName     string
	InstallmentCount int
}

// ImportedLine reports how one extracted line was resolved.
type ImportedLine struct {
	Item       LineItem        `json:"item"`
	AutoLinked *Material       `json:"auto_linked,omitempty"` // exact match, already applied to stock
	Created    *Material       `json:"created,omitempty"`     // no match, created fresh and applied
	Candidates []MaterialMatch `json:"candidates,omitempty"`  // fuzzy matches awaiting confirmation

	// StockSkipped is set when the material already received an application
	// from this purchase (a duplicate line in the document). The line is
	// linked for traceability but its quantity is not folded into stock.
	StockSkipped bool `json:"stock_skipped,omitempty"`
}

// ImportOutcome is the result of a document import.
type ImportOutcome struct {
	Purchase *Purchase      `json:"purchase,omitempty"`
	Message  string         `json:"message,omitempty"`
	Lines    []ImportedLine `json:"lines,omitempty"`
}

func (s *purchaseService) ListPurchases(ctx context.Context, limit int) ([]Purchase, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, purchase_date, total_value, description, supplier_name,
		       document_number, installment_count, import_key, created_at
		FROM purchases ORDER BY purchase_date DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.PurchaseDate, &p.TotalValue, &p.Description,
			&p.SupplierName, &p.DocumentNumber, &p.InstallmentCount, &p.ImportKey, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

func (s *purchaseService) GetPurchase(ctx context.Context, id int) (*Purchase, error) {
	var p Purchase
	err := s.pool.QueryRow(ctx, `
		SELECT id, purchase_date, total_value, description, supplier_name,
		       document_number, installment_count, import_key, created_at
		FROM purchases WHERE id = $1`, id,
	).Scan(&p.ID, &p.PurchaseDate, &p.TotalValue, &p.Description,
		&p.SupplierName, &p.DocumentNumber, &p.InstallmentCount, &p.ImportKey, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase %d not found", id)
		}
		return nil, fmt.Errorf("get purchase %d: %w", id, err)
	}

	items, err := s.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Items = items
	return &p, nil
}

func (s *purchaseService) loadItems(ctx context.Context, purchaseID int) ([]LineItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, purchase_id, line_number, raw_name, clean_name,
		       quantity, unit_price, line_total, material_id
		FROM purchase_items WHERE purchase_id = $1 ORDER BY line_number`, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("load purchase %d items: %w", purchaseID, err)
	}
	defer rows.Close()

	var items []LineItem
	for rows.Next() {
		var it LineItem
		if err := rows.Scan(&it.ID, &it.PurchaseID, &it.LineNumber, &it.RawName, &it.CleanName,
			&it.Quantity, &it.UnitPrice, &it.LineTotal, &it.MaterialID); err != nil {
			return nil, fmt.Errorf("scan purchase item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *purchaseService) CreatePurchase(ctx context.Context, input PurchaseInput) (*Purchase, error) {
	if input.TotalValue.IsNegative() {
		return nil, fmt.Errorf("purchase total cannot be negative")
	}
	if input.PurchaseDate.IsZero() {
		input.PurchaseDate = time.Now()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := insertPurchase(ctx, tx, input, nil)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase: %w", err)
	}
	return s.GetPurchase(ctx, p.ID)
}

// insertPurchase writes the purchase header, its lines and its installment
// schedule inside the caller's transaction.
func insertPurchase(ctx context.Context, tx pgx.Tx, input PurchaseInput, importKey *string) (*Purchase, error) {
	var p Purchase
	err := tx.QueryRow(ctx, `
		INSERT INTO purchases (purchase_date, total_value, description, supplier_name,
		                       document_number, installment_count, import_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, purchase_date, total_value, description, supplier_name,
		          document_number, installment_count, import_key, created_at`,
		input.PurchaseDate, input.TotalValue, input.Description, input.SupplierName,
		input.DocumentNumber, input.InstallmentCount, importKey,
	).Scan(&p.ID, &p.PurchaseDate, &p.TotalValue, &p.Description,
		&p.SupplierName, &p.DocumentNumber, &p.InstallmentCount, &p.ImportKey, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDocumentImported
		}
		return nil, fmt.Errorf("insert purchase: %w", err)
	}

	for i, item := range input.Items {
		name := strings.TrimSpace(item.Name)
		lineTotal := item.Quantity.Mul(item.UnitPrice).Round(2)
		_, err := tx.Exec(ctx, `
			INSERT INTO purchase_items (purchase_id, line_number, raw_name, clean_name,
			                            quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			p.ID, i+1, item.Name, name, item.Quantity, item.UnitPrice, lineTotal)
		if err != nil {
			return nil, fmt.Errorf("insert purchase line %d: %w", i+1, err)
		}
	}

	if err := insertSchedule(ctx, tx, p.ID, input.TotalValue, input.PurchaseDate, input.InstallmentCount); err != nil {
		return nil, err
	}
	return &p, nil
}

func insertSchedule(ctx context.Context, tx pgx.Tx, purchaseID int, total decimal.Decimal, purchaseDate time.Time, count int) error {
	for _, sched := range BuildSchedule(total, purchaseDate, count) {
		_, err := tx.Exec(ctx, `
			INSERT INTO installments (purchase_id, sequence_number, total_count, amount, due_date)
			VALUES ($1, $2, $3, $4, $5)`,
			purchaseID, sched.SequenceNumber, count, sched.Amount, sched.DueDate)
		if err != nil {
			return fmt.Errorf("insert installment %d/%d: %w", sched.SequenceNumber, count, err)
		}
	}
	return nil
}

func (s *purchaseService) UpdatePurchase(ctx context.Context, id int, input PurchaseUpdate) (*Purchase, error) {
	if input.TotalValue.IsNegative() {
		return nil, fmt.Errorf("purchase total cannot be negative")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var prevTotal decimal.Decimal
	var prevCount int
	err = tx.QueryRow(ctx,
		`SELECT total_value, installment_count FROM purchases WHERE id = $1 FOR UPDATE`, id,
	).Scan(&prevTotal, &prevCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase %d not found", id)
		}
		return nil, fmt.Errorf("lock purchase %d: %w", id, err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE purchases
		SET purchase_date = $1, total_value = $2, description = $3,
		    supplier_name = $4, installment_count = $5
		WHERE id = $6`,
		input.PurchaseDate, input.TotalValue, input.Description,
		input.SupplierName, input.InstallmentCount, id)
	if err != nil {
		return nil, fmt.Errorf("update purchase %d: %w", id, err)
	}

	if !prevTotal.Equal(input.TotalValue) || prevCount != input.InstallmentCount {
		if _, err := tx.Exec(ctx, `DELETE FROM installments WHERE purchase_id = $1`, id); err != nil {
			return nil, fmt.Errorf("clear installments for purchase %d: %w", id, err)
		}
		if err := insertSchedule(ctx, tx, id, input.TotalValue, input.PurchaseDate, input.InstallmentCount); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase update: %w", err)
	}
	return s.GetPurchase(ctx, id)
}

func (s *purchaseService) DeletePurchase(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM purchases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete purchase %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("purchase %d not found", id)
	}
	return nil
}

func (s *purchaseService) ImportDocument(ctx context.Context, data []byte, installmentCount int) (*ImportOutcome, error) {
	parsed := docparse.Parse(data)
	if !parsed.Success {
		return &ImportOutcome{Message: parsed.Message}, nil
	}

	purchaseDate := time.Now()
	if !parsed.IssuedAt.IsZero() {
		purchaseDate = parsed.IssuedAt
	}

	input := PurchaseInput{
		PurchaseDate:     purchaseDate,
		TotalValue:       parsed.TotalValue,
		Description:      parsed.Describe(),
		SupplierName:     parsed.Supplier,
		DocumentNumber:   parsed.DocumentNumber,
		InstallmentCount: installmentCount,
	}
	for _, item := range parsed.Items {
		input.Items = append(input.Items, PurchaseItemInput{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	importKey := importKeyFor(parsed)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := insertPurchase(ctx, tx, input, &importKey)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit imported purchase: %w", err)
	}

	full, err := s.GetPurchase(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	outcome := &ImportOutcome{Purchase: full, Message: parsed.Message}
	skipped := 0
	for _, item := range full.Items {
		line, err := s.resolveLine(ctx, full, item)
		if err != nil {
			return nil, err
		}
		if line.StockSkipped {
			skipped++
		}
		outcome.Lines = append(outcome.Lines, line)
	}
	if skipped > 0 {
		note := fmt.Sprintf("%d linha(s) duplicada(s) no documento não entraram no estoque", skipped)
		if outcome.Message != "" {
			outcome.Message += "; " + note
		} else {
			outcome.Message = note
		}
	}
	return outcome, nil
}

// importKeyFor derives the idempotency key for a parsed document. Documents
// without a number cannot be deduplicated and get a random key.
func importKeyFor(parsed docparse.Result) string {
	if parsed.DocumentNumber != "" {
		return strings.ToLower(strings.TrimSpace(parsed.Supplier)) + "/" + parsed.DocumentNumber
	}
	return "adhoc/" + uuid.NewString()
}

// resolveLine matches one imported line against the catalog. Only exact
// matches and brand-new materials are applied automatically; anything fuzzy
// is left for the user to confirm.
func (s *purchaseService) resolveLine(ctx context.Context, p *Purchase, item LineItem) (ImportedLine, error) {
	line := ImportedLine{Item: item}

	matches, err := s.inventory.FindMatches(ctx, item.CleanName, DefaultMatchThreshold)
	if err != nil {
		return line, err
	}

	if len(matches) > 0 && matches[0].Score == 1.0 {
		m := matches[0].Material
		skipped, err := s.applyLine(ctx, p, item, m.ID)
		if err != nil {
			return line, err
		}
		applied, err := s.inventory.GetMaterial(ctx, m.ID)
		if err != nil {
			return line, err
		}
		line.AutoLinked = applied
		line.StockSkipped = skipped
		return line, nil
	}

	if len(matches) == 0 {
		created, err := s.createMaterialForLine(ctx, p, item)
		if err != nil {
			return line, err
		}
		line.Created = created
		return line, nil
	}

	line.Candidates = matches
	return line, nil
}

func (s *purchaseService) createMaterialForLine(ctx context.Context, p *Purchase, item LineItem) (*Material, error) {
	created, err := s.inventory.CreateMaterial(ctx, MaterialInput{
		Name:     item.CleanName,
		Supplier: p.SupplierName,
	})
	if err != nil {
		return nil, fmt.Errorf("create material for line %q: %w", item.CleanName, err)
	}
	if _, err := s.applyLine(ctx, p, item, created.ID); err != nil {
		return nil, err
	}
	return s.inventory.GetMaterial(ctx, created.ID)
}

// applyLine links an imported line to a material and folds it into the
// weighted-average ledger. It reports whether the stock application was
// skipped because this purchase already applied to the material.
func (s *purchaseService) applyLine(ctx context.Context, p *Purchase, item LineItem, materialID int) (bool, error) {
	skipped := false
	_, err := s.inventory.ApplyPurchase(ctx, p.ID, materialID, item.Quantity, item.UnitPrice, p.SupplierName, p.PurchaseDate)
	if err != nil {
		if !errors.Is(err, ErrAlreadyApplied) {
			return false, fmt.Errorf("apply line %q to material %d: %w", item.CleanName, materialID, err)
		}
		skipped = true
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE purchase_items SET material_id = $1 WHERE id = $2`, materialID, item.ID)
	if err != nil {
		return skipped, fmt.Errorf("link line %d to material %d: %w", item.ID, materialID, err)
	}
	return skipped, nil
}

func (s *purchaseService) ConfirmLineMatch(ctx context.Context, lineID int, materialID *int) (*Material, error) {
	var item LineItem
	err := s.pool.QueryRow(ctx, `
		SELECT id, purchase_id, line_number, raw_name, clean_name,
		       quantity, unit_price, line_total, material_id
		FROM purchase_items WHERE id = $1`, lineID,
	).Scan(&item.ID, &item.PurchaseID, &item.LineNumber, &item.RawName, &item.CleanName,
		&item.Quantity, &item.UnitPrice, &item.LineTotal, &item.MaterialID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase line %d not found", lineID)
		}
		return nil, fmt.Errorf("get purchase line %d: %w", lineID, err)
	}
	if item.MaterialID != nil {
		return nil, fmt.Errorf("purchase line %d is already linked to material %d", lineID, *item.MaterialID)
	}

	p, err := s.GetPurchase(ctx, item.PurchaseID)
	if err != nil {
		return nil, err
	}

	if materialID == nil {
		return s.createMaterialForLine(ctx, p, item)
	}
	if _, err := s.applyLine(ctx, p, item, *materialID); err != nil {
		return nil, err
	}
	return s.inventory.GetMaterial(ctx, *materialID)
}
