package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// MeasurementUnit is the fixed set of units a material can be tracked in.
type MeasurementUnit string

const (
	UnitPiece      MeasurementUnit = "unit"
	UnitMeter      MeasurementUnit = "meter"
	UnitCentimeter MeasurementUnit = "centimeter"
	UnitLiter      MeasurementUnit = "liter"
	UnitMilliliter MeasurementUnit = "milliliter"
	UnitKilogram   MeasurementUnit = "kg"
	UnitGram       MeasurementUnit = "gram"
	UnitPackage    MeasurementUnit = "package"
	UnitRoll       MeasurementUnit = "roll"
	UnitBox        MeasurementUnit = "box"
)

// Material is a tracked inventory input. Name is the unique key for exact
// matching; stock quantity and unit cost are maintained by the weighted-average
// ledger and must only be mutated through InventoryService.ApplyPurchase.
type Material struct {
	ID               int             `json:"id"`
	Name             string          `json:"name"`
	UnitOfMeasure    MeasurementUnit `json:"unit_of_measure"`
	StockQuantity    decimal.Decimal `json:"stock_quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	Supplier         string          `json:"supplier"`
	LastPurchaseDate *time.Time      `json:"last_purchase_date,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// LineItem is one extracted or hand-entered purchase line. Immutable once
// extracted; LineTotal is always derived as Quantity × UnitPrice.
type LineItem struct {
	ID         int             `json:"id"`
	PurchaseID int             `json:"purchase_id"`
	LineNumber int             `json:"line_number"`
	RawName    string          `json:"raw_name"`
	CleanName  string          `json:"clean_name"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	LineTotal  decimal.Decimal `json:"line_total"`
	MaterialID *int            `json:"material_id,omitempty"` // set once the line is linked to an inventory material
}

// Purchase is a supplier purchase, either imported from a fiscal document or
// entered manually. InstallmentCount == 0 means paid outright.
type Purchase struct {
	ID               int             `json:"id"`
	PurchaseDate     time.Time       `json:"purchase_date"`
	TotalValue       decimal.Decimal `json:"total_value"`
	Description      string          `json:"description"`
	SupplierName     string          `json:"supplier_name"`
	DocumentNumber   string          `json:"document_number"`
	InstallmentCount int             `json:"installment_count"`
	ImportKey        *string         `json:"-"` // idempotency key for document imports
	CreatedAt        time.Time       `json:"created_at"`
	Items            []LineItem      `json:"items,omitempty"`
}

type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "pending"
	InstallmentPaid    InstallmentStatus = "paid"
)

// Installment is one scheduled partial payment of a purchase, due on the
// fixed monthly anchor day.
type Installment struct {
	ID             int               `json:"id"`
	PurchaseID     int               `json:"purchase_id"`
	SequenceNumber int               `json:"sequence_number"`
	TotalCount     int               `json:"total_count"`
	Amount         decimal.Decimal   `json:"amount"`
	DueDate        time.Time         `json:"due_date"`
	Status         InstallmentStatus `json:"status"`
	PaidDate       *time.Time        `json:"paid_date,omitempty"`
}

// Product is a sellable box from the fixed catalog.
type Product struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// RecipeEntry maps one material requirement of a product. At most one entry
// exists per (product, material) pair.
type RecipeEntry struct {
	ID               int             `json:"id"`
	ProductID        int             `json:"product_id"`
	MaterialID       int             `json:"material_id"`
	MaterialName     string          `json:"material_name"`
	MaterialUnitCost decimal.Decimal `json:"material_unit_cost"`
	QuantityConsumed decimal.Decimal `json:"quantity_consumed"`
}

// Sale is a recorded box sale.
type Sale struct {
	ID         int             `json:"id"`
	SaleDate   time.Time       `json:"sale_date"`
	ProductID  *int            `json:"product_id,omitempty"`
	Product    string          `json:"product"`
	Quantity   int             `json:"quantity"`
	TotalValue decimal.Decimal `json:"total_value"`
	CreatedAt  time.Time       `json:"created_at"`
}

// DeliveryCost is a standalone shipping/delivery expense record.
type DeliveryCost struct {
	ID          int             `json:"id"`
	CostDate    time.Time       `json:"cost_date"`
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
	CreatedAt   time.Time       `json:"created_at"`
}

// MaterialMatch pairs a candidate material with its similarity score.
type MaterialMatch struct {
	Material Material `json:"material"`
	Score    float64  `json:"score"`
}

// User represents an authenticated system user.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
