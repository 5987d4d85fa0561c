package app

// MaterialRequest is the input for creating or updating a material. Decimal
// fields arrive as strings from forms and are parsed by the service.
type MaterialRequest struct {
	Name          string
	UnitOfMeasure string // empty means "classify from the name"
	StockQuantity string
	UnitCost      string
	Supplier      string
}

// CreatePurchaseRequest is the input for a manually entered purchase.
type CreatePurchaseRequest struct {
	PurchaseDate     string // YYYY-MM-DD, empty means today
	TotalValue       string
	Description      string
	SupplierName     string
	DocumentNumber   string
	InstallmentCount int
	Items            []PurchaseLineRequest
}

// PurchaseLineRequest is a single line within a CreatePurchaseRequest.
type PurchaseLineRequest struct {
	Name      string
	Quantity  string
	UnitPrice string
}

// UpdatePurchaseRequest is the input for editing a purchase header.
type UpdatePurchaseRequest struct {
	PurchaseDate     string // YYYY-MM-DD
	TotalValue       string
	Description      string
	SupplierName     string
	InstallmentCount int
}

// RecipeEntryRequest is the input for adding a material to a product recipe.
type RecipeEntryRequest struct {
	ProductID  int
	MaterialID int
	Quantity   string
}

// SaleRequest is the input for recording a sale.
type SaleRequest struct {
	SaleDate   string // YYYY-MM-DD, empty means today
	ProductID  *int
	Product    string
	Quantity   int
	TotalValue string
}

// DeliveryCostRequest is the input for recording a delivery expense.
type DeliveryCostRequest struct {
	CostDate    string // YYYY-MM-DD, empty means today
	Description string
	Value       string
}
