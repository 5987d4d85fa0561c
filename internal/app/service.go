package app

import (
	"context"

	"giftbox-manager/internal/core"
)

// ApplicationService is the single interface all UI adapters (Web, CLI) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no HTML, and no display logic of any kind.
type ApplicationService interface {
	// Dashboard returns overall totals, profit and the most recent movements.
	Dashboard(ctx context.Context) (*DashboardResult, error)

	// Login verifies credentials and returns the matching user.
	Login(ctx context.Context, username, password string) (*core.User, error)
	GetUser(ctx context.Context, id int) (*core.User, error)

	ListMaterials(ctx context.Context) (*MaterialListResult, error)
	CreateMaterial(ctx context.Context, req MaterialRequest) (*core.Material, error)
	UpdateMaterial(ctx context.Context, id int, req MaterialRequest) (*core.Material, error)
	DeleteMaterial(ctx context.Context, id int) error

	// MatchMaterials scores the catalog against a candidate name.
	MatchMaterials(ctx context.Context, name string) ([]core.MaterialMatch, error)

	ListPurchases(ctx context.Context, limit int) (*PurchaseListResult, error)
	GetPurchase(ctx context.Context, id int) (*core.Purchase, error)
	CreatePurchase(ctx context.Context, req CreatePurchaseRequest) (*core.Purchase, error)
	UpdatePurchase(ctx context.Context, id int, req UpdatePurchaseRequest) (*core.Purchase, error)
	DeletePurchase(ctx context.Context, id int) error

	// ImportDocument parses an uploaded fiscal document and records the
	// purchase, resolving lines against the material catalog.
	ImportDocument(ctx context.Context, data []byte, installmentCount int) (*core.ImportOutcome, error)

	// ConfirmLineMatch links an imported line to a material (nil creates one).
	ConfirmLineMatch(ctx context.Context, lineID int, materialID *int) (*core.Material, error)

	ListPayables(ctx context.Context) (*InstallmentListResult, error)
	ListUpcomingInstallments(ctx context.Context, days int) (*InstallmentListResult, error)
	MarkInstallmentPaid(ctx context.Context, id int) (*core.Installment, error)
	MarkInstallmentPending(ctx context.Context, id int) (*core.Installment, error)

	ListProducts(ctx context.Context) ([]core.Product, error)
	GetRecipe(ctx context.Context, productID int) ([]core.RecipeEntry, error)
	AddRecipeEntry(ctx context.Context, req RecipeEntryRequest) (*core.RecipeEntry, error)
	UpdateRecipeEntry(ctx context.Context, entryID int, quantity string) (*core.RecipeEntry, error)
	DeleteRecipeEntry(ctx context.Context, entryID int) error

	// ProductCost prices a product's bill of materials at current costs.
	ProductCost(ctx context.Context, productID int) (*core.ProductCostReport, error)

	ListSales(ctx context.Context, limit int) (*SaleListResult, error)
	CreateSale(ctx context.Context, req SaleRequest) (*core.Sale, error)
	DeleteSale(ctx context.Context, id int) error

	ListDeliveryCosts(ctx context.Context, limit int) (*DeliveryCostListResult, error)
	CreateDeliveryCost(ctx context.Context, req DeliveryCostRequest) (*core.DeliveryCost, error)
	DeleteDeliveryCost(ctx context.Context, id int) error

	// ExportHistory renders the movement history as an XLSX workbook.
	ExportHistory(ctx context.Context) ([]byte, error)

	// LookupCEP resolves a Brazilian postal code to an address.
	LookupCEP(ctx context.Context, cep string) (*LookupCEPResult, error)

	// FetchDocumentByKey tries to download a fiscal document XML by its
	// 44-digit access key. Failure is reported in the result, not as an
	// error, so callers can fall back to manual upload.
	FetchDocumentByKey(ctx context.Context, accessKey string) (*FetchDocumentResult, error)
}
