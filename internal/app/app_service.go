package app

import (
	"context"
	"fmt"
	"time"

	"giftbox-manager/internal/core"
	"giftbox-manager/internal/lookup"

	"github.com/shopspring/decimal"
)

type appService struct {
	inventory    core.InventoryService
	purchases    core.PurchaseService
	installments core.InstallmentService
	recipes      core.RecipeService
	sales        core.SalesService
	reporting    core.ReportingService
	users        core.UserService
	cep          *lookup.CEPClient
	registry     *lookup.RegistryClient
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	inventory core.InventoryService,
	purchases core.PurchaseService,
	installments core.InstallmentService,
	recipes core.RecipeService,
	sales core.SalesService,
	reporting core.ReportingService,
	users core.UserService,
	cep *lookup.CEPClient,
	registry *lookup.RegistryClient,
) ApplicationService {
	return &appService{
		inventory:    inventory,
		purchases:    purchases,
		installments: installments,
		recipes:      recipes,
		sales:        sales,
		reporting:    reporting,
		users:        users,
		cep:          cep,
		registry:     registry,
	}
}

const requestDateLayout = "2006-01-02"

// parseDate parses a YYYY-MM-DD form value; empty means now.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(requestDateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

// parseAmount parses a decimal form value; empty means zero.
func parseAmount(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q", field, value)
	}
	return d, nil
}

func (s *appService) Dashboard(ctx context.Context) (*DashboardResult, error) {
	summary, err := s.reporting.Summarize(ctx)
	if err != nil {
		return nil, err
	}
	return &DashboardResult{Summary: summary}, nil
}

func (s *appService) Login(ctx context.Context, username, password string) (*core.User, error) {
	return s.users.Authenticate(ctx, username, password)
}

func (s *appService) GetUser(ctx context.Context, id int) (*core.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *appService) ListMaterials(ctx context.Context) (*MaterialListResult, error) {
	materials, err := s.inventory.ListMaterials(ctx)
	if err != nil {
		return nil, err
	}
	return &MaterialListResult{Materials: materials}, nil
}

func (s *appService) materialInput(req MaterialRequest) (core.MaterialInput, error) {
	stock, err := parseAmount("stock quantity", req.StockQuantity)
	if err != nil {
		return core.MaterialInput{}, err
	}
	cost, err := parseAmount("unit cost", req.UnitCost)
	if err != nil {
		return core.MaterialInput{}, err
	}
	return core.MaterialInput{
		Name:          req.Name,
		UnitOfMeasure: core.MeasurementUnit(req.UnitOfMeasure),
		StockQuantity: stock,
		UnitCost:      cost,
		Supplier:      req.Supplier,
	}, nil
}

func (s *appService) CreateMaterial(ctx context.Context, req MaterialRequest) (*core.Material, error) {
	input, err := s.materialInput(req)
	if err != nil {
		return nil, err
	}
	return s.inventory.CreateMaterial(ctx, input)
}

func (s *appService) UpdateMaterial(ctx context.Context, id int, req MaterialRequest) (*core.Material, error) {
	input, err := s.materialInput(req)
	if err != nil {
		return nil, err
	}
	return s.inventory.UpdateMaterial(ctx, id, input)
}

func (s *appService) DeleteMaterial(ctx context.Context, id int) error {
	return s.inventory.DeleteMaterial(ctx, id)
}

func (s *appService) MatchMaterials(ctx context.Context, name string) ([]core.MaterialMatch, error) {
	return s.inventory.FindMatches(ctx, name, core.DefaultMatchThreshold)
}

func (s *appService) ListPurchases(ctx context.Context, limit int) (*PurchaseListResult, error) {
	purchases, err := s.purchases.ListPurchases(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &PurchaseListResult{Purchases: purchases}, nil
}

func (s *appService) GetPurchase(ctx context.Context, id int) (*core.Purchase, error) {
	return s.purchases.GetPurchase(ctx, id)
}

func (s *appService) CreatePurchase(ctx context.Context, req CreatePurchaseRequest) (*core.Purchase, error) {
	date, err := parseDate(req.PurchaseDate)
	if err != nil {
		return nil, err
	}
	total, err := parseAmount("purchase total", req.TotalValue)
	if err != nil {
		return nil, err
	}

	input := core.PurchaseInput{
		PurchaseDate:     date,
		TotalValue:       total,
		Description:      req.Description,
		SupplierName:     req.SupplierName,
		DocumentNumber:   req.DocumentNumber,
		InstallmentCount: req.InstallmentCount,
	}
	for _, line := range req.Items {
		qty, err := parseAmount("quantity", line.Quantity)
		if err != nil {
			return nil, err
		}
		price, err := parseAmount("unit price", line.UnitPrice)
		if err != nil {
			return nil, err
		}
		input.Items = append(input.Items, core.PurchaseItemInput{
			Name:      line.Name,
			Quantity:  qty,
			UnitPrice: price,
		})
	}
	return s.purchases.CreatePurchase(ctx, input)
}

func (s *appService) UpdatePurchase(ctx context.Context, id int, req UpdatePurchaseRequest) (*core.Purchase, error) {
	date, err := parseDate(req.PurchaseDate)
	if err != nil {
		return nil, err
	}
	total, err := parseAmount("purchase total", req.TotalValue)
	if err != nil {
		return nil, err
	}
	return s.purchases.UpdatePurchase(ctx, id, core.PurchaseUpdate{
		PurchaseDate:     date,
		TotalValue:       total,
		Description:      req.Description,
		SupplierName:     req.SupplierName,
		InstallmentCount: req.InstallmentCount,
	})
}

func (s *appService) DeletePurchase(ctx context.Context, id int) error {
	return s.purchases.DeletePurchase(ctx, id)
}

func (s *appService) ImportDocument(ctx context.Context, data []byte, installmentCount int) (*core.ImportOutcome, error) {
	return s.purchases.ImportDocument(ctx, data, installmentCount)
}

func (s *appService) ConfirmLineMatch(ctx context.Context, lineID int, materialID *int) (*core.Material, error) {
	return s.purchases.ConfirmLineMatch(ctx, lineID, materialID)
}

func (s *appService) ListPayables(ctx context.Context) (*InstallmentListResult, error) {
	installments, err := s.installments.ListPayables(ctx)
	if err != nil {
		return nil, err
	}
	return &InstallmentListResult{Installments: installments}, nil
}

func (s *appService) ListUpcomingInstallments(ctx context.Context, days int) (*InstallmentListResult, error) {
	installments, err := s.installments.ListUpcoming(ctx, days)
	if err != nil {
		return nil, err
	}
	return &InstallmentListResult{Installments: installments}, nil
}

func (s *appService) MarkInstallmentPaid(ctx context.Context, id int) (*core.Installment, error) {
	return s.installments.MarkPaid(ctx, id)
}

func (s *appService) MarkInstallmentPending(ctx context.Context, id int) (*core.Installment, error) {
	return s.installments.MarkPending(ctx, id)
}

func (s *appService) ListProducts(ctx context.Context) ([]core.Product, error) {
	return s.recipes.ListProducts(ctx)
}

func (s *appService) GetRecipe(ctx context.Context, productID int) ([]core.RecipeEntry, error) {
	return s.recipes.GetRecipe(ctx, productID)
}

func (s *appService) AddRecipeEntry(ctx context.Context, req RecipeEntryRequest) (*core.RecipeEntry, error) {
	qty, err := parseAmount("recipe quantity", req.Quantity)
	if err != nil {
		return nil, err
	}
	return s.recipes.AddEntry(ctx, req.ProductID, req.MaterialID, qty)
}

func (s *appService) UpdateRecipeEntry(ctx context.Context, entryID int, quantity string) (*core.RecipeEntry, error) {
	qty, err := parseAmount("recipe quantity", quantity)
	if err != nil {
		return nil, err
	}
	return s.recipes.UpdateEntry(ctx, entryID, qty)
}

func (s *appService) DeleteRecipeEntry(ctx context.Context, entryID int) error {
	return s.recipes.DeleteEntry(ctx, entryID)
}

func (s *appService) ProductCost(ctx context.Context, productID int) (*core.ProductCostReport, error) {
	return s.recipes.CostReport(ctx, productID)
}

func (s *appService) ListSales(ctx context.Context, limit int) (*SaleListResult, error) {
	sales, err := s.sales.ListSales(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &SaleListResult{Sales: sales}, nil
}

func (s *appService) CreateSale(ctx context.Context, req SaleRequest) (*core.Sale, error) {
	date, err := parseDate(req.SaleDate)
	if err != nil {
		return nil, err
	}
	total, err := parseAmount("sale total", req.TotalValue)
	if err != nil {
		return nil, err
	}
	return s.sales.CreateSale(ctx, core.SaleInput{
		SaleDate:   date,
		ProductID:  req.ProductID,
		Product:    req.Product,
		Quantity:   req.Quantity,
		TotalValue: total,
	})
}

func (s *appService) DeleteSale(ctx context.Context, id int) error {
	return s.sales.DeleteSale(ctx, id)
}

func (s *appService) ListDeliveryCosts(ctx context.Context, limit int) (*DeliveryCostListResult, error) {
	costs, err := s.sales.ListDeliveryCosts(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &DeliveryCostListResult{Costs: costs}, nil
}

func (s *appService) CreateDeliveryCost(ctx context.Context, req DeliveryCostRequest) (*core.DeliveryCost, error) {
	date, err := parseDate(req.CostDate)
	if err != nil {
		return nil, err
	}
	value, err := parseAmount("delivery cost", req.Value)
	if err != nil {
		return nil, err
	}
	return s.sales.CreateDeliveryCost(ctx, core.DeliveryCostInput{
		CostDate:    date,
		Description: req.Description,
		Value:       value,
	})
}

func (s *appService) DeleteDeliveryCost(ctx context.Context, id int) error {
	return s.sales.DeleteDeliveryCost(ctx, id)
}

func (s *appService) ExportHistory(ctx context.Context) ([]byte, error) {
	return s.reporting.ExportHistory(ctx)
}

func (s *appService) LookupCEP(ctx context.Context, cep string) (*LookupCEPResult, error) {
	res := s.cep.Lookup(ctx, cep)
	return &LookupCEPResult{Success: res.Success, Message: res.Message, Address: res.Address}, nil
}

func (s *appService) FetchDocumentByKey(ctx context.Context, accessKey string) (*FetchDocumentResult, error) {
	res := s.registry.Fetch(ctx, accessKey)
	return &FetchDocumentResult{
		Success:  res.Success,
		Message:  res.Message,
		Document: res.Document,
	}, nil
}
