package core

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Summary is the dashboard aggregate: money in, money out and the most
// recent movements of each kind.
type Summary struct {
	TotalSales      decimal.Decimal `json:"total_sales"`
	TotalPurchases  decimal.Decimal `json:"total_purchases"`
	TotalDeliveries decimal.Decimal `json:"total_deliveries"`
	Profit          decimal.Decimal `json:"profit"`

	RecentSales      []Sale         `json:"recent_sales"`
	RecentPurchases  []Purchase     `json:"recent_purchases"`
	RecentDeliveries []DeliveryCost `json:"recent_deliveries"`
}

// ReportingService aggregates data across the other services for the
// dashboard and the spreadsheet export.
type ReportingService interface {
	// Summarize computes overall totals and the five most recent records of
	// each movement type. Profit is sales minus purchases minus deliveries.
	Summarize(ctx context.Context) (*Summary, error)

	// ExportHistory renders the full movement history as an XLSX workbook
	// with one sheet per record type.
	ExportHistory(ctx context.Context) ([]byte, error)
}

type reportingService struct {
	pool         *pgxpool.Pool
	purchases    PurchaseService
	sales        SalesService
	installments InstallmentService
}

func NewReportingService(pool *pgxpool.Pool, purchases PurchaseService, sales SalesService, installments InstallmentService) ReportingService {
	return &reportingService{pool: pool, purchases: purchases, sales: sales, installments: installments}
}

const recentLimit = 5

func (s *reportingService) Summarize(ctx context.Context) (*Summary, error) {
	summary := &Summary{}

	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE((SELECT SUM(total_value) FROM sales), 0),
		       COALESCE((SELECT SUM(total_value) FROM purchases), 0),
		       COALESCE((SELECT SUM(value) FROM delivery_costs), 0)`,
	).Scan(&summary.TotalSales, &summary.TotalPurchases, &summary.TotalDeliveries)
	if err != nil {
		return nil, fmt.Errorf("summarize totals: %w", err)
	}
	summary.Profit = summary.TotalSales.Sub(summary.TotalPurchases).Sub(summary.TotalDeliveries)

	if summary.RecentSales, err = s.sales.ListSales(ctx, recentLimit); err != nil {
		return nil, err
	}
	if summary.RecentPurchases, err = s.purchases.ListPurchases(ctx, recentLimit); err != nil {
		return nil, err
	}
	if summary.RecentDeliveries, err = s.sales.ListDeliveryCosts(ctx, recentLimit); err != nil {
		return nil, err
	}
	return summary, nil
}

const historyLimit = 10000

const dateLayout = "02/01/2006"

func (s *reportingService) ExportHistory(ctx context.Context) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sales, err := s.sales.ListSales(ctx, historyLimit)
	if err != nil {
		return nil, err
	}
	salesSheet := f.GetSheetName(0)
	if err := f.SetSheetName(salesSheet, "Vendas"); err != nil {
		return nil, fmt.Errorf("rename sales sheet: %w", err)
	}
	writeHeader(f, "Vendas", []string{"Data", "Produto", "Quantidade", "Valor Total"})
	for i, sale := range sales {
		row := i + 2
		setRow(f, "Vendas", row,
			sale.SaleDate.Format(dateLayout), sale.Product, sale.Quantity,
			decimalCell(sale.TotalValue))
	}

	purchases, err := s.purchases.ListPurchases(ctx, historyLimit)
	if err != nil {
		return nil, err
	}
	if _, err := f.NewSheet("Compras"); err != nil {
		return nil, fmt.Errorf("create purchases sheet: %w", err)
	}
	writeHeader(f, "Compras", []string{"Data", "Fornecedor", "Descrição", "Parcelas", "Valor Total"})
	for i, p := range purchases {
		row := i + 2
		setRow(f, "Compras", row,
			p.PurchaseDate.Format(dateLayout), p.SupplierName, p.Description,
			p.InstallmentCount, decimalCell(p.TotalValue))
	}

	deliveries, err := s.sales.ListDeliveryCosts(ctx, historyLimit)
	if err != nil {
		return nil, err
	}
	if _, err := f.NewSheet("Entregas"); err != nil {
		return nil, fmt.Errorf("create deliveries sheet: %w", err)
	}
	writeHeader(f, "Entregas", []string{"Data", "Descrição", "Valor"})
	for i, dc := range deliveries {
		row := i + 2
		setRow(f, "Entregas", row,
			dc.CostDate.Format(dateLayout), dc.Description, decimalCell(dc.Value))
	}

	installments, err := s.installments.ListPayables(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := f.NewSheet("Parcelas"); err != nil {
		return nil, fmt.Errorf("create installments sheet: %w", err)
	}
	writeHeader(f, "Parcelas", []string{"Vencimento", "Compra", "Parcela", "Valor", "Status"})
	for i, ins := range installments {
		row := i + 2
		setRow(f, "Parcelas", row,
			ins.DueDate.Format(dateLayout), ins.PurchaseID,
			fmt.Sprintf("%d/%d", ins.SequenceNumber, ins.TotalCount),
			decimalCell(ins.Amount), string(ins.Status))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, titles []string) {
	for i, title := range titles {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
}

func setRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, v)
	}
}

// decimalCell converts a decimal to float64 so spreadsheet consumers get a
// numeric cell. Export precision loss past two decimals is acceptable here.
func decimalCell(d decimal.Decimal) float64 {
	v, _ := d.Float64()
	return v
}
