package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"giftbox-manager/internal/app"
	"giftbox-manager/internal/core"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:] — the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	switch args[0] {
	case "import", "imp", "i":
		if len(args) < 2 {
			log.Fatal("Usage: app import <file.xml|file.html> [installments]")
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			log.Fatalf("Failed to read %s: %v", args[1], err)
		}
		installments := 0
		if len(args) > 2 {
			if installments, err = strconv.Atoi(args[2]); err != nil {
				log.Fatalf("Invalid installment count %q", args[2])
			}
		}
		outcome, err := svc.ImportDocument(ctx, data, installments)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		printImportOutcome(outcome)

	case "stock", "st":
		result, err := svc.ListMaterials(ctx)
		if err != nil {
			log.Fatalf("Failed to list materials: %v", err)
		}
		printStock(result)

	case "payables", "pay":
		result, err := svc.ListPayables(ctx)
		if err != nil {
			log.Fatalf("Failed to list payables: %v", err)
		}
		printPayables(result)

	case "summary", "sum":
		result, err := svc.Dashboard(ctx)
		if err != nil {
			log.Fatalf("Failed to build summary: %v", err)
		}
		printSummary(result)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: import, stock, payables, summary", args[0])
	}
}

func printImportOutcome(outcome *core.ImportOutcome) {
	if outcome.Purchase == nil {
		fmt.Fprintln(os.Stderr, "Document could not be parsed:", outcome.Message)
		os.Exit(1)
	}

	p := outcome.Purchase
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  IMPORTED PURCHASE #%d\n", p.ID)
	fmt.Printf("  Supplier : %s\n", p.SupplierName)
	fmt.Printf("  Document : %s\n", p.DocumentNumber)
	fmt.Printf("  Total    : R$ %s  (%d installments)\n", p.TotalValue.StringFixed(2), p.InstallmentCount)
	fmt.Println(strings.Repeat("=", 62))

	for _, line := range outcome.Lines {
		fmt.Printf("  %-40s %8s x %10s\n",
			truncate(line.Item.CleanName, 40),
			line.Item.Quantity.String(), line.Item.UnitPrice.StringFixed(2))
		switch {
		case line.AutoLinked != nil:
			fmt.Printf("    → applied to existing material %q\n", line.AutoLinked.Name)
		case line.Created != nil:
			fmt.Printf("    → new material %q created (%s)\n", line.Created.Name, line.Created.UnitOfMeasure)
		default:
			fmt.Printf("    → needs confirmation, candidates:\n")
			for _, c := range line.Candidates {
				fmt.Printf("        [%d] %s (%.0f%%)\n", c.Material.ID, c.Material.Name, c.Score*100)
			}
		}
	}
	fmt.Println(strings.Repeat("=", 62))
}

func printStock(result *app.MaterialListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 78))
	fmt.Printf("  %-36s %-12s %12s %12s\n", "MATERIAL", "UNIT", "STOCK", "UNIT COST")
	fmt.Println(strings.Repeat("-", 78))
	for _, m := range result.Materials {
		fmt.Printf("  %-36s %-12s %12s %12s\n",
			truncate(m.Name, 36), m.UnitOfMeasure, m.StockQuantity.String(), m.UnitCost.StringFixed(2))
	}
	fmt.Println(strings.Repeat("=", 78))
	fmt.Printf("  %d materials\n", len(result.Materials))
}

func printPayables(result *app.InstallmentListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-12s %-10s %-8s %12s %10s\n", "DUE", "PURCHASE", "SEQ", "AMOUNT", "STATUS")
	fmt.Println(strings.Repeat("-", 62))
	for _, ins := range result.Installments {
		fmt.Printf("  %-12s #%-9d %2d/%-5d %12s %10s\n",
			ins.DueDate.Format("02/01/2006"), ins.PurchaseID,
			ins.SequenceNumber, ins.TotalCount, ins.Amount.StringFixed(2), ins.Status)
	}
	fmt.Println(strings.Repeat("=", 62))
}

func printSummary(result *app.DashboardResult) {
	s := result.Summary
	fmt.Println()
	fmt.Println(strings.Repeat("=", 42))
	fmt.Printf("  %-20s R$ %12s\n", "Sales", s.TotalSales.StringFixed(2))
	fmt.Printf("  %-20s R$ %12s\n", "Purchases", s.TotalPurchases.StringFixed(2))
	fmt.Printf("  %-20s R$ %12s\n", "Deliveries", s.TotalDeliveries.StringFixed(2))
	fmt.Println(strings.Repeat("-", 42))
	fmt.Printf("  %-20s R$ %12s\n", "Profit", s.Profit.StringFixed(2))
	fmt.Println(strings.Repeat("=", 42))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
