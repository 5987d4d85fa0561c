package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"giftbox-manager/internal/adapters/cli"
	"giftbox-manager/internal/app"
	"giftbox-manager/internal/core"
	"giftbox-manager/internal/db"
	"giftbox-manager/internal/lookup"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: app <import|stock|payables|summary> [args]")
		os.Exit(2)
	}

	logger := zap.NewNop()
	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	inventory := core.NewInventoryService(pool)
	purchases := core.NewPurchaseService(pool, inventory)
	installments := core.NewInstallmentService(pool)
	recipes := core.NewRecipeService(pool)
	sales := core.NewSalesService(pool)
	reporting := core.NewReportingService(pool, purchases, sales, installments)
	users := core.NewUserService(pool)

	cep := lookup.NewCEPClient(os.Getenv("VIACEP_BASE_URL"), logger)
	registry := lookup.NewRegistryClient(os.Getenv("REGISTRY_BASE_URL"), logger)

	svc := app.NewAppService(inventory, purchases, installments, recipes, sales, reporting, users, cep, registry)

	cli.Run(ctx, svc, os.Args[1:])
}
