package main

import (
	"context"
	"net/http"
	"os"

	webAdapter "giftbox-manager/internal/adapters/web"
	"giftbox-manager/internal/app"
	"giftbox-manager/internal/core"
	"giftbox-manager/internal/db"
	"giftbox-manager/internal/lookup"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logger := newLogger()
	defer logger.Sync()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET environment variable not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
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

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, jwtSecret, logger)

	logger.Info("server starting", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}

func newLogger() *zap.Logger {
	var logger *zap.Logger
	var err error
	if os.Getenv("APP_ENV") == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic("logger init failed: " + err.Error())
	}
	return logger
}
