package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"podcast-storefront/internal/config"
	"podcast-storefront/internal/db"
	"podcast-storefront/internal/logging"
	catalogrepo "podcast-storefront/internal/repository/catalog"
	customerrepo "podcast-storefront/internal/repository/customer"
	tokenrepo "podcast-storefront/internal/repository/token"
	"podcast-storefront/internal/seed"
	catalogsvc "podcast-storefront/internal/service/catalog"
	customersvc "podcast-storefront/internal/service/customer"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	logger = logger.Named("seed")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	catalog := catalogsvc.New(catalogrepo.NewPostgres(pool, logger))
	customers := customersvc.New(customerrepo.NewPostgres(pool, logger), tokenrepo.NewPostgres(pool))
	if err := seed.Apply(ctx, catalog, customers); err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}

	logger.Info("seed applied", zap.String("demo_email", seed.DemoEmail))
}
