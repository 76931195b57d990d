package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"podcast-storefront/internal/config"
	"podcast-storefront/internal/db"
	"podcast-storefront/internal/events"
	"podcast-storefront/internal/httpserver"
	"podcast-storefront/internal/kv"
	"podcast-storefront/internal/logging"
	"podcast-storefront/internal/migrate"
	"podcast-storefront/internal/payment"
	"podcast-storefront/internal/payment/midtrans"
	catalogrepo "podcast-storefront/internal/repository/catalog"
	customerrepo "podcast-storefront/internal/repository/customer"
	orderrepo "podcast-storefront/internal/repository/order"
	tokenrepo "podcast-storefront/internal/repository/token"
	catalogsvc "podcast-storefront/internal/service/catalog"
	customersvc "podcast-storefront/internal/service/customer"
	ordersvc "podcast-storefront/internal/service/order"
	"podcast-storefront/internal/session"
)

const (
	sessionSweepEvery = time.Minute
	tokenPurgeEvery   = time.Hour
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	if err := migrate.Apply(ctx, dbpool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	snapshots, closeSnapshots, err := cartSnapshots(ctx, cfg, dbpool)
	if err != nil {
		logger.Fatal("init cart snapshots", zap.Error(err))
	}
	defer closeSnapshots()
	logger.Info("cart snapshots ready", zap.String("backend", cfg.CartStoreBackend))

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic, logger.Named("events"))
		logger.Info("order events enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}
	defer publisher.Close()

	orders := events.NewPublishingOrders(orderrepo.NewPostgres(dbpool, logger), publisher, logger)
	tokens := tokenrepo.NewPostgres(dbpool)
	customerService := customersvc.New(customerrepo.NewPostgres(dbpool, logger), tokens)
	catalogService := catalogsvc.New(catalogrepo.NewPostgres(dbpool, logger))
	orderService := ordersvc.New(orders, logger)

	if cfg.MidtransServerKey == "" {
		logger.Warn("MIDTRANS_SERVER_KEY is empty; checkout and notifications will fail")
	}
	hub := payment.NewHub()
	snap := midtrans.NewClient(midtrans.Config{
		ServerKey:  cfg.MidtransServerKey,
		Production: cfg.MidtransProduction,
		Timeout:    cfg.MidtransTimeout,
	})

	registry := session.NewRegistry(session.Config{
		Secret:  cfg.SessionSecret,
		MaxAge:  cfg.SessionMaxAge,
		IdleTTL: cfg.SessionIdleTTL,
		Secure:  cfg.SecureCookies,
	}, session.Deps{
		Snapshots: snapshots,
		Orders:    orders,
		Payments:  midtrans.NewProcessor(snap, hub, logger.Named("midtrans")),
		Logger:    logger.Named("session"),
	})
	defer registry.Close()
	go registry.Run(ctx, sessionSweepEvery)
	go purgeTokens(ctx, tokens, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CustomerSvc:       customerService,
		CatalogSvc:        catalogService,
		OrderSvc:          orderService,
		Sessions:          registry,
		Payments:          hub,
		MidtransServerKey: cfg.MidtransServerKey,
		AdminKey:          cfg.AdminKey,
		CORSOrigins:       cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}

func cartSnapshots(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) (kv.Store, func(), error) {
	switch cfg.CartStoreBackend {
	case config.BackendMemory:
		return kv.NewMemory(), func() {}, nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return kv.NewRedis(client, "storefront:", cfg.CartSnapshotTTL), func() { client.Close() }, nil
	default:
		return kv.NewPostgres(pool), func() {}, nil
	}
}

func purgeTokens(ctx context.Context, tokens tokenrepo.Repository, logger *zap.Logger) {
	ticker := time.NewTicker(tokenPurgeEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := tokens.DeleteExpired(ctx, now)
			if err != nil {
				logger.Warn("purge expired tokens", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("purged expired tokens", zap.Int64("count", n))
			}
		}
	}
}
