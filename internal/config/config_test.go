package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.CartStoreBackend != BackendPostgres || cfg.KafkaTopic != "order-events" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("kafka must be disabled by default, got %v", cfg.KafkaBrokers)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("CART_STORE_BACKEND", "Redis")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("MIDTRANS_PRODUCTION", "true")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.HTTPAddr != ":9090" || cfg.CartStoreBackend != BackendRedis || !cfg.MidtransProduction {
		t.Fatalf("overrides not applied %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.ShutdownTimeout)
	}
}

func TestFromEnv_RejectsUnknownBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CART_STORE_BACKEND", "localstorage")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
