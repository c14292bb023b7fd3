package app

import (
	"context"
	"testing"
	"time"

	config "github.com/DRSN-tech/grocery-cart/internal/cfg"
	"github.com/DRSN-tech/grocery-cart/pkg/logger"
)

func TestNewApp_MemoryBackendStartsWithoutInfra(t *testing.T) {
	for _, key := range []string{"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB", "KAFKA_BROKERS"} {
		t.Setenv(key, "")
	}
	t.Setenv("CART_STORE", "memory")
	t.Setenv("COMMERCE_BASE_URL", "http://127.0.0.1:1")

	cfg, err := config.Load(logger.Nop{})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	a, err := NewApp(cfg, logger.Nop{})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if a.registry == nil || a.httpSrv == nil || a.grpcSrv == nil {
		t.Fatal("servers and registry must be built")
	}
	if a.outbox != nil {
		t.Fatal("outbox relay must be disabled in memory mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.closer.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	a.bgCancel()
}
