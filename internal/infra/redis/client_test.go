package redis

import (
	"context"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap/zaptest"

	"github.com/arklim/casting-agency/internal/infra/config"
)

func TestNewClientAgainstMiniredis(t *testing.T) {
	server := miniredis.RunT(t)
	port, err := strconv.Atoi(server.Port())
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}

	client, err := NewClient(context.Background(), config.RedisSettings{Host: server.Host(), Port: port}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if client.Addr() != server.Addr() {
		t.Fatalf("expected addr %s, got %s", server.Addr(), client.Addr())
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}

	registry := prometheus.NewRegistry()
	if err := client.RegisterPoolMetrics(registry); err != nil {
		t.Fatalf("RegisterPoolMetrics: %v", err)
	}
	if count, err := testutil.GatherAndCount(registry); err != nil || count != 4 {
		t.Fatalf("expected 4 pool gauges, got %d (%v)", count, err)
	}

	server.Close()
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatalf("expected health check to fail once redis is gone")
	}
}

func TestNewClientFailsWhenUnreachable(t *testing.T) {
	server := miniredis.RunT(t)
	port, _ := strconv.Atoi(server.Port())
	server.Close()

	if _, err := NewClient(context.Background(), config.RedisSettings{Host: server.Host(), Port: port}, nil); err == nil {
		t.Fatalf("expected error dialing a closed server")
	}
}
