package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"marketDash/internal/modules/dashboard/domain"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "UPSTREAM_BASE_URL", "UPSTREAM_API_KEY", "UPSTREAM_TIMEOUT", "FORWARDER_BASE_URL", "FORWARDER_TIMEOUT", "KAFKA_BROKERS", "KAFKA_BROKER", "KAFKA_TOPIC", "SHUTDOWN_TIMEOUT", "RESOURCES_FILE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("unexpected port: %s", cfg.Server.Port)
	}
	if cfg.Upstream.BaseURL != "http://109.73.206.144:6969/api" || cfg.Upstream.Timeout != 0 {
		t.Fatalf("unexpected upstream: %+v", cfg.Upstream)
	}
	if cfg.Forwarder.BaseURL != "http://localhost:8080" {
		t.Fatalf("unexpected forwarder: %+v", cfg.Forwarder)
	}
	if cfg.Kafka.Enabled() || cfg.Kafka.Topic != "dashboard.events" {
		t.Fatalf("unexpected kafka: %+v", cfg.Kafka)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("UPSTREAM_BASE_URL", "http://upstream.local/api/")
	t.Setenv("UPSTREAM_API_KEY", " secret ")
	t.Setenv("UPSTREAM_TIMEOUT", "15")
	t.Setenv("FORWARDER_TIMEOUT", "1m")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_BROKER", "kafka-1:9092, kafka-2:9092 ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("unexpected port: %s", cfg.Server.Port)
	}
	if cfg.Upstream.BaseURL != "http://upstream.local/api" || cfg.Upstream.APIKey != "secret" {
		t.Fatalf("unexpected upstream: %+v", cfg.Upstream)
	}
	if cfg.Upstream.Timeout != 15*time.Second || cfg.Forwarder.Timeout != time.Minute {
		t.Fatalf("unexpected timeouts: %s %s", cfg.Upstream.Timeout, cfg.Forwarder.Timeout)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.Kafka.Brokers)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("PORT", "eighty")
	if _, err := Load(); err == nil {
		t.Fatal("expected invalid port to fail")
	}

	t.Setenv("PORT", "8080")
	t.Setenv("UPSTREAM_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected invalid timeout to fail")
	}
}

func TestLoadResourcesAppliesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resources.yaml")
	content := `
resources:
  - name: orders
    initialLimit: 100
    textFilters:
      warehouse_name: warehouse_name
  - name: returns
    path: returns
    dateWindow: same-day
    exactFilters:
      barcode: barcode
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	resources, err := LoadResources(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	orders := resources["orders"]
	if orders.InitialLimit != 100 || orders.Path != "orders" {
		t.Fatalf("unexpected orders: %+v", orders)
	}
	if len(orders.TextFilters) != 1 || len(orders.ExactFilters) != 2 {
		t.Fatalf("unexpected orders filters: %+v", orders)
	}
	returns := resources["returns"]
	if returns.DateWindow != domain.DateWindowSameDay || returns.ExactFilters["barcode"] != "barcode" {
		t.Fatalf("unexpected returns: %+v", returns)
	}
	if _, ok := resources["stocks"]; !ok {
		t.Fatal("expected untouched defaults to remain")
	}
}

func TestLoadResourcesErrors(t *testing.T) {
	if _, err := LoadResources(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected missing file to fail")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("resources:\n  - name: orders\n    dateWindow: monthly\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadResources(path); err == nil {
		t.Fatal("expected invalid date window to fail")
	}

	if resources, err := LoadResources(""); err != nil || len(resources) != 4 {
		t.Fatalf("expected defaults, got %d resources, err=%v", len(resources), err)
	}
}
