package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"UKPredict/pkg/config"
	applogger "UKPredict/pkg/logger"
)

const leafModel = `{
  "objective": "regression",
  "feature_names": ["hour"],
  "tree_info": [{"tree_index": 0, "tree_structure": {"leaf_value": 30000}}]
}`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func electricityConfig(dir string) *config.Config {
	cfg := &config.Config{}
	cfg.Service.Name = config.ServiceElectricity
	cfg.Model.Backend = "native"
	cfg.Model.Paths = []string{filepath.Join(dir, "missing.json"), filepath.Join(dir, "model.json")}
	cfg.History.Source = "file"
	cfg.History.Paths = []string{filepath.Join(dir, "demand.csv")}
	cfg.Cache.Backend = "none"
	return cfg
}

func TestProvideModelContextLoadsModelAndHistory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "model.json", leafModel)
	writeFile(t, dir, "demand.csv", "settlement_date,demand_value\n2024-01-01 00:00:00,30000\n2024-01-01 00:30:00,31000\n")

	cfg := electricityConfig(dir)
	ctx := context.Background()
	src, err := ProvideSeriesSource(ctx, cfg, nil, applogger.Nop())
	if err != nil {
		t.Fatalf("series source: %v", err)
	}
	mc, cleanup, err := ProvideModelContext(ctx, cfg, src, applogger.Nop())
	if err != nil {
		t.Fatalf("model context: %v", err)
	}
	defer cleanup()

	if !mc.Ready() || mc.Backend() != "native" {
		t.Fatalf("model not ready: %+v", mc)
	}
	if mc.Artifact != filepath.Join(dir, "model.json") {
		t.Fatalf("artifact = %s", mc.Artifact)
	}
	if !mc.HistoryLoaded() || mc.Series.Len() != 2 {
		t.Fatalf("history not loaded")
	}
}

func TestProvideModelContextWithoutHistory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "model.json", leafModel)

	cfg := electricityConfig(dir)
	src, _ := ProvideSeriesSource(context.Background(), cfg, nil, applogger.Nop())
	mc, cleanup, err := ProvideModelContext(context.Background(), cfg, src, applogger.Nop())
	if err != nil {
		t.Fatalf("missing history must not be fatal: %v", err)
	}
	defer cleanup()
	if mc.HistoryLoaded() {
		t.Fatalf("history should be absent")
	}
}

func TestProvideModelContextMissingModel(t *testing.T) {
	cfg := electricityConfig(t.TempDir())
	if _, _, err := ProvideModelContext(context.Background(), cfg, nil, applogger.Nop()); err == nil {
		t.Fatalf("expected error for missing model")
	}
}

func TestDisabledConcernsAreNil(t *testing.T) {
	cfg := electricityConfig(t.TempDir())
	ctx := context.Background()

	svc, cleanup, err := ProvideCacheService(ctx, cfg)
	if err != nil || svc != nil {
		t.Fatalf("cache = %v, %v", svc, err)
	}
	cleanup()
	if c := ProvidePredictionCache(cfg, svc); c != nil {
		t.Fatalf("prediction cache should be nil")
	}

	producer, cleanup, err := ProvideKafkaProducer(cfg)
	if err != nil || producer != nil {
		t.Fatalf("producer = %v, %v", producer, err)
	}
	cleanup()
	if ev := ProvideEventPublisher(cfg, producer); ev != nil {
		t.Fatalf("event publisher should be nil")
	}

	ch, cleanup, err := ProvideClickHouseClient(ctx, cfg)
	if err != nil || ch != nil {
		t.Fatalf("clickhouse = %v, %v", ch, err)
	}
	cleanup()
	if _, err := ProvidePredictionStore(ctx, cfg, ch); err == nil {
		t.Fatalf("prediction store needs clickhouse")
	}
}
