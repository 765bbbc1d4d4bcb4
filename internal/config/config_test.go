package config

import (
	"strings"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "yolo"
	cfg.Matching.SimilarityThreshold = 1.5
	cfg.Pricing.MinPositionSize = 0
	cfg.Portfolio.KellyCap = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"unknown mode", "similarity_threshold", "min_position_size", "kelly_cap"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err.Error(), want)
		}
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("QUANTARB_MODE", "scan")
	t.Setenv("QUANTARB_MATCHING_SIMILARITY_THRESHOLD", "0.7")
	t.Setenv("QUANTARB_ENGINE_SCAN_INTERVAL", "30s")
	t.Setenv("QUANTARB_SERVER_ENABLED", "false")
	t.Setenv("QUANTARB_NOTIFY_EVENTS", "error, trade_planned")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	if cfg.Mode != "scan" {
		t.Fatalf("mode got %q, want scan", cfg.Mode)
	}
	if cfg.Matching.SimilarityThreshold != 0.7 {
		t.Fatalf("threshold got %g, want 0.7", cfg.Matching.SimilarityThreshold)
	}
	if cfg.Engine.ScanInterval.String() != "30s" {
		t.Fatalf("scan interval got %s, want 30s", cfg.Engine.ScanInterval)
	}
	if cfg.Server.Enabled {
		t.Fatal("server should be disabled")
	}
	if len(cfg.Notify.Events) != 2 || cfg.Notify.Events[0] != "error" {
		t.Fatalf("events got %v", cfg.Notify.Events)
	}
}

func TestEnvOverrideIgnoresMalformedValues(t *testing.T) {
	t.Setenv("QUANTARB_PRICING_SLIPPAGE_FACTOR", "not-a-number")

	cfg := Defaults()
	applyEnvOverrides(&cfg)
	if cfg.Pricing.SlippageFactor != 0.005 {
		t.Fatalf("slippage got %g, want default preserved", cfg.Pricing.SlippageFactor)
	}
}
