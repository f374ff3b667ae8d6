package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fxSignalBot/internal/adapters/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig with defaults: %v", err)
	}

	if cfg.DataSource != SourceSim {
		t.Errorf("DataSource = %q, want %q", cfg.DataSource, SourceSim)
	}
	if cfg.Symbol != "XAUUSD" {
		t.Errorf("Symbol = %q, want XAUUSD", cfg.Symbol)
	}
	if cfg.StopLossPct != 0.002 || cfg.TakeProfitPct != 0.004 {
		t.Errorf("stops = %v/%v, want 0.002/0.004", cfg.StopLossPct, cfg.TakeProfitPct)
	}
	if cfg.StartingBalance != 10000 {
		t.Errorf("StartingBalance = %v, want 10000", cfg.StartingBalance)
	}
	if cfg.LogLevel != logger.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestLoadConfigOverridesAndValidation(t *testing.T) {
	t.Setenv("DATA_SOURCE", "binance")
	t.Setenv("SYMBOL", "EURUSD")
	t.Setenv("STOP_LOSS_PCT", "0.01")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DataSource != SourceBinance || cfg.Symbol != "EURUSD" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.StopLossPct != 0.01 {
		t.Errorf("StopLossPct = %v, want 0.01", cfg.StopLossPct)
	}
	if cfg.LogLevel != logger.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
}

func TestLoadConfigCollectsErrors(t *testing.T) {
	t.Setenv("DATA_SOURCE", "carrier-pigeon")
	t.Setenv("STOP_LOSS_PCT", "1.5")
	t.Setenv("WINDOW_SIZE", "10")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"DATA_SOURCE", "STOP_LOSS_PCT", "WINDOW_SIZE"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadSymbolSpecsDefaults(t *testing.T) {
	cfg := &Config{}
	specs, err := cfg.LoadSymbolSpecs()
	if err != nil {
		t.Fatalf("LoadSymbolSpecs: %v", err)
	}
	if len(specs) == 0 {
		t.Fatal("expected built-in specs")
	}
}

func TestLoadSymbolSpecsFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "symbols.yaml")
	content := `symbols:
  - symbol: XAUUSD
    contract_size: 100
    min_lot: 0.01
    max_lot: 50
    precision: 2
  - symbol: EURUSD
    contract_size: 100000
    min_lot: 0.01
    max_lot: 100
    precision: 5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{SymbolsFile: path}
	specs, err := cfg.LoadSymbolSpecs()
	if err != nil {
		t.Fatalf("LoadSymbolSpecs: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("got %d specs, want 2", len(specs))
	}
	if specs[0].Symbol != "XAUUSD" || specs[0].ContractSize != 100 {
		t.Errorf("unexpected first spec: %+v", specs[0])
	}
}

func TestLoadSymbolSpecsRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	content := `symbols:
  - symbol: XAUUSD
    contract_size: -1
    min_lot: 0.01
    max_lot: 50
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{SymbolsFile: path}
	if _, err := cfg.LoadSymbolSpecs(); err == nil {
		t.Fatal("expected validation error for negative contract size")
	}
}
