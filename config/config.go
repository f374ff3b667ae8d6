package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"fxSignalBot/internal/adapters/logger"
	"fxSignalBot/internal/domain"
)

// Data source selectors.
const (
	SourceBinance = "binance"
	SourceSim     = "sim"
)

// Config holds all application configuration.
type Config struct {
	// Market data
	DataSource string // "binance" or "sim"
	APIKey     string
	SecretKey  string

	// Instrument
	Symbol      string
	Interval    string
	SymbolsFile string // Optional YAML file overriding the built-in instrument table

	// Trading parameters
	LotSize          float64
	StopLossPct      float64 // e.g. 0.002 for 0.2%
	TakeProfitPct    float64 // e.g. 0.004 for 0.4%
	StartingBalance  float64
	MaxOpenPositions int
	MarginFraction   float64
	AutoTrade        bool // Open virtual positions on generated signals

	// Signal generation
	ScoreThreshold  float64
	MinConfidence   float64
	CooldownCandles int
	WindowSize      int // Candle history kept for indicator computation

	// Database
	DBPath string

	// Logging
	LogLevel logger.LogLevel

	// Connection settings
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist.
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string

	cfg.DataSource = strings.ToLower(getEnv("DATA_SOURCE", SourceSim))
	if cfg.DataSource != SourceBinance && cfg.DataSource != SourceSim {
		errs = append(errs, fmt.Sprintf("DATA_SOURCE must be %q or %q", SourceBinance, SourceSim))
	}

	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")

	cfg.Symbol = getEnv("SYMBOL", "XAUUSD")
	if cfg.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}
	cfg.Interval = getEnv("INTERVAL", "1m")
	cfg.SymbolsFile = getEnv("SYMBOLS_FILE", "")

	cfg.LotSize, err = getEnvAsFloatRequired("LOT_SIZE", 0.1)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid LOT_SIZE: %v", err))
	} else if cfg.LotSize <= 0 {
		errs = append(errs, "LOT_SIZE must be positive")
	}

	cfg.StopLossPct, err = getEnvAsFloatRequired("STOP_LOSS_PCT", 0.002)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid STOP_LOSS_PCT: %v", err))
	} else if cfg.StopLossPct <= 0 || cfg.StopLossPct >= 1.0 {
		errs = append(errs, "STOP_LOSS_PCT must be between 0.0 and 1.0 (exclusive)")
	}

	cfg.TakeProfitPct, err = getEnvAsFloatRequired("TAKE_PROFIT_PCT", 0.004)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TAKE_PROFIT_PCT: %v", err))
	} else if cfg.TakeProfitPct <= 0 || cfg.TakeProfitPct >= 1.0 {
		errs = append(errs, "TAKE_PROFIT_PCT must be between 0.0 and 1.0 (exclusive)")
	}

	cfg.StartingBalance, err = getEnvAsFloatRequired("STARTING_BALANCE", 10000)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid STARTING_BALANCE: %v", err))
	} else if cfg.StartingBalance <= 0 {
		errs = append(errs, "STARTING_BALANCE must be positive")
	}

	cfg.MaxOpenPositions = getEnvAsInt("MAX_OPEN_POSITIONS", 5)
	if cfg.MaxOpenPositions < 0 {
		errs = append(errs, "MAX_OPEN_POSITIONS cannot be negative")
	}
	cfg.MarginFraction = getEnvAsFloat("MARGIN_FRACTION", 0.01)
	if cfg.MarginFraction < 0 {
		errs = append(errs, "MARGIN_FRACTION cannot be negative")
	}
	cfg.AutoTrade = getEnvAsBool("AUTO_TRADE", true)

	cfg.ScoreThreshold = getEnvAsFloat("SCORE_THRESHOLD", 3)
	cfg.MinConfidence = getEnvAsFloat("MIN_CONFIDENCE", 40)
	cfg.CooldownCandles = getEnvAsInt("COOLDOWN_CANDLES", 5)
	cfg.WindowSize = getEnvAsInt("WINDOW_SIZE", 500)
	if cfg.WindowSize < 60 {
		errs = append(errs, "WINDOW_SIZE must be at least 60 candles")
	}

	cfg.DBPath = getEnv("DB_PATH", "./data/signal_bot.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))

	reconnectDelaySeconds := getEnvAsInt("RECONNECT_DELAY_SECONDS", 5)
	if reconnectDelaySeconds <= 0 {
		errs = append(errs, "RECONNECT_DELAY_SECONDS must be positive")
	}
	cfg.ReconnectDelay = time.Duration(reconnectDelaySeconds) * time.Second

	cfg.MaxReconnectAttempts = getEnvAsInt("MAX_RECONNECT_ATTEMPTS", 10)
	if cfg.MaxReconnectAttempts < 0 {
		errs = append(errs, "MAX_RECONNECT_ATTEMPTS cannot be negative")
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// LoadSymbolSpecs returns the instrument table, either the built-in defaults
// or the contents of the YAML file named by SYMBOLS_FILE.
func (c *Config) LoadSymbolSpecs() ([]domain.SymbolSpec, error) {
	if c.SymbolsFile == "" {
		return domain.DefaultSymbolSpecs(), nil
	}

	data, err := os.ReadFile(c.SymbolsFile)
	if err != nil {
		return nil, fmt.Errorf("reading symbols file %s: %w", c.SymbolsFile, err)
	}

	var file struct {
		Symbols []domain.SymbolSpec `yaml:"symbols"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing symbols file %s: %w", c.SymbolsFile, err)
	}
	if len(file.Symbols) == 0 {
		return nil, fmt.Errorf("symbols file %s lists no symbols", c.SymbolsFile)
	}

	for i, s := range file.Symbols {
		if s.Symbol == "" || s.ContractSize <= 0 || s.MinLot <= 0 || s.MaxLot < s.MinLot {
			return nil, fmt.Errorf("symbols file %s: invalid spec at index %d (%+v)", c.SymbolsFile, i, s)
		}
	}
	return file.Symbols, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
