package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"fxSignalBot/config"
	"fxSignalBot/internal/adapters/binanceclient"
	"fxSignalBot/internal/adapters/logger"
	"fxSignalBot/internal/adapters/simfeed"
	"fxSignalBot/internal/ports"
	"fxSignalBot/internal/utils"
)

func main() {
	limit := flag.Int("limit", 1000, "number of candles to fetch")
	out := flag.String("out", "", "output CSV path (default data/<symbol>_<interval>_<date>.csv)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger := logger.NewStdLogger(cfg.LogLevel)

	var feed ports.MarketDataClient
	switch cfg.DataSource {
	case config.SourceBinance:
		feed, err = binanceclient.New(binanceclient.Config{
			APIKey:               cfg.APIKey,
			SecretKey:            cfg.SecretKey,
			Logger:               appLogger,
			ReconnectDelay:       cfg.ReconnectDelay,
			MaxReconnectAttempts: cfg.MaxReconnectAttempts,
		})
	default:
		feed, err = simfeed.New(simfeed.Config{Logger: appLogger})
	}
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize market data feed")
		log.Fatalf("FATAL: Failed to initialize market data feed: %v", err)
	}

	fmt.Printf("Fetching %d candles for %s %s...\n", *limit, cfg.Symbol, cfg.Interval)
	candles, err := feed.GetCandles(context.Background(), cfg.Symbol, cfg.Interval, *limit)
	if err != nil {
		appLogger.Error(context.Background(), err, "Error fetching candles")
		log.Fatalf("Error fetching candles: %v", err)
	}
	appLogger.Info(context.Background(), "Fetched candles", map[string]interface{}{"count": len(candles)})

	filename := *out
	if filename == "" {
		filename = fmt.Sprintf("data/%s_%s_%s.csv", cfg.Symbol, cfg.Interval, time.Now().Format("20060102"))
	}
	if err := utils.WriteCandlesToCSV(candles, filename); err != nil {
		appLogger.Error(context.Background(), err, "Error writing CSV")
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(context.Background(), "Saved candles", map[string]interface{}{"filename": filename, "count": len(candles)})
}
