package main

import (
	"context"
	"log" // Standard log only for fatal errors before the logger is ready

	"fxSignalBot/config"
	"fxSignalBot/internal/adapters/binanceclient"
	"fxSignalBot/internal/adapters/logger"
	"fxSignalBot/internal/adapters/notify"
	"fxSignalBot/internal/adapters/simfeed"
	"fxSignalBot/internal/adapters/sqlite"
	"fxSignalBot/internal/app"
	"fxSignalBot/internal/ports"
	"fxSignalBot/internal/risk"
)

func main() {
	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Instrument table
	specs, err := cfg.LoadSymbolSpecs()
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to load symbol specs")
		log.Fatalf("FATAL: Failed to load symbol specs: %v", err)
	}

	// 4. Ledger store
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
	}()

	// 5. Market data feed
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
	appLogger.Info(context.Background(), "Market data feed initialized", map[string]interface{}{"source": cfg.DataSource})

	// 6. Risk validator and notifier
	validator, err := risk.New(risk.Config{
		MaxOpenPositions: cfg.MaxOpenPositions,
		MarginFraction:   cfg.MarginFraction,
	}, specs)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize risk validator")
		log.Fatalf("FATAL: Failed to initialize risk validator: %v", err)
	}

	notifier, err := notify.New(appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize notifier")
		log.Fatalf("FATAL: Failed to initialize notifier: %v", err)
	}

	// 7. Application service
	service, err := app.NewTradingService(cfg, appLogger, feed, repo, notifier, validator, specs)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize trading service")
		log.Fatalf("FATAL: Failed to initialize trading service: %v", err)
	}

	// 8. Run until shutdown
	if err := service.Start(context.Background()); err != nil {
		appLogger.Error(context.Background(), err, "Signal engine exited with error")
		log.Fatalf("FATAL: Signal engine exited with error: %v", err)
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
