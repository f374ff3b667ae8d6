package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"fxSignalBot/config"
	"fxSignalBot/internal/adapters/logger"
	"fxSignalBot/internal/backtest"
	"fxSignalBot/internal/domain"
	"fxSignalBot/internal/signal"
	"fxSignalBot/internal/utils"
)

func main() {
	input := flag.String("input", "", "candle CSV file to replay (required)")
	tradesOut := flag.String("trades", "", "optional CSV path for the trade list")
	sweep := flag.Bool("sweep", false, "sweep SL/TP combinations instead of a single run")
	flag.Parse()

	if *input == "" {
		log.Fatal("FATAL: -input is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	candles, err := utils.ReadCandlesFromCSV(*input)
	if err != nil {
		appLogger.Error(ctx, err, "Failed to read candle CSV")
		log.Fatalf("FATAL: Failed to read candle CSV: %v", err)
	}
	appLogger.Info(ctx, "Candles loaded", map[string]interface{}{"file": *input, "count": len(candles)})

	specs, err := cfg.LoadSymbolSpecs()
	if err != nil {
		log.Fatalf("FATAL: Failed to load symbol specs: %v", err)
	}

	genCfg := signal.DefaultConfig()
	genCfg.ScoreThreshold = cfg.ScoreThreshold
	genCfg.MinConfidence = cfg.MinConfidence
	genCfg.CooldownCandles = cfg.CooldownCandles

	replayer, err := backtest.New(specs, genCfg, appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to build replayer: %v", err)
	}

	if *sweep {
		runSweep(ctx, replayer, cfg, candles)
		return
	}

	result, err := replayer.Run(ctx, cfg.Symbol, candles, backtest.Params{
		StopLossPct:     cfg.StopLossPct,
		TakeProfitPct:   cfg.TakeProfitPct,
		LotSize:         cfg.LotSize,
		StartingBalance: cfg.StartingBalance,
	})
	if err != nil {
		appLogger.Error(ctx, err, "Backtest failed")
		log.Fatalf("FATAL: Backtest failed: %v", err)
	}

	printResult(result)

	if *tradesOut != "" {
		if err := utils.WriteTradesToCSV(result.Trades, *tradesOut); err != nil {
			appLogger.Error(ctx, err, "Failed to write trades CSV")
			log.Fatalf("FATAL: Failed to write trades CSV: %v", err)
		}
		fmt.Printf("\nTrades written to %s\n", *tradesOut)
	}
}

func runSweep(ctx context.Context, replayer *backtest.Replayer, cfg *config.Config, candles []domain.Candle) {
	results, err := replayer.Sweep(ctx, cfg.Symbol, candles, backtest.SweepConfig{
		StopLoss:        backtest.SweepRange{Min: 0.001, Max: 0.005, Step: 0.001},
		TakeProfit:      backtest.SweepRange{Min: 0.002, Max: 0.010, Step: 0.002},
		LotSize:         cfg.LotSize,
		StartingBalance: cfg.StartingBalance,
	})
	if err != nil {
		log.Fatalf("FATAL: Sweep failed: %v", err)
	}

	fmt.Println("=== SL/TP Sweep (best first) ===")
	fmt.Println("    SL%     TP%  Trades  WinRate  TotalPNL  FinalBalance")
	for _, r := range results {
		fmt.Printf("  %.3f   %.3f  %6d   %5.1f%%  %8.2f  %12.2f\n",
			r.StopLossPct*100, r.TakeProfitPct*100,
			r.Result.TotalTrades, r.Result.WinRate*100, r.Result.TotalPNL, r.Result.FinalBalance)
	}
}

func printResult(res *backtest.Result) {
	fmt.Println("=== Backtest Result ===")
	fmt.Printf("Signals:        %d\n", len(res.Signals))
	fmt.Printf("Trades:         %d (%d wins / %d losses)\n", res.TotalTrades, res.Wins, res.Losses)
	fmt.Printf("Win rate:       %.1f%%\n", res.WinRate*100)
	fmt.Printf("Total P&L:      %.2f\n", res.TotalPNL)
	fmt.Printf("Average win:    %.2f\n", res.AverageWin)
	fmt.Printf("Average loss:   %.2f\n", res.AverageLoss)
	fmt.Printf("Profit factor:  %.2f\n", res.ProfitFactor)
	fmt.Printf("Worst trade:    %.2f\n", res.WorstTradePNL)
	fmt.Printf("Final balance:  %.2f\n", res.FinalBalance)
}
