package app

import (
	"context"
	"fmt"
	"os"
	osignal "os/signal"
	"sync"
	"syscall"
	"time"

	"fxSignalBot/config"
	"fxSignalBot/internal/aggregator"
	"fxSignalBot/internal/analytics"
	"fxSignalBot/internal/backtest"
	"fxSignalBot/internal/domain"
	"fxSignalBot/internal/indicators"
	"fxSignalBot/internal/ledger"
	"fxSignalBot/internal/ports"
	"fxSignalBot/internal/risk"
	"fxSignalBot/internal/signal"
)

const maxSignalHistory = 200

// Status is a point-in-time view of the running engine.
type Status struct {
	Symbol          string
	Balance         float64
	StartingBalance float64
	OpenPositions   []*domain.Position
	RecentSignals   []domain.Signal
	CandleCount     int
}

// TradingService orchestrates the signal engine: it feeds ticks into the
// aggregator, reruns the indicator pipeline on every completed candle, opens
// virtual positions on qualifying signals and keeps the ledger persisted.
type TradingService struct {
	cfg       *config.Config
	logger    ports.Logger
	feed      ports.MarketDataClient
	repo      ports.LedgerRepository
	notifier  ports.Notifier
	validator *risk.Validator
	generator *signal.Generator
	specs     []domain.SymbolSpec

	// State fields, guarded by mu. Tick processing is fully synchronous:
	// a tick's aggregation, signal evaluation and ledger effects all land
	// before the next tick is examined.
	mu        sync.Mutex
	agg       *aggregator.Aggregator
	book      *ledger.Ledger
	lastPrice map[string]float64
	signals   []domain.Signal
}

// NewTradingService creates the application service.
func NewTradingService(
	cfg *config.Config,
	logger ports.Logger,
	feed ports.MarketDataClient,
	repo ports.LedgerRepository,
	notifier ports.Notifier,
	validator *risk.Validator,
	specs []domain.SymbolSpec,
) (*TradingService, error) {
	if cfg == nil || logger == nil || feed == nil || repo == nil || notifier == nil || validator == nil {
		return nil, fmt.Errorf("missing required dependencies for TradingService")
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("at least one symbol spec is required")
	}

	genCfg := signal.DefaultConfig()
	genCfg.ScoreThreshold = cfg.ScoreThreshold
	genCfg.MinConfidence = cfg.MinConfidence
	genCfg.CooldownCandles = cfg.CooldownCandles

	gen, err := signal.New(genCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("building signal generator: %w", err)
	}

	return &TradingService{
		cfg:       cfg,
		logger:    logger,
		feed:      feed,
		repo:      repo,
		notifier:  notifier,
		validator: validator,
		generator: gen,
		specs:     specs,
		lastPrice: make(map[string]float64),
	}, nil
}

// Start initializes state from the repository and the market data feed, then
// processes ticks until the context is cancelled.
func (s *TradingService) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting signal engine", map[string]interface{}{
		"symbol": s.cfg.Symbol, "interval": s.cfg.Interval, "source": s.cfg.DataSource,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	osignal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer osignal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := s.initState(ctx); err != nil {
		return err
	}

	wsDoneCh, wsStopCh, err := s.feed.StreamTicks(ctx, s.cfg.Symbol, s.handleTick, s.handleFeedError)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to start tick stream")
		return fmt.Errorf("failed to start tick stream: %w", err)
	}
	s.logger.Info(ctx, "Tick stream started", map[string]interface{}{"symbol": s.cfg.Symbol})

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Context cancelled, initiating shutdown")
		select {
		case wsStopCh <- struct{}{}:
		default:
		}
		select {
		case <-wsDoneCh:
		case <-time.After(5 * time.Second):
			s.logger.Warn(ctx, "Timeout waiting for tick stream to shut down")
		}
	case <-wsDoneCh:
		s.logger.Error(ctx, fmt.Errorf("tick stream closed unexpectedly"), "Tick stream stopped")
		s.persist(context.Background())
		return fmt.Errorf("tick stream stopped unexpectedly")
	}

	// Final snapshot so a restart resumes where this run ended.
	s.persist(context.Background())
	s.logger.Info(ctx, "Signal engine stopped")
	return nil
}

func (s *TradingService) initState(ctx context.Context) error {
	snap, err := s.repo.LoadSnapshot(ctx)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to load ledger snapshot")
		return fmt.Errorf("failed to load ledger snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if snap != nil {
		s.book, err = ledger.FromSnapshot(s.specs, snap)
		if err != nil {
			return fmt.Errorf("restoring ledger from snapshot: %w", err)
		}
		s.logger.Info(ctx, "Ledger restored from snapshot", map[string]interface{}{
			"balance": snap.Balance, "openPositions": len(snap.OpenPositions), "trades": len(snap.History),
		})
	} else {
		s.book, err = ledger.New(s.specs, s.cfg.StartingBalance)
		if err != nil {
			return fmt.Errorf("creating ledger: %w", err)
		}
		s.logger.Info(ctx, "Fresh ledger created", map[string]interface{}{"balance": s.cfg.StartingBalance})
	}

	intervalMs, err := intervalMillis(s.cfg.Interval)
	if err != nil {
		return err
	}
	s.agg, err = aggregator.New(s.cfg.Symbol, intervalMs, s.cfg.WindowSize)
	if err != nil {
		return fmt.Errorf("creating aggregator: %w", err)
	}

	history, err := s.feed.GetCandles(ctx, s.cfg.Symbol, s.cfg.Interval, s.cfg.WindowSize)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to load initial candle history")
		return fmt.Errorf("failed to load initial candles: %w", err)
	}
	s.agg.Preload(history)
	s.logger.Info(ctx, "Candle history preloaded", map[string]interface{}{"count": len(history)})
	return nil
}

// handleTick is the engine's single entry point for live data.
func (s *TradingService) handleTick(tick domain.Tick) {
	ctx := context.Background()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastPrice[tick.Symbol] = tick.Price
	completed, rolled := s.agg.OnTick(tick)

	// Exits fire before any entry decision for this tick.
	closedTrades := s.book.UpdateOnTick(tick.Symbol, tick.Price)
	for _, trade := range closedTrades {
		s.recordClose(ctx, trade)
	}

	if rolled && completed != nil {
		s.evaluateSignals(ctx, completed)
	}

	if len(closedTrades) > 0 {
		s.persistLocked(ctx)
	}
}

// evaluateSignals reruns the full indicator pipeline over the candle window
// and acts on a signal landing on the just-completed candle. Callers hold mu.
func (s *TradingService) evaluateSignals(ctx context.Context, completed *domain.Candle) {
	window := s.agg.Candles(0)
	if len(window) > 0 && window[len(window)-1].Time > completed.Time {
		// Drop the in-progress candle so the window ends on closed data.
		window = window[:len(window)-1]
	}
	if len(window) == 0 {
		return
	}

	enriched := indicators.Enrich(window)
	levels := indicators.SupportResistance(window, indicators.DefaultPivotLookback)
	sigs := s.generator.Generate(ctx, enriched, levels)
	if len(sigs) == 0 {
		return
	}

	latest := sigs[len(sigs)-1]
	if latest.Index != len(window)-1 {
		return // Signal from an earlier candle, already handled.
	}

	s.signals = append(s.signals, latest)
	if len(s.signals) > maxSignalHistory {
		s.signals = s.signals[len(s.signals)-maxSignalHistory:]
	}
	if err := s.notifier.NotifySignal(ctx, &latest); err != nil {
		s.logger.Warn(ctx, "Signal notification failed", map[string]interface{}{"error": err.Error()})
	}

	if !s.cfg.AutoTrade {
		return
	}
	if err := s.openFromSignal(ctx, latest); err != nil {
		s.logger.Warn(ctx, "Signal did not open a position", map[string]interface{}{
			"side": string(latest.Side), "price": latest.Price, "reason": err.Error(),
		})
		return
	}
	s.persistLocked(ctx)
}

func (s *TradingService) openFromSignal(ctx context.Context, sig domain.Signal) error {
	err := s.validator.ValidateOpen(s.cfg.Symbol, s.cfg.LotSize, sig.Price, s.book.Balance(), len(s.book.OpenPositions()))
	if err != nil {
		return err
	}

	pos, err := s.book.Open(sig.Side, s.cfg.Symbol, sig.Price, s.cfg.LotSize, s.cfg.StopLossPct, s.cfg.TakeProfitPct)
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "Position opened from signal", map[string]interface{}{
		"positionID": pos.ID, "side": string(pos.Side), "entry": pos.EntryPrice,
		"stopLoss": pos.StopLoss, "takeProfit": pos.TakeProfit,
	})
	return nil
}

func (s *TradingService) recordClose(ctx context.Context, trade *domain.ClosedTrade) {
	s.logger.Info(ctx, "Position auto-closed", map[string]interface{}{
		"positionID": trade.PositionID, "reason": string(trade.ExitReason), "pnl": trade.PNL,
	})
	if err := s.repo.RecordTrade(ctx, trade); err != nil {
		s.logger.Error(ctx, err, "Failed to record closed trade", map[string]interface{}{"positionID": trade.PositionID})
	}
	if err := s.notifier.NotifyTradeClosed(ctx, trade); err != nil {
		s.logger.Warn(ctx, "Trade notification failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *TradingService) handleFeedError(err error) {
	s.logger.Error(context.Background(), err, "Tick stream error reported")
}

// OpenTrade opens a virtual position at the symbol's last seen price on
// behalf of a user command.
func (s *TradingService) OpenTrade(ctx context.Context, side domain.Side, symbol string, lotSize float64) (*domain.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	price, ok := s.lastPrice[symbol]
	if !ok {
		return nil, fmt.Errorf("no price seen for %s yet: %w", symbol, ports.ErrFeedUnavailable)
	}
	if err := s.validator.ValidateOpen(symbol, lotSize, price, s.book.Balance(), len(s.book.OpenPositions())); err != nil {
		return nil, err
	}

	pos, err := s.book.Open(side, symbol, price, lotSize, s.cfg.StopLossPct, s.cfg.TakeProfitPct)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "Position opened by command", map[string]interface{}{
		"positionID": pos.ID, "side": string(side), "symbol": symbol, "entry": price,
	})
	s.persistLocked(ctx)
	return pos, nil
}

// CloseTrade closes an open position by ID at its symbol's last seen price.
func (s *TradingService) CloseTrade(ctx context.Context, id int64) (*domain.ClosedTrade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var price float64
	found := false
	for _, pos := range s.book.OpenPositions() {
		if pos.ID == id {
			price, found = s.lastPrice[pos.Symbol], true
			if !found {
				price = pos.CurrentPrice
				found = price > 0
			}
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("position %d: %w", id, ports.ErrNotFound)
	}

	trade, err := s.book.Close(id, price)
	if err != nil {
		return nil, err
	}
	s.recordClose(ctx, trade)
	s.persistLocked(ctx)
	return trade, nil
}

// Status returns the engine's current balances, open positions and recent
// signal history.
func (s *TradingService) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	signals := make([]domain.Signal, len(s.signals))
	copy(signals, s.signals)

	return Status{
		Symbol:          s.cfg.Symbol,
		Balance:         s.book.Balance(),
		StartingBalance: s.book.StartingBalance(),
		OpenPositions:   s.book.OpenPositions(),
		RecentSignals:   signals,
		CandleCount:     len(s.agg.Candles(0)),
	}
}

// Summary computes performance metrics over the closed-trade history.
func (s *TradingService) Summary() *analytics.PerformanceMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return analytics.Analyze(s.book.History(), s.book.StartingBalance())
}

// RunBacktest replays the engine's current candle window through the
// backtester with the live trading parameters.
func (s *TradingService) RunBacktest(ctx context.Context) (*backtest.Result, error) {
	s.mu.Lock()
	window := s.agg.Candles(0)
	s.mu.Unlock()

	genCfg := signal.DefaultConfig()
	genCfg.ScoreThreshold = s.cfg.ScoreThreshold
	genCfg.MinConfidence = s.cfg.MinConfidence
	genCfg.CooldownCandles = s.cfg.CooldownCandles

	replayer, err := backtest.New(s.specs, genCfg, s.logger)
	if err != nil {
		return nil, err
	}
	return replayer.Run(ctx, s.cfg.Symbol, window, backtest.Params{
		StopLossPct:     s.cfg.StopLossPct,
		TakeProfitPct:   s.cfg.TakeProfitPct,
		LotSize:         s.cfg.LotSize,
		StartingBalance: s.cfg.StartingBalance,
	})
}

// persist saves a snapshot, taking the lock first.
func (s *TradingService) persist(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistLocked(ctx)
}

// persistLocked saves a snapshot. Callers hold mu.
func (s *TradingService) persistLocked(ctx context.Context) {
	if err := s.repo.SaveSnapshot(ctx, s.book.Snapshot()); err != nil {
		s.logger.Error(ctx, err, "Failed to persist ledger snapshot")
	}
}

func intervalMillis(interval string) (int64, error) {
	switch interval {
	case "1m":
		return 60_000, nil
	case "5m":
		return 300_000, nil
	case "15m":
		return 900_000, nil
	case "1h":
		return 3_600_000, nil
	case "4h":
		return 14_400_000, nil
	case "1d":
		return 86_400_000, nil
	}
	return 0, fmt.Errorf("unsupported interval %q: %w", interval, ports.ErrInvalidRequest)
}
