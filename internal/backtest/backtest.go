package backtest

import (
	"context"
	"fmt"
	"math"
	"time"

	"fxSignalBot/internal/domain"
	"fxSignalBot/internal/indicators"
	"fxSignalBot/internal/ledger"
	"fxSignalBot/internal/ports"
	"fxSignalBot/internal/signal"
)

// Params configures one backtest run.
type Params struct {
	StopLossPct     float64
	TakeProfitPct   float64
	LotSize         float64
	StartingBalance float64
}

// Result holds the outcome of a backtest run. WorstTradePNL is the single
// worst per-trade P&L, which is what the live bot reports as its drawdown
// figure; it is not a running-equity drawdown.
type Result struct {
	Signals []domain.Signal
	Trades  []*domain.ClosedTrade

	TotalTrades   int
	Wins          int
	Losses        int
	WinRate       float64
	TotalPNL      float64
	AverageWin    float64
	AverageLoss   float64
	ProfitFactor  float64 // +Inf with wins and no losses, 0 with neither
	WorstTradePNL float64
	FinalBalance  float64
	EquityCurve   []float64 // Balance after each trade, point zero = starting balance
}

// Replayer walks a historical candle window through the exact signal
// generation code path used live, simulating at most one open position at a
// time. Runs are self-contained: nothing is shared with the live ledger.
type Replayer struct {
	specs  map[string]domain.SymbolSpec
	genCfg signal.Config
	logger ports.Logger
}

// New creates a Replayer.
func New(specs []domain.SymbolSpec, genCfg signal.Config, logger ports.Logger) (*Replayer, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for backtest replayer")
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("at least one symbol spec is required")
	}
	r := &Replayer{specs: make(map[string]domain.SymbolSpec, len(specs)), genCfg: genCfg, logger: logger}
	for _, s := range specs {
		r.specs[s.Symbol] = s
	}
	return r, nil
}

// Run enriches the window once, generates signals once, then replays the
// candles in order. A position opened at a signal candle is exit-checked
// against every subsequent candle's low/high range, stop-loss before
// take-profit, and closes at the level price. A zero-signal or zero-candle
// window yields an empty result, not an error.
func (r *Replayer) Run(ctx context.Context, symbol string, candles []domain.Candle, params Params) (*Result, error) {
	spec, ok := r.specs[symbol]
	if !ok {
		return nil, fmt.Errorf("backtest %s: %w", symbol, ports.ErrUnknownSymbol)
	}
	if params.StartingBalance <= 0 {
		return nil, fmt.Errorf("starting balance must be positive")
	}

	res := &Result{
		FinalBalance: params.StartingBalance,
		EquityCurve:  []float64{params.StartingBalance},
	}

	enriched := indicators.Enrich(candles)
	levels := indicators.SupportResistance(candles, indicators.DefaultPivotLookback)

	gen, err := signal.New(r.genCfg, r.logger)
	if err != nil {
		return nil, err
	}
	res.Signals = gen.Generate(ctx, enriched, levels)

	signalAt := make(map[int]*domain.Signal, len(res.Signals))
	for i := range res.Signals {
		signalAt[res.Signals[i].Index] = &res.Signals[i]
	}

	var (
		open      *domain.Position
		openIndex int
		nextID    int64 = 1
	)

	closeTrade := func(pos *domain.Position, exitPrice float64, reason domain.ExitReason, at int64) {
		pnl := pos.PNLAt(exitPrice, spec.ContractSize)
		res.FinalBalance += pnl
		res.TotalPNL += pnl
		trade := &domain.ClosedTrade{
			PositionID: pos.ID,
			Side:       pos.Side,
			Symbol:     symbol,
			EntryPrice: pos.EntryPrice,
			ExitPrice:  exitPrice,
			LotSize:    pos.LotSize,
			ExitReason: reason,
			PNL:        pnl,
			PNLPct:     pos.MovePctAt(exitPrice),
			Result:     domain.ResultFor(pnl),
			OpenedAt:   pos.OpenedAt,
			ClosedAt:   time.UnixMilli(at).UTC(),
			Balance:    res.FinalBalance,
		}
		res.Trades = append(res.Trades, trade)
		res.EquityCurve = append(res.EquityCurve, res.FinalBalance)
	}

	for i, c := range candles {
		if open != nil && i > openIndex {
			if exitPrice, reason, hit := rangeExit(open, c); hit {
				closeTrade(open, exitPrice, reason, c.Time)
				open = nil
			}
		}

		if open == nil {
			if sig, ok := signalAt[i]; ok {
				pos := ledger.SyntheticPosition(nextID, sig.Side, symbol, sig.Price, params.LotSize, params.StopLossPct, params.TakeProfitPct)
				pos.OpenedAt = time.UnixMilli(c.Time).UTC()
				nextID++
				open = pos
				openIndex = i
			}
		}
	}

	r.fillStats(res)
	r.logger.Debug(ctx, "backtest finished", map[string]interface{}{
		"symbol": symbol, "candles": len(candles), "signals": len(res.Signals), "trades": res.TotalTrades,
	})
	return res, nil
}

// rangeExit checks whether the candle's low/high range crosses the position's
// stop-loss or take-profit, stop-loss first. The exit fills at the level
// price, not at the candle close.
func rangeExit(pos *domain.Position, c domain.Candle) (price float64, reason domain.ExitReason, hit bool) {
	if pos.Side == domain.Sell {
		if c.High >= pos.StopLoss {
			return pos.StopLoss, domain.ExitReasonStopLoss, true
		}
		if c.Low <= pos.TakeProfit {
			return pos.TakeProfit, domain.ExitReasonTakeProfit, true
		}
		return 0, "", false
	}
	if c.Low <= pos.StopLoss {
		return pos.StopLoss, domain.ExitReasonStopLoss, true
	}
	if c.High >= pos.TakeProfit {
		return pos.TakeProfit, domain.ExitReasonTakeProfit, true
	}
	return 0, "", false
}

func (r *Replayer) fillStats(res *Result) {
	var sumWin, sumLoss float64
	for _, tr := range res.Trades {
		res.TotalTrades++
		if tr.Result == domain.ResultWin {
			res.Wins++
			sumWin += tr.PNL
		} else {
			res.Losses++
			sumLoss += tr.PNL
		}
		if tr.PNL < res.WorstTradePNL {
			res.WorstTradePNL = tr.PNL
		}
	}

	if res.TotalTrades > 0 {
		res.WinRate = float64(res.Wins) / float64(res.TotalTrades)
	}
	if res.Wins > 0 {
		res.AverageWin = sumWin / float64(res.Wins)
	}
	if res.Losses > 0 {
		res.AverageLoss = sumLoss / float64(res.Losses)
	}
	switch {
	case sumLoss != 0:
		res.ProfitFactor = math.Abs(sumWin / sumLoss)
	case res.Wins > 0:
		res.ProfitFactor = math.Inf(1)
	default:
		res.ProfitFactor = 0
	}
}
