package backtest

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"fxSignalBot/internal/domain"
)

// SweepRange defines an inclusive percentage range walked in fixed steps.
type SweepRange struct {
	Min  float64
	Max  float64
	Step float64
}

// SweepConfig configures a stop-loss/take-profit grid sweep.
type SweepConfig struct {
	StopLoss        SweepRange
	TakeProfit      SweepRange
	LotSize         float64
	StartingBalance float64
	// Score ranks a run; higher is better. Defaults to final balance with
	// bankrupt runs ranked last.
	Score func(*Result) float64
}

// SweepResult pairs one parameter combination with its backtest outcome.
type SweepResult struct {
	StopLossPct   float64
	TakeProfitPct float64
	Score         float64
	Result        *Result
}

// Sweep backtests every SL/TP combination of the grid over the same candle
// window and returns the results best first. Runs are independent and execute
// concurrently; each operates on its own synthetic position.
func (r *Replayer) Sweep(ctx context.Context, symbol string, candles []domain.Candle, cfg SweepConfig) ([]SweepResult, error) {
	if cfg.StopLoss.Step <= 0 || cfg.TakeProfit.Step <= 0 {
		return nil, fmt.Errorf("sweep steps must be positive")
	}
	score := cfg.Score
	if score == nil {
		score = func(res *Result) float64 {
			if res.FinalBalance <= 0 {
				return math.Inf(-1)
			}
			return res.FinalBalance
		}
	}

	type combo struct{ sl, tp float64 }
	var combos []combo
	for sl := cfg.StopLoss.Min; sl <= cfg.StopLoss.Max+1e-12; sl += cfg.StopLoss.Step {
		for tp := cfg.TakeProfit.Min; tp <= cfg.TakeProfit.Max+1e-12; tp += cfg.TakeProfit.Step {
			combos = append(combos, combo{sl: sl, tp: tp})
		}
	}

	results := make([]SweepResult, len(combos))
	errs := make([]error, len(combos))
	var wg sync.WaitGroup
	for idx, c := range combos {
		wg.Add(1)
		go func(idx int, c combo) {
			defer wg.Done()
			res, err := r.Run(ctx, symbol, candles, Params{
				StopLossPct:     c.sl,
				TakeProfitPct:   c.tp,
				LotSize:         cfg.LotSize,
				StartingBalance: cfg.StartingBalance,
			})
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx] = SweepResult{StopLossPct: c.sl, TakeProfitPct: c.tp, Score: score(res), Result: res}
		}(idx, c)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}
