package backtest

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxSignalBot/internal/adapters/logger"
	"fxSignalBot/internal/domain"
	"fxSignalBot/internal/indicators"
	"fxSignalBot/internal/ledger"
	"fxSignalBot/internal/signal"
)

func newTestReplayer(t *testing.T) *Replayer {
	t.Helper()
	r, err := New(domain.DefaultSymbolSpecs(), signal.DefaultConfig(), logger.NewStdLogger(logger.LevelError))
	require.NoError(t, err)
	return r
}

func defaultParams() Params {
	return Params{StopLossPct: 0.002, TakeProfitPct: 0.004, LotSize: 0.1, StartingBalance: 10000}
}

// seriesFromCloses builds candles whose open is the previous close, with the
// high/low spanning the open-close range.
func seriesFromCloses(closes []float64) []domain.Candle {
	out := make([]domain.Candle, len(closes))
	prev := closes[0]
	for i, c := range closes {
		out[i] = domain.Candle{
			Time:   int64(i) * 60000,
			Open:   prev,
			High:   math.Max(prev, c),
			Low:    math.Min(prev, c),
			Close:  c,
			Volume: 100,
		}
		prev = c
	}
	return out
}

func wavySeries(n int) []domain.Candle {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 2400 + 30*math.Sin(float64(i)/7) + 10*math.Sin(float64(i)/3)
	}
	return seriesFromCloses(closes)
}

func TestRunEmptyWindow(t *testing.T) {
	r := newTestReplayer(t)
	res, err := r.Run(context.Background(), "EURUSD", nil, defaultParams())
	require.NoError(t, err)

	assert.Empty(t, res.Signals)
	assert.Empty(t, res.Trades)
	assert.Zero(t, res.WinRate)
	assert.Zero(t, res.ProfitFactor)
	assert.Equal(t, 10000.0, res.FinalBalance)
	assert.Equal(t, []float64{10000}, res.EquityCurve)
}

func TestRunUnknownSymbol(t *testing.T) {
	r := newTestReplayer(t)
	_, err := r.Run(context.Background(), "NOPE", wavySeries(100), defaultParams())
	assert.Error(t, err)
}

func TestRunSignalParityWithLiveGenerator(t *testing.T) {
	candles := wavySeries(300)
	r := newTestReplayer(t)

	res, err := r.Run(context.Background(), "XAUUSD", candles, defaultParams())
	require.NoError(t, err)

	// The standalone generator over the same window must produce the exact
	// same signals the backtest acted on.
	gen, err := signal.New(signal.DefaultConfig(), logger.NewStdLogger(logger.LevelError))
	require.NoError(t, err)
	enriched := indicators.Enrich(candles)
	levels := indicators.SupportResistance(candles, indicators.DefaultPivotLookback)
	live := gen.Generate(context.Background(), enriched, levels)

	assert.Equal(t, live, res.Signals)
}

func TestRunDecliningSeries(t *testing.T) {
	// Each close 0.05% below the prior one.
	closes := make([]float64, 100)
	closes[0] = 2400
	for i := 1; i < len(closes); i++ {
		closes[i] = closes[i-1] * 0.9995
	}
	candles := seriesFromCloses(closes)

	r := newTestReplayer(t)
	res, err := r.Run(context.Background(), "XAUUSD", candles, defaultParams())
	require.NoError(t, err)

	for _, sig := range res.Signals {
		assert.NotEqual(t, domain.Buy, sig.Side, "declining series must never signal BUY")
	}
	for _, tr := range res.Trades {
		assert.Equal(t, domain.Sell, tr.Side)
	}

	var sum float64
	for _, tr := range res.Trades {
		sum += tr.PNL
	}
	assert.InDelta(t, 10000.0+sum, res.FinalBalance, 1e-9)
	assert.Len(t, res.EquityCurve, len(res.Trades)+1)
}

func TestRunAccounting(t *testing.T) {
	candles := wavySeries(400)
	r := newTestReplayer(t)
	res, err := r.Run(context.Background(), "XAUUSD", candles, defaultParams())
	require.NoError(t, err)

	assert.Equal(t, len(res.Trades), res.TotalTrades)
	assert.Equal(t, res.TotalTrades, res.Wins+res.Losses)
	var sum, worst float64
	for _, tr := range res.Trades {
		sum += tr.PNL
		if tr.PNL < worst {
			worst = tr.PNL
		}
	}
	assert.InDelta(t, sum, res.TotalPNL, 1e-9)
	assert.InDelta(t, 10000.0+sum, res.FinalBalance, 1e-9)
	assert.Equal(t, worst, res.WorstTradePNL)
	if res.TotalTrades > 0 {
		assert.InDelta(t, float64(res.Wins)/float64(res.TotalTrades), res.WinRate, 1e-9)
	}
}

func TestRangeExitStopLossPriority(t *testing.T) {
	// A candle wide enough to cross both levels must fill at the stop.
	buy := ledger.SyntheticPosition(1, domain.Buy, "XAUUSD", 2400, 0.1, 0.002, 0.004)
	wide := domain.Candle{Time: 0, Open: 2400, High: 2420, Low: 2380, Close: 2400, Volume: 1}

	price, reason, hit := rangeExit(buy, wide)
	require.True(t, hit)
	assert.Equal(t, domain.ExitReasonStopLoss, reason)
	assert.Equal(t, buy.StopLoss, price)

	sell := ledger.SyntheticPosition(2, domain.Sell, "XAUUSD", 2400, 0.002, 0.002, 0.004)
	price, reason, hit = rangeExit(sell, wide)
	require.True(t, hit)
	assert.Equal(t, domain.ExitReasonStopLoss, reason)
	assert.Equal(t, sell.StopLoss, price)
}

func TestRangeExitTakeProfit(t *testing.T) {
	buy := ledger.SyntheticPosition(1, domain.Buy, "XAUUSD", 2400, 0.1, 0.002, 0.004)
	up := domain.Candle{Time: 0, Open: 2401, High: 2415, Low: 2399, Close: 2414, Volume: 1}

	price, reason, hit := rangeExit(buy, up)
	require.True(t, hit)
	assert.Equal(t, domain.ExitReasonTakeProfit, reason)
	assert.Equal(t, buy.TakeProfit, price)

	flat := domain.Candle{Time: 0, Open: 2400, High: 2401, Low: 2399, Close: 2400, Volume: 1}
	_, _, hit = rangeExit(buy, flat)
	assert.False(t, hit)
}

func TestSweepOrdersByScore(t *testing.T) {
	candles := wavySeries(200)
	r := newTestReplayer(t)

	results, err := r.Sweep(context.Background(), "XAUUSD", candles, SweepConfig{
		StopLoss:        SweepRange{Min: 0.002, Max: 0.004, Step: 0.001},
		TakeProfit:      SweepRange{Min: 0.004, Max: 0.008, Step: 0.002},
		LotSize:         0.1,
		StartingBalance: 10000,
	})
	require.NoError(t, err)
	require.Len(t, results, 9)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestSweepRejectsBadStep(t *testing.T) {
	r := newTestReplayer(t)
	_, err := r.Sweep(context.Background(), "XAUUSD", wavySeries(50), SweepConfig{
		StopLoss:   SweepRange{Min: 0.002, Max: 0.004, Step: 0},
		TakeProfit: SweepRange{Min: 0.004, Max: 0.008, Step: 0.002},
	})
	assert.Error(t, err)
}
