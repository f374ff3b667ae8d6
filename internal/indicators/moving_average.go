package indicators

import (
	"math"

	"fxSignalBot/internal/domain"
)

// SMA computes the simple moving average of closing prices. The result holds
// one value per input candle; indices before period-1 are NaN (the lookback
// window is not yet filled).
func SMA(candles []domain.Candle, period int) []float64 {
	out := nanSeries(len(candles))
	if period <= 0 || len(candles) < period {
		return out
	}

	var sum float64
	for i, c := range candles {
		sum += c.Close
		if i >= period {
			sum -= candles[i-period].Close
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA computes the exponential moving average of closing prices. It is seeded
// at index period-1 with the SMA of the first period closes; afterwards
// ema[i] = close[i]*k + ema[i-1]*(1-k) with k = 2/(period+1). Indices before
// the seed are NaN.
func EMA(candles []domain.Candle, period int) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return emaSeries(closes, period)
}

// emaSeries applies the seeded EMA recurrence to an arbitrary value series.
// Leading NaN values are skipped: seeding uses the SMA of the first period
// available values, so the seed lands period-1 indices after the first
// available one. An unavailable predecessor keeps the output unavailable.
func emaSeries(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 {
		return out
	}

	start := 0
	for start < len(values) && math.IsNaN(values[start]) {
		start++
	}
	seedAt := start + period - 1
	if seedAt >= len(values) {
		return out
	}

	var sum float64
	for i := start; i <= seedAt; i++ {
		sum += values[i]
	}
	ema := sum / float64(period)
	out[seedAt] = ema

	k := 2.0 / float64(period+1)
	for i := seedAt + 1; i < len(values); i++ {
		ema = values[i]*k + ema*(1-k)
		out[i] = ema
	}
	return out
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
