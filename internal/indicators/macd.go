package indicators

import (
	"math"

	"fxSignalBot/internal/domain"
)

// Standard MACD parameters.
const (
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
)

// MACDResult holds the three MACD series, one value per input candle.
type MACDResult struct {
	MACD      []float64 // EMA(fast) - EMA(slow)
	Signal    []float64 // EMA(signalPeriod) over the MACD line
	Histogram []float64 // MACD - Signal where both are available
}

// MACD computes the Moving Average Convergence Divergence series. The MACD
// line is NaN until both EMAs are available; the signal line is an EMA over
// the MACD line seeded with the SMA of its first signalPeriod available
// values, so it starts signalPeriod-1 indices after the MACD line does.
func MACD(candles []domain.Candle, fast, slow, signalPeriod int) MACDResult {
	fastEMA := EMA(candles, fast)
	slowEMA := EMA(candles, slow)

	macdLine := nanSeries(len(candles))
	for i := range candles {
		if !math.IsNaN(fastEMA[i]) && !math.IsNaN(slowEMA[i]) {
			macdLine[i] = fastEMA[i] - slowEMA[i]
		}
	}

	signalLine := emaSeries(macdLine, signalPeriod)

	histogram := nanSeries(len(candles))
	for i := range candles {
		if !math.IsNaN(macdLine[i]) && !math.IsNaN(signalLine[i]) {
			histogram[i] = macdLine[i] - signalLine[i]
		}
	}

	return MACDResult{MACD: macdLine, Signal: signalLine, Histogram: histogram}
}
