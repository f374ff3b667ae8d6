package domain

import "math"

// Candle represents a single OHLCV candlestick.
// Candle sequences are always chronological, oldest first; only the most
// recent (in-progress) candle of a live series may still mutate.
type Candle struct {
	Time   int64   // Start of the interval, epoch milliseconds
	Open   float64 // Opening price
	High   float64 // Highest price
	Low    float64 // Lowest price
	Close  float64 // Closing price
	Volume int64   // Traded volume, >= 0
}

// EnrichedCandle is a Candle stamped with indicator values. An indicator
// field holds NaN while its lookback window is not yet filled.
type EnrichedCandle struct {
	Candle

	SMA20      float64
	SMA50      float64
	RSI        float64
	MACD       float64
	MACDSignal float64
	Histogram  float64
}

// HasMomentum reports whether the RSI and MACD fields are all available.
// The signal generator skips candles without full momentum data.
func (c *EnrichedCandle) HasMomentum() bool {
	return !math.IsNaN(c.RSI) && !math.IsNaN(c.MACD) && !math.IsNaN(c.MACDSignal)
}

// Tick is a single traded price observation for a symbol.
type Tick struct {
	Symbol string
	Time   int64 // Epoch milliseconds
	Price  float64
	Volume int64
}
