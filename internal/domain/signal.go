package domain

// Signal is a scored BUY/SELL decision emitted by the confluence generator
// for one candle. Read-only once created.
type Signal struct {
	Index      int     // Position of the candle inside the generating window
	Time       int64   // Candle time, epoch milliseconds
	Side       Side    // BUY or SELL
	Price      float64 // Close of the signalling candle
	Confidence float64 // 0-100, derived from the absolute score
	Score      float64 // Combined SR + RSI + MACD score
	Reasons    []string

	// Indicator snapshot at the signalling candle, kept for notifications.
	RSI        float64
	MACD       float64
	MACDSignal float64
}
