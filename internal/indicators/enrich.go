package indicators

import "fxSignalBot/internal/domain"

// Enrichment periods for the two trend SMAs.
const (
	shortSMAPeriod = 20
	longSMAPeriod  = 50
)

// Enrich stamps every candle with the full indicator set. Enrichment always
// recomputes over the whole window; enriched candles are never patched in
// place.
func Enrich(candles []domain.Candle) []domain.EnrichedCandle {
	sma20 := SMA(candles, shortSMAPeriod)
	sma50 := SMA(candles, longSMAPeriod)
	rsi := RSI(candles, DefaultRSIPeriod)
	macd := MACD(candles, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)

	out := make([]domain.EnrichedCandle, len(candles))
	for i, c := range candles {
		out[i] = domain.EnrichedCandle{
			Candle:     c,
			SMA20:      sma20[i],
			SMA50:      sma50[i],
			RSI:        rsi[i],
			MACD:       macd.MACD[i],
			MACDSignal: macd.Signal[i],
			Histogram:  macd.Histogram[i],
		}
	}
	return out
}
