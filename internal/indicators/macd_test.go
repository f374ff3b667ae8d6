package indicators

import (
	"math"
	"testing"

	"fxSignalBot/internal/domain"
)

func macdTestCandles(n int) []domain.Candle {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + 5*math.Sin(float64(i)/4)
	}
	return candlesFromCloses(closes...)
}

func TestMACDAvailability(t *testing.T) {
	candles := macdTestCandles(60)
	res := MACD(candles, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)

	// MACD line needs the slow EMA, seeded at index 25. The signal line is
	// seeded 8 indices later, at index 33.
	macdStart := DefaultMACDSlow - 1
	signalStart := macdStart + DefaultMACDSignal - 1

	for i := 0; i < macdStart; i++ {
		if !math.IsNaN(res.MACD[i]) {
			t.Errorf("MACD available too early at index %d", i)
		}
	}
	for i := macdStart; i < len(candles); i++ {
		if math.IsNaN(res.MACD[i]) {
			t.Errorf("MACD unavailable at index %d", i)
		}
	}
	for i := 0; i < signalStart; i++ {
		if !math.IsNaN(res.Signal[i]) {
			t.Errorf("signal line available too early at index %d", i)
		}
	}
	for i := signalStart; i < len(candles); i++ {
		if math.IsNaN(res.Signal[i]) {
			t.Errorf("signal line unavailable at index %d", i)
		}
	}
}

func TestMACDHistogramIdentity(t *testing.T) {
	candles := macdTestCandles(80)
	res := MACD(candles, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)

	for i := range candles {
		bothAvailable := !math.IsNaN(res.MACD[i]) && !math.IsNaN(res.Signal[i])
		if !bothAvailable {
			if !math.IsNaN(res.Histogram[i]) {
				t.Errorf("histogram available at index %d without both inputs", i)
			}
			continue
		}
		want := res.MACD[i] - res.Signal[i]
		if math.Abs(res.Histogram[i]-want) > 1e-12 {
			t.Errorf("histogram mismatch at index %d: got %f, want %f", i, res.Histogram[i], want)
		}
	}
}

func TestMACDSignalSeed(t *testing.T) {
	candles := macdTestCandles(40)
	res := MACD(candles, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)

	// The seed is the SMA of the first 9 available MACD values, not an EMA
	// started at index 0.
	macdStart := DefaultMACDSlow - 1
	signalStart := macdStart + DefaultMACDSignal - 1
	var sum float64
	for i := macdStart; i <= signalStart; i++ {
		sum += res.MACD[i]
	}
	want := sum / float64(DefaultMACDSignal)
	if math.Abs(res.Signal[signalStart]-want) > 1e-12 {
		t.Errorf("signal seed mismatch: got %f, want %f", res.Signal[signalStart], want)
	}
}
