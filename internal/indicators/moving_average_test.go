package indicators

import (
	"math"
	"testing"

	"fxSignalBot/internal/domain"
)

func candlesFromCloses(closes ...float64) []domain.Candle {
	out := make([]domain.Candle, len(closes))
	for i, c := range closes {
		out[i] = domain.Candle{Time: int64(i) * 60000, Open: c, High: c, Low: c, Close: c, Volume: 1}
	}
	return out
}

func TestSMA(t *testing.T) {
	candles := candlesFromCloses(100, 102, 101, 103, 104)

	tests := []struct {
		name     string
		period   int
		index    int
		expected float64
		isNaN    bool
	}{
		{name: "unavailable before window fills", period: 3, index: 0, isNaN: true},
		{name: "unavailable at period-2", period: 3, index: 1, isNaN: true},
		{name: "first value at period-1", period: 3, index: 2, expected: 101.0},
		{name: "rolls forward", period: 3, index: 3, expected: 102.0},
		{name: "last value", period: 3, index: 4, expected: 102.666667},
		{name: "period longer than data", period: 6, index: 4, isNaN: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := SMA(candles, tt.period)
			if len(out) != len(candles) {
				t.Fatalf("expected %d values, got %d", len(candles), len(out))
			}
			got := out[tt.index]
			if tt.isNaN {
				if !math.IsNaN(got) {
					t.Errorf("expected NaN at index %d, got %f", tt.index, got)
				}
				return
			}
			if math.Abs(got-tt.expected) > 0.0001 {
				t.Errorf("expected %f at index %d, got %f", tt.expected, tt.index, got)
			}
		})
	}
}

func TestEMA(t *testing.T) {
	// Hand-computed: seed at index 2 = SMA(100,102,101) = 101, k = 0.5,
	// then 103*0.5+101*0.5 = 102 and 104*0.5+102*0.5 = 103.
	candles := candlesFromCloses(100, 102, 101, 103, 104)
	out := EMA(candles, 3)

	for i := 0; i < 2; i++ {
		if !math.IsNaN(out[i]) {
			t.Errorf("expected NaN at index %d before seed, got %f", i, out[i])
		}
	}
	expected := []float64{101.0, 102.0, 103.0}
	for i, want := range expected {
		got := out[i+2]
		if math.Abs(got-want) > 0.0001 {
			t.Errorf("index %d: expected %f, got %f", i+2, want, got)
		}
	}
}

func TestEMAInsufficientData(t *testing.T) {
	out := EMA(candlesFromCloses(100, 101), 3)
	for i, v := range out {
		if !math.IsNaN(v) {
			t.Errorf("expected NaN at index %d, got %f", i, v)
		}
	}
}
