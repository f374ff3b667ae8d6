package simfeed

import (
	"context"
	"testing"
	"time"

	"fxSignalBot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopLogger struct{}

func (noopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (noopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (noopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (noopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func newTestFeed(t *testing.T) *Feed {
	t.Helper()
	f, err := New(Config{
		Logger:       noopLogger{},
		StartPrice:   2400,
		Volatility:   0.0005,
		TickInterval: time.Millisecond,
		Seed:         42,
	})
	require.NoError(t, err)
	return f
}

func TestGetCandlesShape(t *testing.T) {
	f := newTestFeed(t)

	candles, err := f.GetCandles(context.Background(), "XAUUSD", "1m", 200)
	require.NoError(t, err)
	require.Len(t, candles, 200)

	for i, c := range candles {
		assert.GreaterOrEqual(t, c.High, c.Open, "candle %d", i)
		assert.GreaterOrEqual(t, c.High, c.Close, "candle %d", i)
		assert.LessOrEqual(t, c.Low, c.Open, "candle %d", i)
		assert.LessOrEqual(t, c.Low, c.Close, "candle %d", i)
		assert.Positive(t, c.Volume, "candle %d", i)
		if i > 0 {
			assert.Equal(t, int64(60_000), c.Time-candles[i-1].Time, "candle spacing at %d", i)
			assert.Equal(t, candles[i-1].Close, c.Open, "walk continuity at %d", i)
		}
	}
}

func TestGetCandlesReproducible(t *testing.T) {
	f := newTestFeed(t)
	ctx := context.Background()

	a, err := f.GetCandles(ctx, "XAUUSD", "1m", 50)
	require.NoError(t, err)
	b, err := f.GetCandles(ctx, "XAUUSD", "1m", 50)
	require.NoError(t, err)

	for i := range a {
		assert.Equal(t, a[i].Close, b[i].Close, "seeded walk should repeat at %d", i)
	}
}

func TestGetCandlesRejectsBadArgs(t *testing.T) {
	f := newTestFeed(t)
	ctx := context.Background()

	_, err := f.GetCandles(ctx, "XAUUSD", "1m", 0)
	assert.Error(t, err)

	_, err = f.GetCandles(ctx, "XAUUSD", "7m", 10)
	assert.Error(t, err)
}

func TestStreamTicksDeliversAndStops(t *testing.T) {
	f := newTestFeed(t)

	ticks := make(chan domain.Tick, 100)
	doneCh, stopCh, err := f.StreamTicks(context.Background(), "XAUUSD",
		func(tick domain.Tick) { ticks <- tick },
		func(err error) { t.Errorf("unexpected stream error: %v", err) })
	require.NoError(t, err)

	var first domain.Tick
	select {
	case first = <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatal("no tick delivered")
	}
	assert.Equal(t, "XAUUSD", first.Symbol)
	assert.Positive(t, first.Price)

	close(stopCh)
	select {
	case <-doneCh:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop")
	}
}
