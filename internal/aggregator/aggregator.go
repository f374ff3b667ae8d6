package aggregator

import (
	"fmt"

	"fxSignalBot/internal/domain"
)

// Aggregator folds a tick stream into fixed-interval OHLCV candles for one
// (symbol, interval) pair. The newest candle stays in progress and mutates
// until a tick lands in a later bucket; completed candles are immutable.
type Aggregator struct {
	symbol     string
	intervalMs int64
	completed  []domain.Candle
	current    *domain.Candle
	maxRetain  int
}

// New creates an aggregator. maxRetain bounds the completed-candle history;
// zero means no bound.
func New(symbol string, intervalMs int64, maxRetain int) (*Aggregator, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if intervalMs <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %d", intervalMs)
	}
	return &Aggregator{symbol: symbol, intervalMs: intervalMs, maxRetain: maxRetain}, nil
}

// Symbol returns the instrument this aggregator tracks.
func (a *Aggregator) Symbol() string { return a.symbol }

// Preload seeds the aggregator with a historical candle tail. The last loaded
// candle becomes the new in-progress candle so live ticks continue it
// seamlessly.
func (a *Aggregator) Preload(candles []domain.Candle) {
	if len(candles) == 0 {
		return
	}
	a.completed = append([]domain.Candle(nil), candles[:len(candles)-1]...)
	last := candles[len(candles)-1]
	a.current = &last
	a.trim()
}

// OnTick folds one tick into the stream. Returns the candle completed by this
// tick, if any.
func (a *Aggregator) OnTick(tick domain.Tick) (completed *domain.Candle, rolled bool) {
	bucket := tick.Time / a.intervalMs * a.intervalMs

	if a.current == nil || bucket != a.current.Time/a.intervalMs*a.intervalMs {
		if a.current != nil {
			done := *a.current
			a.completed = append(a.completed, done)
			completed = &done
			rolled = true
			a.trim()
		}
		a.current = &domain.Candle{
			Time:   bucket,
			Open:   tick.Price,
			High:   tick.Price,
			Low:    tick.Price,
			Close:  tick.Price,
			Volume: tick.Volume,
		}
		return completed, rolled
	}

	if tick.Price > a.current.High {
		a.current.High = tick.Price
	}
	if tick.Price < a.current.Low {
		a.current.Low = tick.Price
	}
	a.current.Close = tick.Price
	a.current.Volume += tick.Volume
	return nil, false
}

// Candles returns up to the last n candles, oldest first, including the
// in-progress one. n <= 0 returns everything.
func (a *Aggregator) Candles(n int) []domain.Candle {
	total := len(a.completed)
	if a.current != nil {
		total++
	}
	if n <= 0 || n > total {
		n = total
	}
	out := make([]domain.Candle, 0, n)

	fromCompleted := n
	if a.current != nil {
		fromCompleted--
	}
	if fromCompleted > 0 {
		out = append(out, a.completed[len(a.completed)-fromCompleted:]...)
	}
	if a.current != nil && n > 0 {
		out = append(out, *a.current)
	}
	return out
}

func (a *Aggregator) trim() {
	if a.maxRetain > 0 && len(a.completed) > a.maxRetain {
		a.completed = a.completed[len(a.completed)-a.maxRetain:]
	}
}
