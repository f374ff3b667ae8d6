package simfeed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"fxSignalBot/internal/domain"
	"fxSignalBot/internal/ports"
)

// Feed implements ports.MarketDataClient with a seeded random walk. It exists
// for development and demos where no exchange connectivity is available; the
// rest of the engine cannot tell it apart from a real feed.
type Feed struct {
	logger       ports.Logger
	startPrice   float64
	volatility   float64 // per-step return bound, e.g. 0.0005
	tickInterval time.Duration
	seed         int64
}

// Config holds the synthetic feed parameters.
type Config struct {
	Logger       ports.Logger
	StartPrice   float64       // First generated price, defaults to 2400
	Volatility   float64       // Max absolute per-tick return, defaults to 0.0005
	TickInterval time.Duration // Wall-clock delay between ticks, defaults to 200ms
	Seed         int64         // Zero means seed from the clock
}

// New creates a synthetic feed.
func New(cfg Config) (*Feed, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for simulated feed")
	}
	if cfg.StartPrice <= 0 {
		cfg.StartPrice = 2400
	}
	if cfg.Volatility <= 0 {
		cfg.Volatility = 0.0005
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 200 * time.Millisecond
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return &Feed{
		logger:       cfg.Logger,
		startPrice:   cfg.StartPrice,
		volatility:   cfg.Volatility,
		tickInterval: cfg.TickInterval,
		seed:         cfg.Seed,
	}, nil
}

// GetCandles synthesizes a historical window ending now, oldest first. The
// walk is seeded so repeated calls within one process are reproducible.
func (f *Feed) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]domain.Candle, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("candle limit must be positive, got %d: %w", limit, ports.ErrInvalidRequest)
	}
	step, err := intervalDuration(interval)
	if err != nil {
		return nil, err
	}

	r := rand.New(rand.NewSource(f.seed))
	stepMs := step.Milliseconds()
	end := time.Now().UnixMilli() / stepMs * stepMs
	start := end - int64(limit)*stepMs

	candles := make([]domain.Candle, 0, limit)
	price := f.startPrice
	for i := 0; i < limit; i++ {
		open := price
		ret := (r.Float64() - 0.5) * 2 * f.volatility
		cls := open * (1 + ret)
		high := maxPrice(open, cls) * (1 + r.Float64()*f.volatility*0.5)
		low := minPrice(open, cls) * (1 - r.Float64()*f.volatility*0.5)
		candles = append(candles, domain.Candle{
			Time:   start + int64(i)*stepMs,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  cls,
			Volume: 10_000 + int64(r.Float64()*5_000),
		})
		price = cls
	}

	f.logger.Debug(ctx, "Synthetic history generated", map[string]interface{}{
		"symbol": symbol, "interval": interval, "count": len(candles),
	})
	return candles, nil
}

// StreamTicks emits random-walk ticks continuing from the end of the last
// generated history until stopped.
func (f *Feed) StreamTicks(ctx context.Context, symbol string, handler func(tick domain.Tick), errHandler func(err error)) (doneCh chan struct{}, stopCh chan struct{}, err error) {
	doneCh = make(chan struct{})
	stopCh = make(chan struct{})

	go func() {
		defer close(doneCh)

		// Continue the same walk the candle history ended on.
		r := rand.New(rand.NewSource(f.seed + 1))
		price := f.startPrice
		ticker := time.NewTicker(f.tickInterval)
		defer ticker.Stop()

		f.logger.Info(ctx, "Synthetic tick stream started", map[string]interface{}{"symbol": symbol})
		for {
			select {
			case <-ctx.Done():
				return
			case <-stopCh:
				return
			case <-ticker.C:
				ret := (r.Float64() - 0.5) * 2 * f.volatility
				price *= 1 + ret
				handler(domain.Tick{
					Symbol: symbol,
					Time:   time.Now().UnixMilli(),
					Price:  price,
					Volume: 1 + int64(r.Float64()*10),
				})
			}
		}
	}()

	return doneCh, stopCh, nil
}

func intervalDuration(interval string) (time.Duration, error) {
	switch interval {
	case "1m":
		return time.Minute, nil
	case "5m":
		return 5 * time.Minute, nil
	case "15m":
		return 15 * time.Minute, nil
	case "1h":
		return time.Hour, nil
	case "4h":
		return 4 * time.Hour, nil
	case "1d":
		return 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("unsupported interval %q: %w", interval, ports.ErrInvalidRequest)
}

func maxPrice(a, b float64) float64 {
	if a < b {
		return b
	}
	return a
}

func minPrice(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
