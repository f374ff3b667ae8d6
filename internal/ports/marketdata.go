package ports

import (
	"context"

	"fxSignalBot/internal/domain"
)

// MarketDataClient supplies normalized candle and tick data. Implementations
// are responsible for any source-specific reordering so candles always arrive
// chronologically, oldest first.
type MarketDataClient interface {
	// GetCandles retrieves up to limit historical candles for the symbol and
	// interval, oldest first.
	GetCandles(ctx context.Context, symbol, interval string, limit int) ([]domain.Candle, error)

	// StreamTicks starts a live price stream for the symbol. Ticks are
	// delivered to handler one at a time; stream errors go to errHandler.
	// Returns channels to observe (doneCh) and request (stopCh) shutdown.
	StreamTicks(ctx context.Context, symbol string, handler func(tick domain.Tick), errHandler func(err error)) (doneCh chan struct{}, stopCh chan struct{}, err error)
}

// Notifier delivers user-facing messages to the chat collaborator.
// The core hands over plain records; formatting is the consumer's concern.
type Notifier interface {
	// NotifySignal reports a freshly generated signal.
	NotifySignal(ctx context.Context, sig *domain.Signal) error
	// NotifyTradeClosed reports an auto- or manually-closed trade.
	NotifyTradeClosed(ctx context.Context, trade *domain.ClosedTrade) error
}
