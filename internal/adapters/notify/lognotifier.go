package notify

import (
	"context"
	"fmt"
	"strings"

	"fxSignalBot/internal/domain"
	"fxSignalBot/internal/ports"
)

// LogNotifier implements ports.Notifier by writing formatted messages to the
// application log. It stands in wherever no chat transport is configured.
type LogNotifier struct {
	logger ports.Logger
}

// New creates a log-backed notifier.
func New(logger ports.Logger) (*LogNotifier, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for notifier")
	}
	return &LogNotifier{logger: logger}, nil
}

// NotifySignal reports a freshly generated signal.
func (n *LogNotifier) NotifySignal(ctx context.Context, sig *domain.Signal) error {
	n.logger.Info(ctx, fmt.Sprintf("SIGNAL %s @ %.5f (confidence %.0f%%)", sig.Side, sig.Price, sig.Confidence),
		map[string]interface{}{
			"score":   sig.Score,
			"rsi":     sig.RSI,
			"macd":    sig.MACD,
			"reasons": strings.Join(sig.Reasons, "; "),
		})
	return nil
}

// NotifyTradeClosed reports a closed trade.
func (n *LogNotifier) NotifyTradeClosed(ctx context.Context, trade *domain.ClosedTrade) error {
	n.logger.Info(ctx, fmt.Sprintf("TRADE CLOSED #%d %s %s: %.2f (%s)",
		trade.PositionID, trade.Side, trade.Symbol, trade.PNL, trade.ExitReason),
		map[string]interface{}{
			"entry":   trade.EntryPrice,
			"exit":    trade.ExitPrice,
			"result":  string(trade.Result),
			"balance": trade.Balance,
		})
	return nil
}
