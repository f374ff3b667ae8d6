package domain

// Side represents the direction of a signal or position (BUY or SELL).
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// ExitReason indicates why a position was closed.
type ExitReason string

const (
	ExitReasonStopLoss   ExitReason = "stop_loss"
	ExitReasonTakeProfit ExitReason = "take_profit"
	ExitReasonManual     ExitReason = "manual_close"
)

// TradeResult classifies a closed trade by realized P&L.
type TradeResult string

const (
	ResultWin  TradeResult = "win"
	ResultLoss TradeResult = "loss"
)

// ResultFor returns the win/loss classification for a realized P&L.
// A break-even trade counts as a loss.
func ResultFor(pnl float64) TradeResult {
	if pnl > 0 {
		return ResultWin
	}
	return ResultLoss
}
