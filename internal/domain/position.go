package domain

import "time"

// Position is an open virtual trade owned by the ledger. CurrentPrice and the
// unrealized P&L fields are recomputed on every incoming tick; everything
// else is fixed at open time (no trailing stop).
type Position struct {
	ID             int64   // Unique, monotonically assigned by the ledger
	Side           Side    // BUY or SELL
	Symbol         string  // e.g. "XAUUSD", "EURUSD"
	EntryPrice     float64 // Price at which the position was opened
	LotSize        float64 // Multiplier against the symbol's contract size
	StopLoss       float64 // Auto-close price at a loss
	TakeProfit     float64 // Auto-close price at a profit
	CurrentPrice   float64 // Last-known price for the position's symbol
	UnrealizedPNL  float64
	UnrealizedPct  float64 // Signed price move relative to entry, percent
	OpenedAt       time.Time
}

// PNLAt returns the profit/loss of the position at the given price using the
// symbol's contract size.
func (p *Position) PNLAt(price, contractSize float64) float64 {
	if p.Side == Sell {
		return (p.EntryPrice - price) * p.LotSize * contractSize
	}
	return (price - p.EntryPrice) * p.LotSize * contractSize
}

// MovePctAt returns the signed percent move from entry at the given price,
// positive when the move favours the position.
func (p *Position) MovePctAt(price float64) float64 {
	if p.EntryPrice == 0 {
		return 0
	}
	pct := (price - p.EntryPrice) / p.EntryPrice * 100
	if p.Side == Sell {
		pct = -pct
	}
	return pct
}
