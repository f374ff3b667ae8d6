package domain

import "time"

// ClosedTrade is the immutable record created when a position leaves the open
// set. Exactly one ClosedTrade exists per closed position.
type ClosedTrade struct {
	PositionID int64
	Side       Side
	Symbol     string
	EntryPrice float64
	ExitPrice  float64
	LotSize    float64
	ExitReason ExitReason
	PNL        float64 // Realized profit/loss
	PNLPct     float64 // Signed percent move from entry
	Result     TradeResult
	OpenedAt   time.Time
	ClosedAt   time.Time
	Balance    float64 // Ledger balance immediately after this close
}
