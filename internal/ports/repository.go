package ports

import (
	"context"

	"fxSignalBot/internal/domain"
)

// LedgerSnapshot is the persisted shape of the virtual ledger: balance,
// starting balance, the open position set and the closed-trade history.
// The ledger can be initialized from a snapshot and serialized back into one.
type LedgerSnapshot struct {
	StartingBalance float64
	Balance         float64
	NextPositionID  int64
	OpenPositions   []*domain.Position
	History         []*domain.ClosedTrade
}

// LedgerRepository stores and retrieves ledger state.
type LedgerRepository interface {
	// LoadSnapshot retrieves the persisted ledger state.
	// Returns nil, nil when no state has been persisted yet.
	LoadSnapshot(ctx context.Context) (*LedgerSnapshot, error)
	// SaveSnapshot persists the full ledger state, replacing any prior one.
	SaveSnapshot(ctx context.Context, snap *LedgerSnapshot) error
	// RecordTrade appends a single closed trade to the history.
	RecordTrade(ctx context.Context, trade *domain.ClosedTrade) error
	// RecentTrades retrieves the most recent closed trades, newest first.
	RecentTrades(ctx context.Context, limit int) ([]*domain.ClosedTrade, error)
}
