package ledger

import (
	"fmt"
	"time"

	"fxSignalBot/internal/domain"
	"fxSignalBot/internal/ports"
)

// Ledger owns the virtual open-position set, the closed-trade history and the
// running balance. It performs no parameter validation: lot bounds, balance
// sufficiency and symbol existence are checked by the orchestrator before a
// position reaches Open. All methods are synchronous; the caller serializes
// ticks.
type Ledger struct {
	specs           map[string]domain.SymbolSpec
	startingBalance float64
	balance         float64
	nextID          int64
	open            []*domain.Position // Insertion order, ids strictly increasing
	lastPrice       map[string]float64
	history         []*domain.ClosedTrade
}

// New creates an empty ledger with the given starting balance.
func New(specs []domain.SymbolSpec, startingBalance float64) (*Ledger, error) {
	if startingBalance <= 0 {
		return nil, fmt.Errorf("starting balance must be positive, got %f", startingBalance)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("at least one symbol spec is required")
	}
	l := &Ledger{
		specs:           make(map[string]domain.SymbolSpec, len(specs)),
		startingBalance: startingBalance,
		balance:         startingBalance,
		nextID:          1,
		lastPrice:       make(map[string]float64),
	}
	for _, s := range specs {
		l.specs[s.Symbol] = s
	}
	return l, nil
}

// FromSnapshot restores a ledger from persisted state.
func FromSnapshot(specs []domain.SymbolSpec, snap *ports.LedgerSnapshot) (*Ledger, error) {
	l, err := New(specs, snap.StartingBalance)
	if err != nil {
		return nil, err
	}
	l.balance = snap.Balance
	l.nextID = snap.NextPositionID
	for _, p := range snap.OpenPositions {
		cp := *p
		l.open = append(l.open, &cp)
		if cp.ID >= l.nextID {
			l.nextID = cp.ID + 1
		}
	}
	for _, t := range snap.History {
		ct := *t
		l.history = append(l.history, &ct)
	}
	return l, nil
}

// Snapshot serializes the full ledger state for persistence.
func (l *Ledger) Snapshot() *ports.LedgerSnapshot {
	snap := &ports.LedgerSnapshot{
		StartingBalance: l.startingBalance,
		Balance:         l.balance,
		NextPositionID:  l.nextID,
	}
	for _, p := range l.open {
		cp := *p
		snap.OpenPositions = append(snap.OpenPositions, &cp)
	}
	for _, t := range l.history {
		ct := *t
		snap.History = append(snap.History, &ct)
	}
	return snap
}

// Open creates a new virtual position. Stop-loss and take-profit are fixed
// here and never recalculated: a BUY subtracts slPct and adds tpPct, a SELL
// is mirrored.
func (l *Ledger) Open(side domain.Side, symbol string, price, lotSize, slPct, tpPct float64) (*domain.Position, error) {
	if _, ok := l.specs[symbol]; !ok {
		return nil, fmt.Errorf("open %s: %w", symbol, ports.ErrUnknownSymbol)
	}

	pos := SyntheticPosition(l.nextID, side, symbol, price, lotSize, slPct, tpPct)
	pos.OpenedAt = time.Now().UTC()
	l.nextID++
	l.open = append(l.open, pos)

	cp := *pos
	return &cp, nil
}

// UpdateOnTick records the tick as the last-known price for its symbol,
// recomputes unrealized P&L for every open position from its own symbol's
// last-known price, and evaluates SL/TP only for positions on the tick's
// symbol. Stop-loss is checked before take-profit, first match wins.
// Returns the trades closed by this tick, in position order.
func (l *Ledger) UpdateOnTick(symbol string, price float64) []*domain.ClosedTrade {
	l.lastPrice[symbol] = price

	var closed []*domain.ClosedTrade
	remaining := l.open[:0]
	for _, pos := range l.open {
		px, ok := l.lastPrice[pos.Symbol]
		if !ok {
			px = pos.CurrentPrice
		}
		l.mark(pos, px)

		if pos.Symbol != symbol {
			remaining = append(remaining, pos)
			continue
		}
		if reason, hit := l.trigger(pos, price); hit {
			closed = append(closed, l.realize(pos, price, reason))
			continue
		}
		remaining = append(remaining, pos)
	}
	l.open = remaining
	return closed
}

// Close settles a position at the caller-supplied price (manual close).
func (l *Ledger) Close(id int64, price float64) (*domain.ClosedTrade, error) {
	for i, pos := range l.open {
		if pos.ID != id {
			continue
		}
		l.open = append(l.open[:i], l.open[i+1:]...)
		return l.realize(pos, price, domain.ExitReasonManual), nil
	}
	return nil, fmt.Errorf("close position %d: %w", id, ports.ErrNotFound)
}

// SyntheticPosition builds a position record with the SL/TP placement rule
// shared by the live ledger and the backtest replayer: a BUY subtracts slPct
// for the stop and adds tpPct for the target, a SELL is mirrored.
func SyntheticPosition(id int64, side domain.Side, symbol string, price, lotSize, slPct, tpPct float64) *domain.Position {
	stopLoss := price * (1 - slPct)
	takeProfit := price * (1 + tpPct)
	if side == domain.Sell {
		stopLoss = price * (1 + slPct)
		takeProfit = price * (1 - tpPct)
	}
	return &domain.Position{
		ID:           id,
		Side:         side,
		Symbol:       symbol,
		EntryPrice:   price,
		LotSize:      lotSize,
		StopLoss:     stopLoss,
		TakeProfit:   takeProfit,
		CurrentPrice: price,
	}
}

// Balance returns the current running balance.
func (l *Ledger) Balance() float64 { return l.balance }

// StartingBalance returns the balance the ledger was seeded with.
func (l *Ledger) StartingBalance() float64 { return l.startingBalance }

// OpenPositions returns copies of the open positions in id order.
func (l *Ledger) OpenPositions() []*domain.Position {
	out := make([]*domain.Position, 0, len(l.open))
	for _, p := range l.open {
		cp := *p
		out = append(out, &cp)
	}
	return out
}

// History returns copies of the closed trades, oldest first.
func (l *Ledger) History() []*domain.ClosedTrade {
	out := make([]*domain.ClosedTrade, 0, len(l.history))
	for _, t := range l.history {
		ct := *t
		out = append(out, &ct)
	}
	return out
}

// ContractSize returns the contract size for a known symbol, 0 otherwise.
func (l *Ledger) ContractSize(symbol string) float64 {
	return l.specs[symbol].ContractSize
}

// mark refreshes the position's current price and unrealized P&L.
func (l *Ledger) mark(pos *domain.Position, price float64) {
	pos.CurrentPrice = price
	pos.UnrealizedPNL = pos.PNLAt(price, l.specs[pos.Symbol].ContractSize)
	pos.UnrealizedPct = pos.MovePctAt(price)
}

// trigger reports whether the tick price hits the position's stop-loss or
// take-profit. Stop-loss has priority; a position can never be flagged for
// both on the same tick.
func (l *Ledger) trigger(pos *domain.Position, price float64) (domain.ExitReason, bool) {
	if pos.Side == domain.Sell {
		if price >= pos.StopLoss {
			return domain.ExitReasonStopLoss, true
		}
		if price <= pos.TakeProfit {
			return domain.ExitReasonTakeProfit, true
		}
		return "", false
	}
	if price <= pos.StopLoss {
		return domain.ExitReasonStopLoss, true
	}
	if price >= pos.TakeProfit {
		return domain.ExitReasonTakeProfit, true
	}
	return "", false
}

// realize converts a position into a ClosedTrade at the exact exit price,
// updates the balance exactly once and appends to the history.
func (l *Ledger) realize(pos *domain.Position, exitPrice float64, reason domain.ExitReason) *domain.ClosedTrade {
	pnl := pos.PNLAt(exitPrice, l.specs[pos.Symbol].ContractSize)
	l.balance += pnl

	trade := &domain.ClosedTrade{
		PositionID: pos.ID,
		Side:       pos.Side,
		Symbol:     pos.Symbol,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  exitPrice,
		LotSize:    pos.LotSize,
		ExitReason: reason,
		PNL:        pnl,
		PNLPct:     pos.MovePctAt(exitPrice),
		Result:     domain.ResultFor(pnl),
		OpenedAt:   pos.OpenedAt,
		ClosedAt:   time.Now().UTC(),
		Balance:    l.balance,
	}
	l.history = append(l.history, trade)
	return trade
}
