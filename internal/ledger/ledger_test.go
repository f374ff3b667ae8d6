package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxSignalBot/internal/domain"
	"fxSignalBot/internal/ports"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := New(domain.DefaultSymbolSpecs(), 10000)
	require.NoError(t, err)
	return l
}

func TestOpenComputesStops(t *testing.T) {
	tests := []struct {
		name       string
		side       domain.Side
		price      float64
		slPct      float64
		tpPct      float64
		wantSL     float64
		wantTP     float64
	}{
		{name: "BUY subtracts SL and adds TP", side: domain.Buy, price: 1.1000, slPct: 0.002, tpPct: 0.004, wantSL: 1.0978, wantTP: 1.1044},
		{name: "SELL adds SL and subtracts TP", side: domain.Sell, price: 1.1000, slPct: 0.002, tpPct: 0.004, wantSL: 1.1022, wantTP: 1.0956},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger(t)
			pos, err := l.Open(tt.side, "EURUSD", tt.price, 0.1, tt.slPct, tt.tpPct)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantSL, pos.StopLoss, 1e-9)
			assert.InDelta(t, tt.wantTP, pos.TakeProfit, 1e-9)
			assert.Equal(t, tt.price, pos.CurrentPrice)
		})
	}
}

func TestOpenUnknownSymbol(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.Open(domain.Buy, "NOPE", 1, 0.1, 0.002, 0.004)
	assert.ErrorIs(t, err, ports.ErrUnknownSymbol)
}

func TestOpenAssignsUniqueIDs(t *testing.T) {
	l := newTestLedger(t)
	p1, err := l.Open(domain.Buy, "EURUSD", 1.1, 0.1, 0.002, 0.004)
	require.NoError(t, err)
	p2, err := l.Open(domain.Sell, "XAUUSD", 2400, 0.1, 0.002, 0.004)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p1.ID)
	assert.Equal(t, int64(2), p2.ID)

	// Ids are never reused, even after a close.
	_, err = l.Close(p1.ID, 1.1)
	require.NoError(t, err)
	p3, err := l.Open(domain.Buy, "EURUSD", 1.1, 0.1, 0.002, 0.004)
	require.NoError(t, err)
	assert.Equal(t, int64(3), p3.ID)
}

func TestTakeProfitRoundTrip(t *testing.T) {
	l := newTestLedger(t)
	pos, err := l.Open(domain.Buy, "EURUSD", 1.1000, 0.1, 0.002, 0.004)
	require.NoError(t, err)

	balanceBefore := l.Balance()
	closed := l.UpdateOnTick("EURUSD", 1.1050)
	require.Len(t, closed, 1)

	trade := closed[0]
	assert.Equal(t, pos.ID, trade.PositionID)
	assert.Equal(t, domain.ExitReasonTakeProfit, trade.ExitReason)
	assert.Equal(t, domain.ResultWin, trade.Result)
	// (1.1050 - 1.1000) * 0.1 * 100000 = 50
	assert.InDelta(t, 50.0, trade.PNL, 1e-6)
	assert.InDelta(t, balanceBefore+trade.PNL, l.Balance(), 1e-9)
	assert.InDelta(t, l.Balance(), trade.Balance, 1e-9)
	assert.Empty(t, l.OpenPositions())
}

func TestStopLossCheckedBeforeTakeProfit(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.Open(domain.Sell, "XAUUSD", 2400, 0.1, 0.002, 0.004)
	require.NoError(t, err)

	// The SELL stop-loss sits at 2400 * 1.002 = 2404.8.
	closed := l.UpdateOnTick("XAUUSD", 2405)
	require.Len(t, closed, 1)
	trade := closed[0]
	assert.Equal(t, domain.ExitReasonStopLoss, trade.ExitReason)
	assert.Equal(t, domain.ResultLoss, trade.Result)
	// (2400 - 2405) * 0.1 * 100 = -50
	assert.InDelta(t, -50.0, trade.PNL, 1e-6)
	assert.Equal(t, 2405.0, trade.ExitPrice)
}

func TestUpdateOnTickMarksOtherSymbolsWithOwnPrice(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.Open(domain.Buy, "XAUUSD", 2400, 0.1, 0.01, 0.02)
	require.NoError(t, err)
	_, err = l.Open(domain.Buy, "EURUSD", 1.1000, 0.1, 0.01, 0.02)
	require.NoError(t, err)

	l.UpdateOnTick("XAUUSD", 2410)
	closed := l.UpdateOnTick("EURUSD", 1.1010)
	assert.Empty(t, closed)

	positions := l.OpenPositions()
	require.Len(t, positions, 2)
	// The EURUSD tick must not overwrite the gold position's price.
	assert.Equal(t, 2410.0, positions[0].CurrentPrice)
	assert.InDelta(t, 100.0, positions[0].UnrealizedPNL, 1e-6) // (2410-2400)*0.1*100
	assert.Equal(t, 1.1010, positions[1].CurrentPrice)
	assert.InDelta(t, 100.0, positions[1].UnrealizedPNL, 1e-6) // (1.1010-1.1000)*0.1*100000
}

func TestUpdateOnTickIdempotentWithNoPositions(t *testing.T) {
	l := newTestLedger(t)
	before := l.Balance()
	assert.Empty(t, l.UpdateOnTick("EURUSD", 1.1))
	assert.Empty(t, l.UpdateOnTick("EURUSD", 1.1))
	assert.Equal(t, before, l.Balance())
	assert.Empty(t, l.OpenPositions())
	assert.Empty(t, l.History())
}

func TestManualClose(t *testing.T) {
	l := newTestLedger(t)
	pos, err := l.Open(domain.Sell, "EURUSD", 1.1000, 0.2, 0.01, 0.02)
	require.NoError(t, err)

	trade, err := l.Close(pos.ID, 1.0950)
	require.NoError(t, err)
	assert.Equal(t, domain.ExitReasonManual, trade.ExitReason)
	// (1.1000 - 1.0950) * 0.2 * 100000 = 100
	assert.InDelta(t, 100.0, trade.PNL, 1e-6)
	assert.Equal(t, domain.ResultWin, trade.Result)

	_, err = l.Close(pos.ID, 1.0950)
	assert.True(t, errors.Is(err, ports.ErrNotFound))
}

func TestBalanceInvariant(t *testing.T) {
	l := newTestLedger(t)
	for i := 0; i < 4; i++ {
		pos, err := l.Open(domain.Buy, "EURUSD", 1.1000, 0.1, 0.002, 0.004)
		require.NoError(t, err)
		price := 1.1044 // TP
		if i%2 == 1 {
			price = 1.0978 // SL
		}
		_, err = l.Close(pos.ID, price)
		require.NoError(t, err)
	}

	var sum float64
	for _, tr := range l.History() {
		sum += tr.PNL
	}
	assert.InDelta(t, l.StartingBalance()+sum, l.Balance(), 1e-9)
}

func TestSnapshotRoundTrip(t *testing.T) {
	l := newTestLedger(t)
	pos, err := l.Open(domain.Buy, "XAUUSD", 2400, 0.5, 0.002, 0.004)
	require.NoError(t, err)
	closedPos, err := l.Open(domain.Sell, "EURUSD", 1.1000, 0.1, 0.002, 0.004)
	require.NoError(t, err)
	_, err = l.Close(closedPos.ID, 1.0956)
	require.NoError(t, err)

	snap := l.Snapshot()
	restored, err := FromSnapshot(domain.DefaultSymbolSpecs(), snap)
	require.NoError(t, err)

	assert.Equal(t, l.Balance(), restored.Balance())
	assert.Equal(t, l.StartingBalance(), restored.StartingBalance())
	require.Len(t, restored.OpenPositions(), 1)
	assert.Equal(t, pos.ID, restored.OpenPositions()[0].ID)
	require.Len(t, restored.History(), 1)

	// The restored ledger keeps assigning fresh ids.
	p, err := restored.Open(domain.Buy, "EURUSD", 1.1, 0.1, 0.002, 0.004)
	require.NoError(t, err)
	assert.Greater(t, p.ID, closedPos.ID)
}
