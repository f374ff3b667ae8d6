package analytics

import (
	"math"
	"sort"

	"fxSignalBot/internal/domain"
)

// PerformanceMetrics summarizes a closed-trade history.
type PerformanceMetrics struct {
	TotalTrades   int
	Wins          int
	Losses        int
	WinRate       float64
	TotalPNL      float64
	AverageWin    float64
	AverageLoss   float64
	ProfitFactor  float64 // +Inf with wins and no losses, 0 with neither
	WorstTradePNL float64 // Single worst per-trade P&L
	BestTradePNL  float64
	Expectancy    float64 // WinRate*AvgWin + (1-WinRate)*AvgLoss

	MaxConsecutiveWins   int
	MaxConsecutiveLosses int

	FinalBalance float64
	EquityCurve  []float64 // Balance after each trade, seeded with the initial balance
}

// Analyze computes performance metrics over a trade history. Trades are
// processed oldest first; an unsorted slice is sorted by close time without
// mutating the caller's slice.
func Analyze(trades []*domain.ClosedTrade, initialBalance float64) *PerformanceMetrics {
	m := &PerformanceMetrics{
		FinalBalance: initialBalance,
		EquityCurve:  []float64{initialBalance},
	}
	if len(trades) == 0 {
		return m
	}

	ordered := append([]*domain.ClosedTrade(nil), trades...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ClosedAt.Before(ordered[j].ClosedAt)
	})

	var sumWin, sumLoss float64
	var winStreak, lossStreak int
	for _, tr := range ordered {
		m.TotalTrades++
		m.TotalPNL += tr.PNL
		m.FinalBalance += tr.PNL
		m.EquityCurve = append(m.EquityCurve, m.FinalBalance)

		if tr.Result == domain.ResultWin {
			m.Wins++
			sumWin += tr.PNL
			winStreak++
			lossStreak = 0
		} else {
			m.Losses++
			sumLoss += tr.PNL
			lossStreak++
			winStreak = 0
		}
		if winStreak > m.MaxConsecutiveWins {
			m.MaxConsecutiveWins = winStreak
		}
		if lossStreak > m.MaxConsecutiveLosses {
			m.MaxConsecutiveLosses = lossStreak
		}
		if tr.PNL < m.WorstTradePNL {
			m.WorstTradePNL = tr.PNL
		}
		if tr.PNL > m.BestTradePNL {
			m.BestTradePNL = tr.PNL
		}
	}

	m.WinRate = float64(m.Wins) / float64(m.TotalTrades)
	if m.Wins > 0 {
		m.AverageWin = sumWin / float64(m.Wins)
	}
	if m.Losses > 0 {
		m.AverageLoss = sumLoss / float64(m.Losses)
	}
	switch {
	case sumLoss != 0:
		m.ProfitFactor = math.Abs(sumWin / sumLoss)
	case m.Wins > 0:
		m.ProfitFactor = math.Inf(1)
	}
	m.Expectancy = m.WinRate*m.AverageWin + (1-m.WinRate)*m.AverageLoss

	return m
}
