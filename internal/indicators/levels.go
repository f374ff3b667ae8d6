package indicators

import (
	"math"
	"sort"

	"fxSignalBot/internal/domain"
)

// SupportResistance clustering parameters.
const (
	DefaultPivotLookback = 20
	clusterTolerance     = 0.002 // 0.2% relative distance
	maxLevels            = 6
)

type pivot struct {
	price float64
	kind  domain.LevelKind
}

type cluster struct {
	anchor   float64 // Price of the first member, used for merge distance
	sum      float64
	support  int
	resist   int
}

// SupportResistance detects pivot highs/lows over the candle window and
// clusters nearby pivots into levels. A candle is a pivot high when its high
// strictly exceeds every other high within lookback candles on both sides
// (pivot lows symmetrically on lows); only candles with a full window on both
// sides qualify. Pivots within 0.2% of a cluster's first member merge into
// one level. Returns at most 6 levels, strongest first.
func SupportResistance(candles []domain.Candle, lookback int) []domain.SRLevel {
	if lookback <= 0 || len(candles) < 2*lookback+1 {
		return nil
	}

	var pivots []pivot
	for i := lookback; i <= len(candles)-lookback-1; i++ {
		if isPivotHigh(candles, i, lookback) {
			pivots = append(pivots, pivot{price: candles[i].High, kind: domain.LevelResistance})
		}
		if isPivotLow(candles, i, lookback) {
			pivots = append(pivots, pivot{price: candles[i].Low, kind: domain.LevelSupport})
		}
	}

	var clusters []*cluster
	for _, p := range pivots {
		merged := false
		for _, c := range clusters {
			if math.Abs(p.price-c.anchor)/c.anchor < clusterTolerance {
				c.add(p)
				merged = true
				break
			}
		}
		if !merged {
			c := &cluster{anchor: p.price}
			c.add(p)
			clusters = append(clusters, c)
		}
	}

	levels := make([]domain.SRLevel, 0, len(clusters))
	for _, c := range clusters {
		levels = append(levels, c.level())
	}
	sort.SliceStable(levels, func(i, j int) bool {
		return levels[i].Strength > levels[j].Strength
	})
	if len(levels) > maxLevels {
		levels = levels[:maxLevels]
	}
	return levels
}

func isPivotHigh(candles []domain.Candle, i, lookback int) bool {
	for j := i - lookback; j <= i+lookback; j++ {
		if j == i {
			continue
		}
		if candles[i].High <= candles[j].High {
			return false
		}
	}
	return true
}

func isPivotLow(candles []domain.Candle, i, lookback int) bool {
	for j := i - lookback; j <= i+lookback; j++ {
		if j == i {
			continue
		}
		if candles[i].Low >= candles[j].Low {
			return false
		}
	}
	return true
}

func (c *cluster) add(p pivot) {
	c.sum += p.price
	if p.kind == domain.LevelSupport {
		c.support++
	} else {
		c.resist++
	}
}

func (c *cluster) level() domain.SRLevel {
	count := c.support + c.resist
	kind := domain.LevelSupport // Ties favour support
	if c.resist > c.support {
		kind = domain.LevelResistance
	}
	return domain.SRLevel{
		Price:    c.sum / float64(count),
		Kind:     kind,
		Strength: count,
	}
}
