package signal

import (
	"context"
	"fmt"
	"math"

	"fxSignalBot/internal/domain"
	"fxSignalBot/internal/ports"
)

// Config holds the confluence scoring parameters.
type Config struct {
	StartIndex      int     // First candle index scanned; all indicators are warm from here
	CooldownCandles int     // Same-side signals are suppressed within this many indices
	ScoreThreshold  float64 // Minimum |score| for a signal
	MinConfidence   float64 // Minimum confidence for a signal
	LevelProximity  float64 // Relative distance at which an SR level contributes
}

// DefaultConfig returns the scoring parameters used by the live bot.
func DefaultConfig() Config {
	return Config{
		StartIndex:      30,
		CooldownCandles: 5,
		ScoreThreshold:  3,
		MinConfidence:   40,
		LevelProximity:  0.003,
	}
}

// Generator scans enriched candles for confluence BUY/SELL signals. Scoring
// is fully deterministic; cooldown state lives inside a single Generate pass,
// so live and backtest runs never influence each other.
type Generator struct {
	cfg    Config
	logger ports.Logger
}

// New creates a Generator.
func New(cfg Config, logger ports.Logger) (*Generator, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for signal generator")
	}
	if cfg.StartIndex < 1 {
		return nil, fmt.Errorf("start index must be at least 1")
	}
	if cfg.CooldownCandles < 0 {
		return nil, fmt.Errorf("cooldown cannot be negative")
	}
	return &Generator{cfg: cfg, logger: logger}, nil
}

// Generate scans the window and returns signals oldest first. Candles with
// unavailable momentum indicators are skipped.
func (g *Generator) Generate(ctx context.Context, candles []domain.EnrichedCandle, levels []domain.SRLevel) []domain.Signal {
	var signals []domain.Signal
	lastSide := domain.Side("")
	lastIndex := 0

	for i := g.cfg.StartIndex; i < len(candles); i++ {
		cur := &candles[i]
		prev := &candles[i-1]
		if !cur.HasMomentum() {
			continue
		}

		var reasons []string
		score := g.scoreLevels(cur, levels, &reasons)
		score += scoreRSI(cur.RSI, &reasons)
		score += scoreMACD(cur, prev, &reasons)

		confidence := math.Min(100, math.Abs(score)*20)

		var side domain.Side
		switch {
		case score >= g.cfg.ScoreThreshold && confidence >= g.cfg.MinConfidence:
			side = domain.Buy
		case score <= -g.cfg.ScoreThreshold && confidence >= g.cfg.MinConfidence:
			side = domain.Sell
		default:
			continue
		}

		// Same-side cooldown; an opposite-side signal is never suppressed.
		if side == lastSide && i-lastIndex < g.cfg.CooldownCandles {
			g.logger.Debug(ctx, "signal suppressed by cooldown", map[string]interface{}{
				"index": i, "side": side, "sinceLast": i - lastIndex,
			})
			continue
		}

		signals = append(signals, domain.Signal{
			Index:      i,
			Time:       cur.Time,
			Side:       side,
			Price:      cur.Close,
			Confidence: confidence,
			Score:      score,
			Reasons:    reasons,
			RSI:        cur.RSI,
			MACD:       cur.MACD,
			MACDSignal: cur.MACDSignal,
		})
		lastSide = side
		lastIndex = i
	}
	return signals
}

// scoreLevels adds the strength of every nearby support below (or at) the
// close and subtracts the strength of every nearby resistance above (or at)
// the close.
func (g *Generator) scoreLevels(c *domain.EnrichedCandle, levels []domain.SRLevel, reasons *[]string) float64 {
	var score float64
	for _, lv := range levels {
		if math.Abs(lv.Price-c.Close)/c.Close >= g.cfg.LevelProximity {
			continue
		}
		switch {
		case lv.Kind == domain.LevelSupport && c.Close >= lv.Price:
			score += float64(lv.Strength)
			*reasons = append(*reasons, fmt.Sprintf("price holding above support %.5f (strength %d)", lv.Price, lv.Strength))
		case lv.Kind == domain.LevelResistance && c.Close <= lv.Price:
			score -= float64(lv.Strength)
			*reasons = append(*reasons, fmt.Sprintf("price rejected at resistance %.5f (strength %d)", lv.Price, lv.Strength))
		}
	}
	return score
}

// scoreRSI maps the RSI into momentum bands. The bands are evaluated in this
// exact priority order; boundary values 30 and 70 fall through to the inner
// single-point bands.
func scoreRSI(rsi float64, reasons *[]string) float64 {
	switch {
	case rsi < 30:
		*reasons = append(*reasons, fmt.Sprintf("RSI oversold (%.1f)", rsi))
		return 2
	case rsi < 40:
		*reasons = append(*reasons, fmt.Sprintf("RSI approaching oversold (%.1f)", rsi))
		return 1
	case rsi > 70:
		*reasons = append(*reasons, fmt.Sprintf("RSI overbought (%.1f)", rsi))
		return -2
	case rsi > 60:
		*reasons = append(*reasons, fmt.Sprintf("RSI approaching overbought (%.1f)", rsi))
		return -1
	}
	return 0
}

// scoreMACD awards the crossover score and, independently, a half-point bonus
// when the histogram magnitude grew versus the previous candle.
func scoreMACD(cur, prev *domain.EnrichedCandle, reasons *[]string) float64 {
	var score float64
	if prev.HasMomentum() {
		prevDiff := prev.MACD - prev.MACDSignal
		curDiff := cur.MACD - cur.MACDSignal
		switch {
		case prevDiff <= 0 && curDiff > 0:
			score += 2
			*reasons = append(*reasons, "MACD bullish crossover")
		case prevDiff >= 0 && curDiff < 0:
			score -= 2
			*reasons = append(*reasons, "MACD bearish crossover")
		}
	}

	if !math.IsNaN(cur.Histogram) && !math.IsNaN(prev.Histogram) &&
		math.Abs(cur.Histogram) > math.Abs(prev.Histogram) {
		switch {
		case cur.Histogram > 0:
			score += 0.5
			*reasons = append(*reasons, "MACD histogram expanding upward")
		case cur.Histogram < 0:
			score -= 0.5
			*reasons = append(*reasons, "MACD histogram expanding downward")
		}
	}
	return score
}
