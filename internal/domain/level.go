package domain

// LevelKind distinguishes support from resistance levels.
type LevelKind string

const (
	LevelSupport    LevelKind = "support"
	LevelResistance LevelKind = "resistance"
)

// SRLevel is a clustered support/resistance price band derived from pivot
// detection. Levels are recomputed per candle window, never persisted.
type SRLevel struct {
	Price    float64   // Arithmetic mean of the member pivot prices
	Kind     LevelKind // Majority vote of the member pivots, ties favour support
	Strength int       // Number of pivots merged into this level
}
