package risk

import (
	"fmt"

	"fxSignalBot/internal/domain"
	"fxSignalBot/internal/ports"
)

// Config bounds what the orchestrator will accept before touching the ledger.
type Config struct {
	MaxOpenPositions int
	// MarginFraction estimates the balance consumed by a position as
	// lot * contractSize * price * MarginFraction. Zero disables the
	// balance-sufficiency check.
	MarginFraction float64
}

// Validator rejects orders that must never reach the position ledger: the
// ledger itself assumes valid input, so every user-facing open request goes
// through here first.
type Validator struct {
	cfg   Config
	specs map[string]domain.SymbolSpec
}

// New creates a Validator over the known instrument table.
func New(cfg Config, specs []domain.SymbolSpec) (*Validator, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("at least one symbol spec is required")
	}
	v := &Validator{cfg: cfg, specs: make(map[string]domain.SymbolSpec, len(specs))}
	for _, s := range specs {
		v.specs[s.Symbol] = s
	}
	return v, nil
}

// Spec returns the instrument spec for a symbol.
func (v *Validator) Spec(symbol string) (domain.SymbolSpec, bool) {
	s, ok := v.specs[symbol]
	return s, ok
}

// ValidateOpen checks symbol existence, lot-size bounds, the open-position
// cap and balance sufficiency for a prospective trade.
func (v *Validator) ValidateOpen(symbol string, lotSize, price, balance float64, openPositions int) error {
	spec, ok := v.specs[symbol]
	if !ok {
		return fmt.Errorf("validate open %q: %w", symbol, ports.ErrUnknownSymbol)
	}
	if lotSize < spec.MinLot || lotSize > spec.MaxLot {
		return fmt.Errorf("lot %.2f for %s outside [%.2f, %.2f]: %w",
			lotSize, symbol, spec.MinLot, spec.MaxLot, ports.ErrLotSizeOutOfRange)
	}
	if v.cfg.MaxOpenPositions > 0 && openPositions >= v.cfg.MaxOpenPositions {
		return fmt.Errorf("already %d open: %w", openPositions, ports.ErrMaxPositionsReached)
	}
	if v.cfg.MarginFraction > 0 {
		required := lotSize * spec.ContractSize * price * v.cfg.MarginFraction
		if required > balance {
			return fmt.Errorf("need %.2f, have %.2f: %w", required, balance, ports.ErrInsufficientBalance)
		}
	}
	return nil
}
