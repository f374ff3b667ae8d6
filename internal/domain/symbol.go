package domain

// SymbolSpec describes a tradable instrument. ContractSize converts a price
// move into money per lot: 100 for metals quoted in ounce-lots, 100000 for
// standard currency pairs.
type SymbolSpec struct {
	Symbol       string  `yaml:"symbol"`
	ContractSize float64 `yaml:"contract_size"`
	MinLot       float64 `yaml:"min_lot"`
	MaxLot       float64 `yaml:"max_lot"`
	Precision    int     `yaml:"precision"` // Display precision for prices
}

// DefaultSymbolSpecs returns the built-in instrument table used when no
// symbols file is configured.
func DefaultSymbolSpecs() []SymbolSpec {
	return []SymbolSpec{
		{Symbol: "XAUUSD", ContractSize: 100, MinLot: 0.01, MaxLot: 10, Precision: 2},
		{Symbol: "XAGUSD", ContractSize: 5000, MinLot: 0.01, MaxLot: 10, Precision: 3},
		{Symbol: "EURUSD", ContractSize: 100000, MinLot: 0.01, MaxLot: 10, Precision: 5},
		{Symbol: "GBPUSD", ContractSize: 100000, MinLot: 0.01, MaxLot: 10, Precision: 5},
		{Symbol: "USDJPY", ContractSize: 100000, MinLot: 0.01, MaxLot: 10, Precision: 3},
	}
}
