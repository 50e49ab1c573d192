// market/instruments.go
package market

// Symbol identifies a funding-rate market. Only registered symbols are
// accepted by the engine; free-form strings caused grouping bugs in
// earlier metric reports.
type Symbol string

func (s Symbol) String() string { return string(s) }

// Known reports whether the symbol is in the instrument registry.
func (s Symbol) Known() bool {
	_, ok := Instruments[s]
	return ok
}

type InstrumentMeta struct {
	Symbol        Symbol
	BaseCurrency  string
	QuoteCurrency string
	// FundingIntervalHours is how often the venue settles funding.
	// Accrual math is hourly regardless; this is metadata for reporting.
	FundingIntervalHours int
	MinimumTradeSize     float64
}

var Instruments = map[Symbol]InstrumentMeta{
	"BTC-PERP": {
		Symbol:               "BTC-PERP",
		BaseCurrency:         "BTC",
		QuoteCurrency:        "USD",
		FundingIntervalHours: 8,
		MinimumTradeSize:     10,
	},
	"ETH-PERP": {
		Symbol:               "ETH-PERP",
		BaseCurrency:         "ETH",
		QuoteCurrency:        "USD",
		FundingIntervalHours: 8,
		MinimumTradeSize:     10,
	},
	"SOL-PERP": {
		Symbol:               "SOL-PERP",
		BaseCurrency:         "SOL",
		QuoteCurrency:        "USD",
		FundingIntervalHours: 1,
		MinimumTradeSize:     10,
	},
}

// Register adds an instrument to the registry. Intended for tests and
// for venues not shipped in the default table.
func Register(meta InstrumentMeta) {
	Instruments[meta.Symbol] = meta
}
