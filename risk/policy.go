package risk

// Policy is the immutable risk limit set consumed by Evaluate. Loaded
// once per evaluation; never mutated by the engine.
type Policy struct {
	// MaxPositionPct caps collateral per position as a fraction of
	// current equity.
	MaxPositionPct float64

	MaxOpenPositions int

	// MaxExposurePct caps total open notional as a multiple of equity.
	MaxExposurePct float64

	// StopLossPct is a negative fraction of notional; a position whose
	// unrealized PnL falls to it gets closed.
	StopLossPct float64

	// MaxDrawdownPct is a negative fraction; once account drawdown
	// reaches its magnitude, new entries are paused account-wide.
	MaxDrawdownPct float64

	MaxLeverage float64

	// ConsecutiveLossLimit losses in a row on one instrument start a
	// cooldown of CooldownDays.
	ConsecutiveLossLimit int
	CooldownDays         float64
}
