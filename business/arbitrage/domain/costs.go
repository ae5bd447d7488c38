package domain

// BridgeFeeInput is the fee schedule for one bridge step, passed to the
// bridge cost calculator independent of the market package so the
// calculator stays a pure function of its inputs.
type BridgeFeeInput struct {
	Base       float64
	Percentage float64
	Min        float64
	Max        float64
}

// StepCost is the costed breakdown of a single edge traversal, computed
// independently per step from that step's own gas units, chain gas price,
// and native-token USD rate — never as an even split of a path-level total.
type StepCost struct {
	GasUSD      float64
	BridgeUSD   float64
	SlippageUSD float64
	TimeS       float64
	MEVUSD      float64
}

// Total returns the sum of the dollar-denominated cost components. TimeS
// is excluded since it is a duration, not a cost.
func (s StepCost) Total() float64 {
	return s.GasUSD + s.BridgeUSD + s.SlippageUSD + s.MEVUSD
}

// CostBreakdown aggregates StepCost across every step of a path, plus the
// "optimization potential" each calculator identifies: the dollar amount
// that could be saved by a named, concrete alternative (a cheaper gas
// tier, a different bridge route, a smaller notional, deferred execution).
type CostBreakdown struct {
	Steps []StepCost

	TotalGasUSD      float64
	TotalBridgeUSD   float64
	TotalSlippageUSD float64
	TotalTimeS       float64
	TotalMEVUSD      float64

	OptimizationPotential []OptimizationHint
}

// OptimizationHint names one concrete way to reduce cost, and by how much.
type OptimizationHint struct {
	Calculator  string // "gas", "bridge", "slippage", "time", "mev"
	Description string
	SavingsUSD  float64
}

// TotalUSD returns the sum of every dollar-denominated cost component.
func (c CostBreakdown) TotalUSD() float64 {
	return c.TotalGasUSD + c.TotalBridgeUSD + c.TotalSlippageUSD + c.TotalMEVUSD
}

// NewCostBreakdown aggregates a slice of per-step costs into a CostBreakdown.
func NewCostBreakdown(steps []StepCost) CostBreakdown {
	cb := CostBreakdown{Steps: steps}
	for _, s := range steps {
		cb.TotalGasUSD += s.GasUSD
		cb.TotalBridgeUSD += s.BridgeUSD
		cb.TotalSlippageUSD += s.SlippageUSD
		cb.TotalTimeS += s.TimeS
		cb.TotalMEVUSD += s.MEVUSD
	}
	return cb
}
