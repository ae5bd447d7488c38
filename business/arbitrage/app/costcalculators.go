package app

import (
	"context"
	"math"

	"github.com/meridianfi/arbengine/business/arbitrage/domain"
)

// CostCalculatorConfig holds the cost model's default constants, exposed as
// configuration rather than buried in code.
type CostCalculatorConfig struct {
	GasBufferMultiplier   float64 // default 1.2
	DefaultSlippageFrac   float64 // default 0.005
	TimeRiskRatePerSecond float64 // default 0.001
	MEVNotionalSaturation float64 // default 1000 (USD)
}

// DefaultCostCalculatorConfig returns the reference default configuration.
func DefaultCostCalculatorConfig() CostCalculatorConfig {
	return CostCalculatorConfig{
		GasBufferMultiplier:   1.2,
		DefaultSlippageFrac:   0.005,
		TimeRiskRatePerSecond: 0.001,
		MEVNotionalSaturation: 1000,
	}
}

// CostCalculators groups the five pure cost calculators. Each is a
// free function of (path, chain gas/native-price lookups, notional); none
// hold mutable state, so a single instance is safe for concurrent use.
type CostCalculators struct {
	config CostCalculatorConfig
	chains ChainAdapter
}

// NewCostCalculators wires the calculators to a ChainAdapter for live gas
// and native-token price lookups.
func NewCostCalculators(cfg CostCalculatorConfig, chains ChainAdapter) *CostCalculators {
	return &CostCalculators{config: cfg, chains: chains}
}

// Gas computes the per-step gas cost. Each step's cost is recomputed from
// that step's own gas units, its own chain's gas price, and that chain's
// native-token USD rate — never distributed evenly across the path, which
// loses precision when chains have very different gas economics.
func (c *CostCalculators) Gas(ctx context.Context, cycle domain.Cycle) ([]float64, float64) {
	costs := make([]float64, len(cycle.Edges))
	var total float64
	for i, e := range cycle.Edges {
		if e.Kind != domain.EdgeKindSwap {
			continue
		}
		gasUnits, err := c.chains.EstimateGas(ctx, e.From.ChainID, "swap")
		if err != nil || gasUnits == 0 {
			gasUnits = 180_000
		}
		quote, err := c.chains.CurrentGasPrice(ctx, e.From.ChainID)
		if err != nil {
			continue
		}
		nativeUSD, err := c.chains.NativeTokenUSD(ctx, e.From.ChainID)
		if err != nil {
			continue
		}
		gasNative := float64(gasUnits) * quote.PriceWeiPerGas * 1e-18
		usd := gasNative * nativeUSD * c.config.GasBufferMultiplier
		costs[i] = usd
		total += usd
	}
	return costs, total
}

// GasOptimizationPotential estimates savings from a cheaper gas tier: the
// buffer margin itself, since a deployment willing to accept more risk
// could drop to a 1.0 multiplier.
func (c *CostCalculators) GasOptimizationPotential(totalGasUSD float64) domain.OptimizationHint {
	savings := totalGasUSD * (1 - 1/c.config.GasBufferMultiplier)
	return domain.OptimizationHint{
		Calculator:  "gas",
		Description: "drop the safety buffer multiplier on a lower-risk route",
		SavingsUSD:  savings,
	}
}

// Bridge computes the per-step bridge fee: clamp(base + notional*pct, min, max).
func (c *CostCalculators) Bridge(cycle domain.Cycle, notionalUSD float64, bridgeFees map[int]domain.BridgeFeeInput) ([]float64, float64) {
	costs := make([]float64, len(cycle.Edges))
	var total float64
	for i, e := range cycle.Edges {
		if e.Kind != domain.EdgeKindBridge {
			continue
		}
		input, ok := bridgeFees[i]
		if !ok {
			continue
		}
		fee := input.Base + notionalUSD*input.Percentage
		if fee < input.Min {
			fee = input.Min
		}
		if fee > input.Max {
			fee = input.Max
		}
		costs[i] = fee
		total += fee
	}
	return costs, total
}

// BridgeOptimizationPotential estimates savings from routing through the
// cheapest available alternative bridge rather than the one chosen.
func (c *CostCalculators) BridgeOptimizationPotential(totalBridgeUSD, cheapestAlternativeUSD float64) domain.OptimizationHint {
	savings := math.Max(0, totalBridgeUSD-cheapestAlternativeUSD)
	return domain.OptimizationHint{
		Calculator:  "bridge",
		Description: "route through the cheapest available bridge for this chain pair",
		SavingsUSD:  savings,
	}
}

// Slippage computes the per-swap-step expected slippage cost.
func (c *CostCalculators) Slippage(cycle domain.Cycle, notionalUSD float64, slippageFracByStep map[int]float64) ([]float64, float64) {
	costs := make([]float64, len(cycle.Edges))
	var total float64
	for i, e := range cycle.Edges {
		if e.Kind != domain.EdgeKindSwap {
			continue
		}
		frac, ok := slippageFracByStep[i]
		if !ok {
			frac = c.config.DefaultSlippageFrac
		}
		cost := notionalUSD * frac
		costs[i] = cost
		total += cost
	}
	return costs, total
}

// SlippageOptimizationPotential estimates savings from splitting the
// notional across multiple smaller trades.
func (c *CostCalculators) SlippageOptimizationPotential(totalSlippageUSD float64) domain.OptimizationHint {
	return domain.OptimizationHint{
		Calculator:  "slippage",
		Description: "split the notional across smaller trades to reduce price impact",
		SavingsUSD:  totalSlippageUSD * 0.4,
	}
}

// Time computes the cumulative step-time opportunity cost: cumulative
// time times a small per-second risk rate times expected gross profit.
func (c *CostCalculators) Time(cycle domain.Cycle, expectedGrossProfitUSD float64) float64 {
	return cycle.ExecutionTimeS * c.config.TimeRiskRatePerSecond * expectedGrossProfitUSD
}

// TimeOptimizationPotential estimates savings from a faster route
// (fewer bridge hops, parallel execution) cutting execution time in half.
func (c *CostCalculators) TimeOptimizationPotential(totalTimeUSD float64) domain.OptimizationHint {
	return domain.OptimizationHint{
		Calculator:  "time",
		Description: "parallelize independent hops or choose a faster bridge route",
		SavingsUSD:  totalTimeUSD * 0.5,
	}
}

// MEV computes the composite MEV cost: max(frontrun, sandwich, backrun),
// clipped to 0..0.9 as a fraction of expected gross profit.
func (c *CostCalculators) MEV(expectedGrossProfitUSD, notionalUSD, gasPriceGwei, slippageFrac, liquidityUSD float64) float64 {
	frontrun := expectedGrossProfitUSD / (expectedGrossProfitUSD + c.config.MEVNotionalSaturation)
	if gasPriceGwei > 0 {
		frontrun /= math.Max(1, gasPriceGwei/30)
	}

	sandwich := slippageFrac * 10
	if liquidityUSD > 0 {
		sandwich /= math.Max(1, liquidityUSD/1_000_000)
	}

	backrun := frontrun * 0.5

	mevFrac := math.Max(frontrun, math.Max(sandwich, backrun))
	if mevFrac < 0 {
		mevFrac = 0
	}
	if mevFrac > 0.9 {
		mevFrac = 0.9
	}
	return mevFrac * expectedGrossProfitUSD
}

// MEVOptimizationPotential estimates savings from private-mempool
// submission, which removes frontrun/sandwich exposure at the cost of a
// relay fee roughly half the avoided MEV cost.
func (c *CostCalculators) MEVOptimizationPotential(mevCostUSD float64) domain.OptimizationHint {
	return domain.OptimizationHint{
		Calculator:  "mev",
		Description: "submit through a private relay to avoid public-mempool exposure",
		SavingsUSD:  mevCostUSD * 0.5,
	}
}

// Compose runs all five calculators over one cycle at the given notional
// and assembles the full domain.CostBreakdown, including optimization
// hints from each calculator.
func (c *CostCalculators) Compose(ctx context.Context, cycle domain.Cycle, notionalUSD, expectedGrossProfitUSD float64, bridgeFees map[int]domain.BridgeFeeInput, gasPriceGwei, liquidityUSD, cheapestAlternativeBridgeUSD float64) domain.CostBreakdown {
	gasSteps, totalGas := c.Gas(ctx, cycle)
	bridgeSteps, totalBridge := c.Bridge(cycle, notionalUSD, bridgeFees)
	slipSteps, totalSlip := c.Slippage(cycle, notionalUSD, nil)
	totalTime := c.Time(cycle, expectedGrossProfitUSD)
	totalMEV := c.MEV(expectedGrossProfitUSD, notionalUSD, gasPriceGwei, c.config.DefaultSlippageFrac, liquidityUSD)

	steps := make([]domain.StepCost, len(cycle.Edges))
	for i := range cycle.Edges {
		steps[i] = domain.StepCost{
			GasUSD:      gasSteps[i],
			BridgeUSD:   bridgeSteps[i],
			SlippageUSD: slipSteps[i],
			MEVUSD:      0,
		}
	}
	if len(steps) > 0 {
		steps[len(steps)-1].MEVUSD = totalMEV
	}

	cb := domain.NewCostBreakdown(steps)
	cb.TotalTimeS = cycle.ExecutionTimeS

	cb.OptimizationPotential = []domain.OptimizationHint{
		c.GasOptimizationPotential(totalGas),
		c.BridgeOptimizationPotential(totalBridge, cheapestAlternativeBridgeUSD),
		c.SlippageOptimizationPotential(totalSlip),
		c.TimeOptimizationPotential(totalTime),
		c.MEVOptimizationPotential(totalMEV),
	}
	return cb
}
