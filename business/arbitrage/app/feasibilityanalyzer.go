package app

import (
	"context"
	"math"

	"github.com/meridianfi/arbengine/business/arbitrage/domain"
)

// FeasibilityAnalyzerConfig holds per-chain reliability scores and
// resource constraints.
type FeasibilityAnalyzerConfig struct {
	ChainReliability   map[uint64]float64 // 0..100, higher = more reliable
	AvailableCapitalUSD float64
	GasBudgetUSD        float64
}

// FeasibilityAnalyzer scores technical, resource, timing, and
// infrastructure feasibility.
type FeasibilityAnalyzer struct {
	config FeasibilityAnalyzerConfig
	chains ChainAdapter
}

// NewFeasibilityAnalyzer creates a FeasibilityAnalyzer.
func NewFeasibilityAnalyzer(cfg FeasibilityAnalyzerConfig, chains ChainAdapter) *FeasibilityAnalyzer {
	return &FeasibilityAnalyzer{config: cfg, chains: chains}
}

// Analyze composes the four feasibility sub-scores, plus named bottlenecks and
// proposed alternatives, for one candidate path.
func (f *FeasibilityAnalyzer) Analyze(ctx context.Context, cycle domain.Cycle, path domain.ExecutionPath, opportunityAgeS, marketVolatility, networkCongestion float64) domain.FeasibilityAssessment {
	technical := f.technicalScore(cycle)
	resource := f.resourceScore(path)
	timing := f.timingScore(cycle, opportunityAgeS, marketVolatility, networkCongestion)
	infrastructure := f.infrastructureScore(cycle)

	var bottlenecks []domain.Bottleneck
	if resource < 40 {
		bottlenecks = append(bottlenecks, domain.Bottleneck{Name: "available capital", Severity: severityFor(resource)})
	}
	if timing < 40 {
		bottlenecks = append(bottlenecks, domain.Bottleneck{Name: "execution timing window", Severity: severityFor(timing)})
	}
	if infrastructure < 40 {
		bottlenecks = append(bottlenecks, domain.Bottleneck{Name: "chain infrastructure reliability", Severity: severityFor(infrastructure)})
	}

	var alternatives []domain.FeasibilityAlternative
	if len(bottlenecks) > 0 {
		alternatives = append(alternatives,
			domain.FeasibilityAlternative{Description: "route via an alternative bridge", EstimatedScoreDelta: 10},
			domain.FeasibilityAlternative{Description: "defer execution until network congestion subsides", EstimatedScoreDelta: 8},
		)
	}

	return domain.NewFeasibilityAssessment(technical, resource, timing, infrastructure, bottlenecks, alternatives)
}

func severityFor(score float64) string {
	switch {
	case score < 20:
		return "high"
	case score < 40:
		return "medium"
	default:
		return "low"
	}
}

func (f *FeasibilityAnalyzer) technicalScore(cycle domain.Cycle) float64 {
	steps := float64(cycle.Length())
	return clamp(100-steps*8, 0, 100)
}

func (f *FeasibilityAnalyzer) resourceScore(path domain.ExecutionPath) float64 {
	capitalScore := 100.0
	if f.config.AvailableCapitalUSD > 0 {
		capitalScore = clamp(100*f.config.AvailableCapitalUSD/math.Max(path.NotionalUSD, 1), 0, 100)
	}
	gasScore := 100.0
	if f.config.GasBudgetUSD > 0 {
		gasScore = clamp(100*f.config.GasBudgetUSD/math.Max(path.Costs.TotalGasUSD, 1), 0, 100)
	}
	liquidityScore := 100.0
	if len(path.Cycle.Edges) > 0 {
		minLiquidity := math.Inf(1)
		for _, e := range path.Cycle.Edges {
			if e.Liquidity < minLiquidity {
				minLiquidity = e.Liquidity
			}
		}
		if !math.IsInf(minLiquidity, 1) && minLiquidity > 0 {
			liquidityScore = clamp(100*minLiquidity/math.Max(path.NotionalUSD, 1), 0, 100)
		}
	}
	return (capitalScore + gasScore + liquidityScore) / 3
}

func (f *FeasibilityAnalyzer) timingScore(cycle domain.Cycle, opportunityAgeS, marketVolatility, networkCongestion float64) float64 {
	windowScore := clamp(100-cycle.ExecutionTimeS/3, 0, 100)
	ageScore := clamp(100-opportunityAgeS*2, 0, 100)
	volatilityScore := clamp(100-marketVolatility*200, 0, 100)
	congestionScore := clamp(100-networkCongestion*100, 0, 100)
	return (windowScore + ageScore + volatilityScore + congestionScore) / 4
}

func (f *FeasibilityAnalyzer) infrastructureScore(cycle domain.Cycle) float64 {
	if len(cycle.Path) == 0 {
		return 0
	}
	var sum float64
	for _, n := range cycle.Path {
		r, ok := f.config.ChainReliability[n.ChainID]
		if !ok {
			r = 80 // unknown chain: assume reasonably reliable, not perfect
		}
		sum += r
	}
	return sum / float64(len(cycle.Path))
}

// PercentageDifference computes (highest-lowest)/lowest. Operator
// precedence matters here: naive code reading "highest - lowest/lowest"
// silently computes the wrong quantity, so this is a named function
// rather than an inline expression at call sites.
func PercentageDifference(highest, lowest float64) float64 {
	if lowest == 0 {
		return 0
	}
	return (highest - lowest) / lowest
}
