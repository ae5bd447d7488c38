package app

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/meridianfi/arbengine/business/arbitrage/domain"
	"github.com/sourcegraph/conc/pool"
)

// CostWeights are the configurable weights used in the path ranking
// score.
type CostWeights struct {
	Gas      float64
	Bridge   float64
	Time     float64
	Slippage float64
	MEV      float64
}

// RiskTolerance selects how aggressively the optimizer trades cost
// certainty for expected profit.
type RiskTolerance string

const (
	RiskToleranceConservative RiskTolerance = "conservative"
	RiskToleranceModerate     RiskTolerance = "moderate"
	RiskToleranceAggressive   RiskTolerance = "aggressive"
)

// PathOptimizerConfig holds the optimizer's tunable configuration.
type PathOptimizerConfig struct {
	MaxAlternativePaths int
	SimulationRounds    int // default 1000
	CostWeights         CostWeights
	RiskTolerance       RiskTolerance
	ParallelSimulations int // default 4

	MaxExecutionTimeS  float64 // 0 = unconstrained
	MinSuccessProb     float64 // 0 = unconstrained
	MaxGasCostUSD      float64 // 0 = unconstrained
}

// DefaultPathOptimizerConfig returns the reference default configuration.
func DefaultPathOptimizerConfig() PathOptimizerConfig {
	return PathOptimizerConfig{
		MaxAlternativePaths: 5,
		SimulationRounds:    1000,
		CostWeights:         CostWeights{Gas: 0.3, Bridge: 0.2, Time: 0.2, Slippage: 0.2, MEV: 0.1},
		RiskTolerance:       RiskToleranceModerate,
		ParallelSimulations: 4,
	}
}

// PathOptimizer generates alternative path topologies for a detected
// cycle, Monte-Carlo simulates each, and ranks them by weighted
// multi-objective score.
type PathOptimizer struct {
	optCfg PathOptimizerConfig
	costs  *CostCalculators
}

// NewPathOptimizer wires the optimizer to the shared cost calculators.
func NewPathOptimizer(optCfg PathOptimizerConfig, costs *CostCalculators) *PathOptimizer {
	if optCfg.SimulationRounds <= 0 {
		optCfg.SimulationRounds = 1000
	}
	if optCfg.ParallelSimulations <= 0 {
		optCfg.ParallelSimulations = 4
	}
	return &PathOptimizer{optCfg: optCfg, costs: costs}
}

// Optimize builds every strategy-template candidate for a cycle, runs
// Monte-Carlo simulation on each (sharded across ParallelSimulations
// workers, aggregated deterministically by candidate index), and returns
// them ranked best-first. Candidate index doubles as a stable seed
// offset so ranking is deterministic for a fixed base seed.
func (o *PathOptimizer) Optimize(ctx context.Context, cycle domain.Cycle, notionalUSD float64, baseCost domain.CostBreakdown, baseSeed int64) []domain.ExecutionPath {
	candidates := o.enumerate(cycle, notionalUSD, baseCost)

	p := pool.New().WithMaxGoroutines(o.optCfg.ParallelSimulations)
	results := make([]domain.ExecutionPath, len(candidates))
	for i := range candidates {
		i := i
		p.Go(func() {
			results[i] = o.simulate(candidates[i], baseSeed+int64(i))
		})
	}
	p.Wait()

	for i := range results {
		results[i].RankScore = o.rankScore(results[i])
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RankScore > results[j].RankScore
	})

	for i := range results {
		results[i].Performance = computePerformance(results[i])
		results[i].OptimizationStrategy = o.classifyOptimizationStrategy(results[i])
	}
	if len(results) > 0 {
		results[0].AlternativeRoutes = alternateRoutesOf(results[1:])
	}

	return o.applyHardConstraints(results)
}

// alternateRoutesOf condenses up to the top 3 ranked candidates that were
// not chosen into AlternativeRoute summaries.
func alternateRoutesOf(notChosen []domain.ExecutionPath) []domain.AlternativeRoute {
	n := len(notChosen)
	if n > 3 {
		n = 3
	}
	out := make([]domain.AlternativeRoute, 0, n)
	for _, p := range notChosen[:n] {
		out = append(out, domain.AlternativeRoute{
			Strategy:       p.Strategy,
			NotionalUSD:    p.NotionalUSD,
			NetProfitUSD:   p.NetProfitUSD,
			RankScore:      p.RankScore,
			TotalCostUSD:   p.Costs.TotalUSD(),
			ExecutionTimeS: p.Costs.TotalTimeS,
		})
	}
	return out
}

// computePerformance derives the §4.F performance metrics from a
// simulated ExecutionPath: robustness from the outcome distribution's
// coefficient of variation, efficiency from profit per dollar of cost,
// scalability from step count, adaptability from the mean of success
// rate and robustness.
func computePerformance(p domain.ExecutionPath) *domain.PerformanceMetrics {
	perf := &domain.PerformanceMetrics{
		ExpectedTimeS: p.Costs.TotalTimeS,
	}

	robustness := 0.0
	successRate := 0.0
	if p.Simulation != nil {
		successRate = p.Simulation.SuccessRate
		perf.SuccessProbability = successRate
		if p.Simulation.MeanProfitUSD != 0 {
			robustness = 1 - p.Simulation.StdDevProfitUSD/math.Abs(p.Simulation.MeanProfitUSD)
		}
		if robustness < 0 {
			robustness = 0
		}
		if robustness > 1 {
			robustness = 1
		}
	}
	perf.Robustness = robustness

	totalCost := p.Costs.TotalUSD()
	efficiency := 100.0
	if totalCost > 0 {
		efficiency = math.Max(0, math.Min(100, p.NetProfitUSD/totalCost*100))
	}
	perf.Efficiency = efficiency

	steps := len(p.Steps)
	perf.Scalability = math.Max(0, 100-float64(steps)*10)

	perf.Adaptability = (successRate*100 + robustness*100) / 2

	return perf
}

// classifyOptimizationStrategy names which weighted component of the
// ranking score dominated: gas/bridge/slippage/MEV cost, time, or risk
// (reliability + consistency). A hybrid tag applies when no single
// component cleared a clear plurality.
func (o *PathOptimizer) classifyOptimizationStrategy(p domain.ExecutionPath) domain.OptimizationTag {
	w := o.optCfg.CostWeights
	costScore := 100 - math.Min(100, p.Costs.TotalUSD()/math.Max(1, p.NotionalUSD)*1000)
	timeScore := 100 - math.Min(100, p.Costs.TotalTimeS/3.0)

	reliability, consistency := 100.0, 100.0
	if p.Simulation != nil {
		reliability = (1 - p.Simulation.ProbabilityOfLoss) * 100
		consistency = math.Max(0, 100-10*p.Simulation.StdDevProfitUSD)
	}

	wCost := w.Gas + w.Bridge + w.Slippage + w.MEV
	if wCost == 0 {
		wCost = 0.7
	}
	wTime := w.Time
	if wTime == 0 {
		wTime = 0.15
	}

	gasContribution := wCost * costScore
	timeContribution := wTime * timeScore
	riskContribution := 0.3*reliability + 0.15*consistency

	total := gasContribution + timeContribution + riskContribution
	if total <= 0 {
		return domain.OptimizationTagHybrid
	}

	const dominance = 0.45 // share of total score a component must clear to "dominate"
	switch {
	case gasContribution/total >= dominance:
		return domain.OptimizationTagGas
	case timeContribution/total >= dominance:
		return domain.OptimizationTagTime
	case riskContribution/total >= dominance:
		return domain.OptimizationTagRisk
	default:
		return domain.OptimizationTagHybrid
	}
}

func (o *PathOptimizer) enumerate(cycle domain.Cycle, notionalUSD float64, baseCost domain.CostBreakdown) []domain.ExecutionPath {
	n := len(domain.AllStrategies)
	if o.optCfg.MaxAlternativePaths > 0 && o.optCfg.MaxAlternativePaths < n {
		n = o.optCfg.MaxAlternativePaths
	}

	out := make([]domain.ExecutionPath, 0, n)
	for i := 0; i < n; i++ {
		strategy := domain.AllStrategies[i]
		notional := notionalUSD
		switch strategy {
		case domain.StrategySplit:
			notional = notionalUSD // split keeps the detected notional and is simulated like direct
		case domain.StrategyPartial:
			notional = notionalUSD * 0.5
		case domain.StrategyAggressive:
			notional = notionalUSD * 1.5
		}

		out = append(out, domain.ExecutionPath{
			Strategy:          strategy,
			Cycle:             cycle,
			NotionalUSD:       notional,
			Steps:             buildSteps(cycle, baseCost, notional),
			Costs:             baseCost,
			ExpectedProfitUSD: cycle.ProfitMargin * notional,
		})
	}
	return out
}

// buildSteps walks a cycle's edges in order, pairing each with its
// already-composed StepCost, into the ExecutionStep sequence an
// execution plan is made of. Each step depends only on its immediate
// predecessor: the cycle detector always produces a linear chain, so the
// dependency DAG degenerates to a chain, but downstream consumers read
// Dependencies rather than assuming adjacency.
func buildSteps(cycle domain.Cycle, costs domain.CostBreakdown, notionalUSD float64) []domain.ExecutionStep {
	steps := make([]domain.ExecutionStep, 0, len(cycle.Edges))
	for i, e := range cycle.Edges {
		var cost domain.StepCost
		if i < len(costs.Steps) {
			cost = costs.Steps[i]
		}
		var deps []int
		if i > 0 {
			deps = []int{i - 1}
		}
		steps = append(steps, domain.ExecutionStep{
			Number:       i + 1,
			Edge:         e,
			NotionalUSD:  notionalUSD,
			Cost:         cost,
			Description:  stepDescription(e),
			Dependencies: deps,
		})
	}
	return steps
}

func stepDescription(e domain.Edge) string {
	switch e.Kind {
	case domain.EdgeKindBridge:
		return fmt.Sprintf("bridge %s from %s to %s via %s", e.From.Asset, e.From, e.To, e.VenueID)
	default:
		return fmt.Sprintf("swap %s -> %s on chain %d via %s", e.From.Asset, e.To.Asset, e.From.ChainID, e.VenueID)
	}
}

// simulate runs SimulationRounds Monte-Carlo rounds over one candidate
// path, sampling cost volatility bands, and attaches the resulting
// SimulationResult plus a NetProfitUSD set to the mean.
func (o *PathOptimizer) simulate(path domain.ExecutionPath, seed int64) domain.ExecutionPath {
	rng := rand.New(rand.NewSource(seed))
	rounds := o.optCfg.SimulationRounds

	gross := path.ExpectedProfitUSD
	baseGas := path.Costs.TotalGasUSD
	baseBridge := path.Costs.TotalBridgeUSD
	baseSlippageFrac := 0.005
	baseTime := path.Costs.TotalTimeS

	profits := make([]float64, rounds)
	successes := 0

	for i := 0; i < rounds; i++ {
		gas := baseGas * (1 + uniform(rng, -0.1, 0.1))
		bridge := baseBridge * (1 + uniform(rng, -0.1, 0.1))
		slippageFrac := baseSlippageFrac * (1 + uniform(rng, -0.3, 0.3))
		_ = baseTime * (1 + uniform(rng, -0.15, 0.15)) // time volatility, not priced directly

		mevBase := (path.NotionalUSD / 10000) * gross * 0.01
		mev := mevBase * (1 + uniform(rng, 0, 1))

		finalProfit := gross - gas - bridge - path.NotionalUSD*slippageFrac - gross*mevFractionOf(mev, gross)
		profits[i] = finalProfit

		successProbSample := rng.Float64()
		if successProbSample > 0.5 {
			successes++
		}
	}

	mean, stdev := meanStdev(profits)
	sort.Float64s(profits)

	path.Simulation = &domain.SimulationResult{
		Rounds:            rounds,
		MeanProfitUSD:     mean,
		StdDevProfitUSD:   stdev,
		P05ProfitUSD:      percentile(profits, 0.05),
		P95ProfitUSD:      percentile(profits, 0.95),
		ProbabilityOfLoss: fractionBelowZero(profits),
		SuccessRate:       float64(successes) / float64(rounds),
		Seed:              seed,
	}
	path.NetProfitUSD = mean

	return path
}

func mevFractionOf(mev, gross float64) float64 {
	if gross == 0 {
		return 0
	}
	f := mev / gross
	if f < 0 {
		f = 0
	}
	if f > 0.9 {
		f = 0.9
	}
	return f
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func meanStdev(xs []float64) (mean, stdev float64) {
	n := float64(len(xs))
	if n == 0 {
		return 0, 0
	}
	for _, x := range xs {
		mean += x
	}
	mean /= n
	var sumSq float64
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	stdev = math.Sqrt(sumSq / n)
	return mean, stdev
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

func fractionBelowZero(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	n := 0
	for _, x := range xs {
		if x < 0 {
			n++
		}
	}
	return float64(n) / float64(len(xs))
}

// rankScore implements the composite ranking formula: w_cost*cost_score + w_time*
// time_score + 0.3*reliability_score + 0.15*consistency_score.
func (o *PathOptimizer) rankScore(p domain.ExecutionPath) float64 {
	w := o.optCfg.CostWeights
	costScore := 100 - math.Min(100, p.Costs.TotalUSD()/math.Max(1, p.NotionalUSD)*1000)
	timeScore := 100 - math.Min(100, p.Costs.TotalTimeS/3.0)

	reliability := 100.0
	consistency := 100.0
	if p.Simulation != nil {
		reliability = (1 - p.Simulation.ProbabilityOfLoss) * 100
		consistency = 100 - 10*p.Simulation.StdDevProfitUSD
		if consistency < 0 {
			consistency = 0
		}
	}

	wCost := w.Gas + w.Bridge + w.Slippage + w.MEV
	if wCost == 0 {
		wCost = 0.7
	}
	wTime := w.Time
	if wTime == 0 {
		wTime = 0.15
	}

	return wCost*costScore + wTime*timeScore + 0.3*reliability + 0.15*consistency
}

func (o *PathOptimizer) applyHardConstraints(paths []domain.ExecutionPath) []domain.ExecutionPath {
	if o.optCfg.MaxExecutionTimeS == 0 && o.optCfg.MinSuccessProb == 0 && o.optCfg.MaxGasCostUSD == 0 {
		return paths
	}
	out := paths[:0]
	for _, p := range paths {
		if o.optCfg.MaxExecutionTimeS > 0 && p.Costs.TotalTimeS > o.optCfg.MaxExecutionTimeS {
			continue
		}
		if o.optCfg.MinSuccessProb > 0 && p.Simulation != nil && p.Simulation.SuccessRate < o.optCfg.MinSuccessProb {
			continue
		}
		if o.optCfg.MaxGasCostUSD > 0 && p.Costs.TotalGasUSD > o.optCfg.MaxGasCostUSD {
			continue
		}
		out = append(out, p)
	}
	return out
}
