package app_test

import (
	"context"
	"testing"

	"github.com/meridianfi/arbengine/business/arbitrage/app"
	"github.com/meridianfi/arbengine/business/arbitrage/domain"
)

func TestPathOptimizer_OptimizeProducesOneCandidatePerStrategy(t *testing.T) {
	calc := app.NewCostCalculators(app.DefaultCostCalculatorConfig(), &fakeChainAdapter{})
	cfg := app.DefaultPathOptimizerConfig()
	cfg.SimulationRounds = 50
	optimizer := app.NewPathOptimizer(cfg, calc)

	cyc := swapCycle()
	cyc.ProfitMargin = 0.02
	baseCost := domain.NewCostBreakdown([]domain.StepCost{{GasUSD: 5}, {GasUSD: 5}, {GasUSD: 5}})

	paths := optimizer.Optimize(context.Background(), cyc, 1000, baseCost, 42)

	if len(paths) != len(domain.AllStrategies) {
		t.Fatalf("expected one candidate per strategy template, got %d", len(paths))
	}
	seen := make(map[domain.StrategyKind]bool)
	for _, p := range paths {
		seen[p.Strategy] = true
		if p.Simulation == nil {
			t.Errorf("expected every candidate to carry a simulation result, strategy %v", p.Strategy)
		}
	}
	if len(seen) != len(domain.AllStrategies) {
		t.Fatalf("expected all %d strategies represented exactly once, got %d distinct", len(domain.AllStrategies), len(seen))
	}
}

func TestPathOptimizer_OptimizeRanksBestFirst(t *testing.T) {
	calc := app.NewCostCalculators(app.DefaultCostCalculatorConfig(), &fakeChainAdapter{})
	cfg := app.DefaultPathOptimizerConfig()
	cfg.SimulationRounds = 50
	optimizer := app.NewPathOptimizer(cfg, calc)

	cyc := swapCycle()
	cyc.ProfitMargin = 0.03
	baseCost := domain.NewCostBreakdown([]domain.StepCost{{GasUSD: 2}, {GasUSD: 2}, {GasUSD: 2}})

	paths := optimizer.Optimize(context.Background(), cyc, 1000, baseCost, 7)

	for i := 1; i < len(paths); i++ {
		if paths[i].RankScore > paths[i-1].RankScore {
			t.Fatalf("expected paths sorted by descending rank score, found %v > %v at index %d",
				paths[i].RankScore, paths[i-1].RankScore, i)
		}
	}
}

func TestPathOptimizer_MaxAlternativePathsLimitsEnumeration(t *testing.T) {
	calc := app.NewCostCalculators(app.DefaultCostCalculatorConfig(), &fakeChainAdapter{})
	cfg := app.DefaultPathOptimizerConfig()
	cfg.SimulationRounds = 10
	cfg.MaxAlternativePaths = 2
	optimizer := app.NewPathOptimizer(cfg, calc)

	paths := optimizer.Optimize(context.Background(), swapCycle(), 1000, domain.CostBreakdown{}, 1)
	if len(paths) != 2 {
		t.Fatalf("expected MaxAlternativePaths to cap candidates at 2, got %d", len(paths))
	}
}

func TestPathOptimizer_HardConstraintFiltersSlowPaths(t *testing.T) {
	calc := app.NewCostCalculators(app.DefaultCostCalculatorConfig(), &fakeChainAdapter{})
	cfg := app.DefaultPathOptimizerConfig()
	cfg.SimulationRounds = 10
	cfg.MaxExecutionTimeS = 1 // every candidate's TotalTimeS will exceed this
	optimizer := app.NewPathOptimizer(cfg, calc)

	cyc := swapCycle()
	baseCost := domain.NewCostBreakdown([]domain.StepCost{{TimeS: 100}, {TimeS: 100}, {TimeS: 100}})

	paths := optimizer.Optimize(context.Background(), cyc, 1000, baseCost, 3)
	if len(paths) != 0 {
		t.Fatalf("expected MaxExecutionTimeS to reject every candidate, got %d survivors", len(paths))
	}
}

func TestPathOptimizer_OptimizeBuildsExecutionSteps(t *testing.T) {
	calc := app.NewCostCalculators(app.DefaultCostCalculatorConfig(), &fakeChainAdapter{})
	cfg := app.DefaultPathOptimizerConfig()
	cfg.SimulationRounds = 20
	optimizer := app.NewPathOptimizer(cfg, calc)

	cyc := swapCycle()
	baseCost := domain.NewCostBreakdown([]domain.StepCost{{GasUSD: 1}, {GasUSD: 2}, {GasUSD: 3}})

	paths := optimizer.Optimize(context.Background(), cyc, 1000, baseCost, 11)
	for _, p := range paths {
		if len(p.Steps) != len(cyc.Edges) {
			t.Fatalf("expected %d steps (one per edge), got %d for strategy %v", len(cyc.Edges), len(p.Steps), p.Strategy)
		}
		for i, step := range p.Steps {
			if step.Number != i+1 {
				t.Errorf("expected step %d numbered %d, got %d", i, i+1, step.Number)
			}
			if i == 0 && step.Dependencies != nil {
				t.Errorf("expected first step to have no dependencies, got %v", step.Dependencies)
			}
			if i > 0 && (len(step.Dependencies) != 1 || step.Dependencies[0] != i-1) {
				t.Errorf("expected step %d to depend only on step %d, got %v", i, i-1, step.Dependencies)
			}
			if step.Description == "" {
				t.Errorf("expected step %d to carry a human-readable description", i)
			}
		}
	}
}

func TestPathOptimizer_OptimizeComputesPerformanceAndAlternatives(t *testing.T) {
	calc := app.NewCostCalculators(app.DefaultCostCalculatorConfig(), &fakeChainAdapter{})
	cfg := app.DefaultPathOptimizerConfig()
	cfg.SimulationRounds = 200
	optimizer := app.NewPathOptimizer(cfg, calc)

	cyc := swapCycle()
	cyc.ProfitMargin = 0.02
	baseCost := domain.NewCostBreakdown([]domain.StepCost{{GasUSD: 5}, {GasUSD: 5}, {GasUSD: 5}})

	paths := optimizer.Optimize(context.Background(), cyc, 1000, baseCost, 5)
	if len(paths) == 0 {
		t.Fatal("expected at least one candidate")
	}

	for _, p := range paths {
		if p.Performance == nil {
			t.Fatalf("expected performance metrics to be computed for strategy %v", p.Strategy)
		}
		if p.Simulation != nil && p.Simulation.SuccessRate < 0 {
			t.Errorf("expected a non-negative success rate, got %v", p.Simulation.SuccessRate)
		}
		if p.OptimizationStrategy == "" {
			t.Errorf("expected an optimization strategy tag for strategy %v", p.Strategy)
		}
	}

	best := paths[0]
	if len(best.AlternativeRoutes) == 0 {
		t.Fatal("expected the winning path to carry alternative routes not chosen")
	}
	if len(best.AlternativeRoutes) > 3 {
		t.Fatalf("expected at most 3 alternative routes, got %d", len(best.AlternativeRoutes))
	}
	for _, other := range paths[1:] {
		if len(other.AlternativeRoutes) != 0 {
			t.Errorf("expected only the winning path to carry alternative routes, strategy %v had %d", other.Strategy, len(other.AlternativeRoutes))
		}
	}
}

func TestPathOptimizer_DeterministicForFixedSeed(t *testing.T) {
	calc := app.NewCostCalculators(app.DefaultCostCalculatorConfig(), &fakeChainAdapter{})
	cfg := app.DefaultPathOptimizerConfig()
	cfg.SimulationRounds = 50
	optimizer := app.NewPathOptimizer(cfg, calc)

	cyc := swapCycle()
	cyc.ProfitMargin = 0.02
	baseCost := domain.NewCostBreakdown([]domain.StepCost{{GasUSD: 5}, {GasUSD: 5}, {GasUSD: 5}})

	first := optimizer.Optimize(context.Background(), cyc, 1000, baseCost, 99)
	second := optimizer.Optimize(context.Background(), cyc, 1000, baseCost, 99)

	if len(first) != len(second) {
		t.Fatalf("expected repeatable candidate count for the same seed, got %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Strategy != second[i].Strategy {
			t.Errorf("expected identical strategy ordering at index %d, got %v vs %v", i, first[i].Strategy, second[i].Strategy)
		}
		if first[i].Simulation.MeanProfitUSD != second[i].Simulation.MeanProfitUSD {
			t.Errorf("expected identical mean profit for a fixed seed at index %d, got %v vs %v",
				i, first[i].Simulation.MeanProfitUSD, second[i].Simulation.MeanProfitUSD)
		}
	}
}
