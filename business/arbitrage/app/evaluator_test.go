package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/meridianfi/arbengine/business/arbitrage/app"
	"github.com/meridianfi/arbengine/business/arbitrage/domain"
)

func newEvaluator() *app.Evaluator {
	risk := app.NewRiskAssessor(app.DefaultRiskAssessorConfig())
	feas := app.NewFeasibilityAnalyzer(app.FeasibilityAnalyzerConfig{
		ChainReliability: map[uint64]float64{1: 95},
	}, &fakeChainAdapter{})
	return app.NewEvaluator(app.DefaultEvaluatorConfig(), risk, feas)
}

func goodOpportunity() domain.Opportunity {
	cyc := swapCycle()
	return domain.NewOpportunity("opp-1", "USDC", 1, 1, 1.0, 1.02, 60, 5, 0, 1000, 30, 10, 0.9, cyc, time.Now())
}

func TestEvaluator_Evaluate_ProducesScoredEvaluation(t *testing.T) {
	evaluator := newEvaluator()
	opp := goodOpportunity()
	in := app.EvaluationInput{
		Opportunity:       opp,
		BestPath:          domain.ExecutionPath{Cycle: opp.Cycle, NotionalUSD: opp.NotionalUSD, ExpectedProfitUSD: opp.ExpectedProfitUSD},
		BestPoolLiquidity: 1_000_000,
	}

	result := evaluator.Evaluate(context.Background(), in)

	if result.OpportunityID != opp.ID {
		t.Fatalf("expected opportunity ID to be carried through, got %q", result.OpportunityID)
	}
	if result.FinalScore < 0 || result.FinalScore > 100 {
		t.Fatalf("expected final score in [0,100], got %v", result.FinalScore)
	}
	if result.Priority == "" {
		t.Fatal("expected a non-empty priority")
	}
}

func TestEvaluator_HighRiskIsGatedToIgnore(t *testing.T) {
	cfg := app.DefaultEvaluatorConfig()
	cfg.MaxTolerableRisk = 1 // trivially exceeded by any non-zero risk assessment
	risk := app.NewRiskAssessor(app.DefaultRiskAssessorConfig())
	feas := app.NewFeasibilityAnalyzer(app.FeasibilityAnalyzerConfig{}, &fakeChainAdapter{})
	evaluator := app.NewEvaluator(cfg, risk, feas)

	opp := goodOpportunity()
	in := app.EvaluationInput{
		Opportunity: opp,
		BestPath:    domain.ExecutionPath{Cycle: opp.Cycle, NotionalUSD: opp.NotionalUSD, ExpectedProfitUSD: opp.ExpectedProfitUSD},
	}

	result := evaluator.Evaluate(context.Background(), in)

	if result.Priority != domain.PriorityIgnore {
		t.Fatalf("expected the risk hard-gate to force PriorityIgnore, got %v", result.Priority)
	}
	if result.Recommendation.Action != domain.ActionReject {
		t.Fatalf("expected a gated evaluation to recommend rejection, got %v", result.Recommendation.Action)
	}
}

func TestEvaluator_BelowMinNetProfitIsGated(t *testing.T) {
	cfg := app.DefaultEvaluatorConfig()
	cfg.MinNetProfitUSD = 1000 // above what goodOpportunity nets
	risk := app.NewRiskAssessor(app.DefaultRiskAssessorConfig())
	feas := app.NewFeasibilityAnalyzer(app.FeasibilityAnalyzerConfig{}, &fakeChainAdapter{})
	evaluator := app.NewEvaluator(cfg, risk, feas)

	opp := goodOpportunity()
	in := app.EvaluationInput{
		Opportunity: opp,
		BestPath:    domain.ExecutionPath{Cycle: opp.Cycle, NotionalUSD: opp.NotionalUSD, ExpectedProfitUSD: opp.ExpectedProfitUSD},
	}

	result := evaluator.Evaluate(context.Background(), in)
	if result.Priority != domain.PriorityIgnore {
		t.Fatalf("expected the net-profit floor to force PriorityIgnore, got %v", result.Priority)
	}
}

func TestEvaluator_EvaluateBatch_SortsDescendingByFinalScore(t *testing.T) {
	evaluator := newEvaluator()

	weak := domain.NewOpportunity("opp-weak", "USDC", 1, 1, 1.0, 1.001, 1, 5, 0, 1000, 600, 90, 0.2, swapCycle(), time.Now())
	strong := goodOpportunity()

	inputs := []app.EvaluationInput{
		{Opportunity: weak, BestPath: domain.ExecutionPath{Cycle: weak.Cycle, NotionalUSD: weak.NotionalUSD, ExpectedProfitUSD: weak.ExpectedProfitUSD}},
		{Opportunity: strong, BestPath: domain.ExecutionPath{Cycle: strong.Cycle, NotionalUSD: strong.NotionalUSD, ExpectedProfitUSD: strong.ExpectedProfitUSD}},
	}

	results := evaluator.EvaluateBatch(context.Background(), inputs)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].FinalScore > results[i-1].FinalScore {
			t.Fatalf("expected results sorted by descending final score, found %v > %v at index %d",
				results[i].FinalScore, results[i-1].FinalScore, i)
		}
	}
}
