package app

import (
	"context"
	"sort"

	"github.com/meridianfi/arbengine/business/arbitrage/domain"
	"github.com/sourcegraph/conc/pool"
)

// EvaluatorConfig holds the scoring weights and hard-gate thresholds that
// decide whether an opportunity is actionable or dropped outright.
type EvaluatorConfig struct {
	WeightProfitability   float64 // default 0.35
	WeightRisk            float64 // default 0.25, applied to (100-risk)
	WeightFeasibility     float64 // default 0.25
	WeightTimeSensitivity float64 // default 0.15

	MaxTolerableRisk   float64 // hard gate: risk above this forces ignore
	MinFeasibilityFloor float64 // hard gate: feasibility below this forces ignore
	MinNetProfitUSD     float64 // hard gate: net profit below this forces ignore
}

// DefaultEvaluatorConfig returns the reference weighting and gates.
func DefaultEvaluatorConfig() EvaluatorConfig {
	return EvaluatorConfig{
		WeightProfitability:   0.35,
		WeightRisk:            0.25,
		WeightFeasibility:     0.25,
		WeightTimeSensitivity: 0.15,
		MaxTolerableRisk:      75,
		MinFeasibilityFloor:   20,
		MinNetProfitUSD:       0,
	}
}

// Evaluator composes the risk assessor and feasibility analyzer against a
// single best execution path, scores profitability and time sensitivity,
// and produces one final, ranked, actionable evaluation per opportunity.
type Evaluator struct {
	config  EvaluatorConfig
	risk    *RiskAssessor
	feas    *FeasibilityAnalyzer
}

// NewEvaluator wires an Evaluator to its risk assessor and feasibility
// analyzer.
func NewEvaluator(cfg EvaluatorConfig, risk *RiskAssessor, feas *FeasibilityAnalyzer) *Evaluator {
	return &Evaluator{config: cfg, risk: risk, feas: feas}
}

// EvaluationInput bundles the signals needed to score one opportunity
// beyond what the opportunity and its best path already carry.
type EvaluationInput struct {
	Opportunity       domain.Opportunity
	BestPath          domain.ExecutionPath
	PriceHistory      []PriceHistoryPoint
	BestPoolLiquidity float64
	VenueLiquidity    map[string]float64
	OpportunityAgeS   float64
	MarketVolatility  float64
	NetworkCongestion float64
}

// Evaluate runs the risk and feasibility analyses concurrently, scores
// profitability and time sensitivity, composes the final weighted score,
// and applies the hard-gate promotion to PriorityIgnore.
func (e *Evaluator) Evaluate(ctx context.Context, in EvaluationInput) domain.ComprehensiveEvaluation {
	var riskAssessment domain.RiskAssessment
	var feasAssessment domain.FeasibilityAssessment

	p := pool.New()
	p.Go(func() {
		riskAssessment = e.risk.Assess(in.Opportunity.Cycle, in.BestPath, in.PriceHistory, in.BestPoolLiquidity, in.VenueLiquidity)
	})
	p.Go(func() {
		feasAssessment = e.feas.Analyze(ctx, in.Opportunity.Cycle, in.BestPath, in.OpportunityAgeS, in.MarketVolatility, in.NetworkCongestion)
	})
	p.Wait()

	profitability := profitabilityScore(in.Opportunity)
	timeSensitivity := timeSensitivityScore(in.Opportunity, in.OpportunityAgeS)

	final := e.config.WeightProfitability*profitability +
		e.config.WeightRisk*(100-riskAssessment.OverallRisk) +
		e.config.WeightFeasibility*feasAssessment.OverallScore +
		e.config.WeightTimeSensitivity*timeSensitivity
	final = clamp(final, 0, 100)

	priority := domain.BandForFinalScore(final)
	gated := riskAssessment.OverallRisk > e.config.MaxTolerableRisk ||
		feasAssessment.OverallScore < e.config.MinFeasibilityFloor ||
		in.Opportunity.NetProfitUSD < e.config.MinNetProfitUSD
	if gated {
		priority = domain.PriorityIgnore
	}

	recommendation := e.recommend(priority, gated, riskAssessment, feasAssessment, in.Opportunity)

	return domain.ComprehensiveEvaluation{
		OpportunityID:        in.Opportunity.ID,
		ProfitabilityScore:   profitability,
		TimeSensitivityScore: timeSensitivity,
		Risk:                 riskAssessment,
		Feasibility:          feasAssessment,
		FinalScore:           final,
		Priority:             priority,
		Recommendation:       recommendation,
		Strengths:            strengthsFor(in.Opportunity, riskAssessment, feasAssessment),
		Weaknesses:           weaknessesFor(riskAssessment, feasAssessment),
		KeyMetrics: map[string]float64{
			"net_profit_usd":   in.Opportunity.NetProfitUSD,
			"profit_margin":    in.Opportunity.ProfitMarginFrac,
			"overall_risk":     riskAssessment.OverallRisk,
			"overall_feasibility": feasAssessment.OverallScore,
		},
		ExecutionPlan: in.BestPath.Steps,
	}
}

func profitabilityScore(o domain.Opportunity) float64 {
	if o.NotionalUSD <= 0 {
		return 0
	}
	marginScore := clamp(o.ProfitMarginFrac*2000, 0, 100) // 5% margin -> 100
	absoluteScore := clamp(o.NetProfitUSD/50, 0, 100)      // $5000 net -> 100
	return clamp(marginScore*0.6+absoluteScore*0.4, 0, 100)
}

func timeSensitivityScore(o domain.Opportunity, opportunityAgeS float64) float64 {
	windowScore := clamp(100-o.ExecutionTimeS/2, 0, 100)
	decayScore := clamp(100-opportunityAgeS*1.5, 0, 100)
	return (windowScore + decayScore) / 2
}

func (e *Evaluator) recommend(priority domain.Priority, gated bool, risk domain.RiskAssessment, feas domain.FeasibilityAssessment, o domain.Opportunity) domain.Recommendation {
	var reasoning []string
	var conditions []string
	var alternatives []string

	if gated {
		switch {
		case risk.OverallRisk > e.config.MaxTolerableRisk:
			reasoning = append(reasoning, "overall risk exceeds the configured tolerance")
		case feas.OverallScore < e.config.MinFeasibilityFloor:
			reasoning = append(reasoning, "feasibility score falls below the execution floor")
		case o.NetProfitUSD < e.config.MinNetProfitUSD:
			reasoning = append(reasoning, "net profit does not clear the minimum threshold")
		}
		for _, alt := range feas.Alternatives {
			alternatives = append(alternatives, alt.Description)
		}
		return domain.Recommendation{
			Action:       domain.ActionReject,
			Confidence:   0.85,
			Reasoning:    reasoning,
			Conditions:   conditions,
			Timeline:     "n/a",
			Alternatives: alternatives,
		}
	}

	var action domain.Action
	var timeline string
	switch priority {
	case domain.PriorityCritical:
		action = domain.ActionExecuteImmediately
		timeline = "immediate"
		reasoning = append(reasoning, "final score indicates a high-confidence, time-critical opportunity")
	case domain.PriorityHigh:
		action = domain.ActionExecuteOptimized
		timeline = "within seconds"
		reasoning = append(reasoning, "favorable profitability and risk profile support optimized execution")
	case domain.PriorityMedium:
		action = domain.ActionMonitorClosely
		timeline = "monitor"
		reasoning = append(reasoning, "moderate score warrants tracking before committing capital")
		conditions = append(conditions, "re-evaluate if spread widens or risk score drops")
	default:
		action = domain.ActionDefer
		timeline = "deferred"
		reasoning = append(reasoning, "low priority score; better opportunities likely exist")
	}

	confidence := clamp(1-risk.OverallRisk/100, 0.1, 0.95)

	return domain.Recommendation{
		Action:       action,
		Confidence:   confidence,
		Reasoning:    reasoning,
		Conditions:   conditions,
		Timeline:     timeline,
		Alternatives: alternatives,
	}
}

func strengthsFor(o domain.Opportunity, risk domain.RiskAssessment, feas domain.FeasibilityAssessment) []string {
	var out []string
	if o.ProfitMarginFrac > 0.01 {
		out = append(out, "profit margin comfortably exceeds typical execution slippage")
	}
	if risk.OverallRisk < 40 {
		out = append(out, "low composite risk across market, execution, and counterparty dimensions")
	}
	if feas.OverallScore > 70 {
		out = append(out, "high feasibility with no material bottlenecks")
	}
	return out
}

func weaknessesFor(risk domain.RiskAssessment, feas domain.FeasibilityAssessment) []string {
	var out []string
	if risk.OverallRisk > 60 {
		out = append(out, "elevated composite risk score")
	}
	for _, b := range feas.Bottlenecks {
		out = append(out, b.Name+" is a "+b.Severity+"-severity bottleneck")
	}
	return out
}

// EvaluateBatch evaluates a set of opportunities and returns them sorted
// by final score, descending.
func (e *Evaluator) EvaluateBatch(ctx context.Context, inputs []EvaluationInput) []domain.ComprehensiveEvaluation {
	out := make([]domain.ComprehensiveEvaluation, len(inputs))
	for i, in := range inputs {
		out[i] = e.Evaluate(ctx, in)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FinalScore > out[j].FinalScore
	})
	return out
}
