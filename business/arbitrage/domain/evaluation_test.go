package domain_test

import (
	"math"
	"testing"

	"github.com/meridianfi/arbengine/business/arbitrage/domain"
)

func TestBandForRiskScore(t *testing.T) {
	cases := []struct {
		score float64
		want  domain.RiskBand
	}{
		{0, domain.RiskVeryLow},
		{19.9, domain.RiskVeryLow},
		{20, domain.RiskLow},
		{39.9, domain.RiskLow},
		{40, domain.RiskMedium},
		{59.9, domain.RiskMedium},
		{60, domain.RiskHigh},
		{79.9, domain.RiskHigh},
		{80, domain.RiskVeryHigh},
		{100, domain.RiskVeryHigh},
	}
	for _, c := range cases {
		if got := domain.BandForRiskScore(c.score); got != c.want {
			t.Errorf("BandForRiskScore(%v) = %v, want %v", c.score, got, c.want)
		}
	}
}

func TestNewRiskAssessment_WeightedComposite(t *testing.T) {
	ra := domain.NewRiskAssessment(50, 50, 50, 50, 50, 50, nil)
	// Weights sum to 1.0, so a uniform 50 across every sub-score must
	// produce an overall score of exactly 50.
	if math.Abs(ra.OverallRisk-50) > 1e-9 {
		t.Fatalf("expected overall risk 50 for uniform sub-scores, got %v", ra.OverallRisk)
	}
	if ra.Band != domain.RiskMedium {
		t.Fatalf("expected medium band, got %v", ra.Band)
	}
}

func TestNewRiskAssessment_WeightsSumToOne(t *testing.T) {
	sum := domain.WeightMarketRisk + domain.WeightExecutionRisk + domain.WeightLiquidityRisk +
		domain.WeightMEVRisk + domain.WeightTechnicalRisk + domain.WeightCounterpartyRisk
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("expected risk weights to sum to 1.0, got %v", sum)
	}
}

func TestNewFeasibilityAssessment_EqualWeighting(t *testing.T) {
	fa := domain.NewFeasibilityAssessment(80, 80, 80, 80, nil, nil)
	if math.Abs(fa.OverallScore-80) > 1e-9 {
		t.Fatalf("expected overall score 80 for uniform sub-scores, got %v", fa.OverallScore)
	}
}

func TestNewFeasibilityAssessment_MixedScores(t *testing.T) {
	fa := domain.NewFeasibilityAssessment(100, 0, 100, 0, nil, nil)
	if math.Abs(fa.OverallScore-50) > 1e-9 {
		t.Fatalf("expected overall score 50 for mixed sub-scores, got %v", fa.OverallScore)
	}
}

func TestBandForFinalScore(t *testing.T) {
	cases := []struct {
		score float64
		want  domain.Priority
	}{
		{95, domain.PriorityCritical},
		{90, domain.PriorityCritical},
		{80, domain.PriorityHigh},
		{75, domain.PriorityHigh},
		{60, domain.PriorityMedium},
		{50, domain.PriorityMedium},
		{30, domain.PriorityLow},
		{25, domain.PriorityLow},
		{10, domain.PriorityIgnore},
	}
	for _, c := range cases {
		if got := domain.BandForFinalScore(c.score); got != c.want {
			t.Errorf("BandForFinalScore(%v) = %v, want %v", c.score, got, c.want)
		}
	}
}
