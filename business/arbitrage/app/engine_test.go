package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/meridianfi/arbengine/business/arbitrage/app"
	"github.com/meridianfi/arbengine/business/arbitrage/domain"
	marketApp "github.com/meridianfi/arbengine/business/market/app"
	marketDomain "github.com/meridianfi/arbengine/business/market/domain"
	"github.com/meridianfi/arbengine/internal/logger"
)

type fakeSource struct {
	quotes []marketDomain.SourceQuote
}

func (f *fakeSource) Start(ctx context.Context, sink chan<- marketDomain.SourceQuote) error {
	for _, q := range f.quotes {
		sink <- q
	}
	return nil
}

func (f *fakeSource) Stop() error { return nil }

type recordingSubscriber struct {
	mu   sync.Mutex
	seen int
}

func (s *recordingSubscriber) OnOpportunity(eval domain.ComprehensiveEvaluation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen++
}

func (s *recordingSubscriber) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen
}

func newTestEngine(t *testing.T, source *fakeSource) (*app.Engine, *recordingSubscriber) {
	t.Helper()

	mapper := marketDomain.NewMapper()
	agg := marketApp.NewAggregator(mapper, marketApp.AggregatorConfig{}, logger.NewNop())
	agg.RegisterSource(source)

	chains := &fakeChainAdapter{
		available: map[uint64]bool{1: true, 137: true},
		gas:       app.GasQuote{PriceWeiPerGas: 30e9},
		nativeUSD: 2000,
	}
	bridges := &fakeBridgeCatalog{}

	graphs := app.NewGraphBuilder(mapper, chains, bridges, app.GraphBuilderConfig{}, logger.NewNop())
	cycles := app.NewCycleDetector(app.CycleDetectorConfig{MinProfitThreshold: 0}, logger.NewNop())
	costs := app.NewCostCalculators(app.DefaultCostCalculatorConfig(), chains)
	optimizer := app.NewPathOptimizer(app.DefaultPathOptimizerConfig(), costs)
	risk := app.NewRiskAssessor(app.DefaultRiskAssessorConfig())
	feas := app.NewFeasibilityAnalyzer(app.FeasibilityAnalyzerConfig{}, chains)
	evaluator := app.NewEvaluator(app.DefaultEvaluatorConfig(), risk, feas)

	cfg := app.DefaultEngineConfig()
	cfg.TickInterval = 20 * time.Millisecond

	sub := &recordingSubscriber{}
	engine := app.NewEngine(cfg, logger.NewNop(), agg, graphs, cycles, costs, optimizer, evaluator, nil)
	engine.Subscribe(sub)
	return engine, sub
}

func TestEngine_StartStop_IsIdempotentAndClean(t *testing.T) {
	source := &fakeSource{quotes: []marketDomain.SourceQuote{
		{SourceID: "uniswap", AssetSymbol: "USDC", ChainID: 1, Price: 1.0, Liquidity: 100000, Timestamp: time.Now()},
	}}
	engine, _ := newTestEngine(t, source)

	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error starting engine: %v", err)
	}
	time.Sleep(80 * time.Millisecond)
	if err := engine.Stop(); err != nil {
		t.Fatalf("unexpected error stopping engine: %v", err)
	}
	if err := engine.Stop(); err != nil {
		t.Fatalf("unexpected error on second stop: %v", err)
	}
}

func TestEngine_ConsistentPricesNeverEmitAnOpportunity(t *testing.T) {
	// Same-chain swap edges derive their rate purely from the two assets'
	// USD prices, so any cycle built from one consistent price snapshot
	// telescopes to exactly zero log-weight before costs; costs only add
	// further positive weight. No negative cycle, hence no opportunity,
	// can ever emerge from internally consistent prices alone.
	source := &fakeSource{quotes: []marketDomain.SourceQuote{
		{SourceID: "uniswap", AssetSymbol: "USDC", ChainID: 1, Price: 1.0, Liquidity: 500000, Timestamp: time.Now()},
		{SourceID: "uniswap", AssetSymbol: "WETH", ChainID: 1, Price: 2000, Liquidity: 500000, Timestamp: time.Now()},
		{SourceID: "uniswap", AssetSymbol: "DAI", ChainID: 1, Price: 1.0, Liquidity: 500000, Timestamp: time.Now()},
	}}
	engine, sub := newTestEngine(t, source)

	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error starting engine: %v", err)
	}
	time.Sleep(120 * time.Millisecond)
	if err := engine.Stop(); err != nil {
		t.Fatalf("unexpected error stopping engine: %v", err)
	}

	if got := sub.count(); got != 0 {
		t.Fatalf("expected zero opportunities from arbitrage-free consistent prices, got %d", got)
	}
}
