package app

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/meridianfi/arbengine/business/arbitrage/domain"
	marketApp "github.com/meridianfi/arbengine/business/market/app"
	marketDomain "github.com/meridianfi/arbengine/business/market/domain"
	"github.com/meridianfi/arbengine/internal/logger"
)

// EngineConfig controls the detection tick cadence and the notional size
// used to cost and simulate each detected cycle.
type EngineConfig struct {
	TickInterval       time.Duration
	PriceMaxAge        time.Duration
	DefaultNotionalUSD float64
	MaxRecentCache     int // bounded opportunity cache size, LRU-evicted
	MonteCarloBaseSeed int64
}

// DefaultEngineConfig returns sensible defaults for the detection loop.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		TickInterval:       2 * time.Second,
		PriceMaxAge:        60 * time.Second,
		DefaultNotionalUSD: 10_000,
		MaxRecentCache:     500,
		MonteCarloBaseSeed: 1,
	}
}

type engineMetrics struct {
	ticksRun        metric.Int64Counter
	opportunitiesEmitted metric.Int64Counter
	tickLatency     metric.Float64Histogram
}

// Engine is the tick orchestrator: it pulls a price snapshot from the
// aggregator, builds the graph, detects cycles, optimizes and scores each
// one, and emits the resulting evaluations to every subscriber and the
// reporter. It owns a bounded, LRU-evicted cache of recently emitted
// opportunities so the same cycle isn't re-reported every tick.
type Engine struct {
	config EngineConfig
	logger logger.LoggerInterface
	tracer trace.Tracer

	aggregator *marketApp.Aggregator
	graphs     *GraphBuilder
	cycles     *CycleDetector
	costs      *CostCalculators
	optimizer  *PathOptimizer
	evaluator  *Evaluator

	subscribers []OpportunitySubscriber
	reporter    Reporter

	recentMu   sync.Mutex
	recentLRU  *list.List
	recentKeys map[string]*list.Element

	metrics  *engineMetrics
	stopOnce sync.Once
	done     chan struct{}
}

// NewEngine wires every stage of the detection pipeline into one Engine.
func NewEngine(
	cfg EngineConfig,
	log logger.LoggerInterface,
	aggregator *marketApp.Aggregator,
	graphs *GraphBuilder,
	cycles *CycleDetector,
	costs *CostCalculators,
	optimizer *PathOptimizer,
	evaluator *Evaluator,
	reporter Reporter,
) *Engine {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 2 * time.Second
	}
	if cfg.MaxRecentCache <= 0 {
		cfg.MaxRecentCache = 500
	}
	e := &Engine{
		config:     cfg,
		logger:     log,
		tracer:     otel.Tracer(tracerName),
		aggregator: aggregator,
		graphs:     graphs,
		cycles:     cycles,
		costs:      costs,
		optimizer:  optimizer,
		evaluator:  evaluator,
		reporter:   reporter,
		recentLRU:  list.New(),
		recentKeys: make(map[string]*list.Element),
		done:       make(chan struct{}),
	}
	if err := e.initMetrics(); err != nil {
		log.Error(context.Background(), "failed to initialize engine metrics", "error", err)
	}
	return e
}

func (e *Engine) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error
	e.metrics = &engineMetrics{}

	e.metrics.ticksRun, err = meter.Int64Counter(
		"engine_ticks_total",
		metric.WithDescription("Total detection ticks run"),
		metric.WithUnit("{tick}"),
	)
	if err != nil {
		return err
	}
	e.metrics.opportunitiesEmitted, err = meter.Int64Counter(
		"engine_opportunities_emitted_total",
		metric.WithDescription("Total opportunity evaluations emitted to subscribers"),
		metric.WithUnit("{opportunity}"),
	)
	if err != nil {
		return err
	}
	e.metrics.tickLatency, err = meter.Float64Histogram(
		"engine_tick_latency_ms",
		metric.WithDescription("Time to run one full detection tick"),
		metric.WithUnit("ms"),
	)
	return err
}

// Subscribe registers a subscriber notified of every emitted evaluation.
func (e *Engine) Subscribe(s OpportunitySubscriber) {
	e.subscribers = append(e.subscribers, s)
}

// Start launches the aggregator and the tick loop.
func (e *Engine) Start(ctx context.Context) error {
	if e.reporter != nil {
		if err := e.reporter.Start(ctx); err != nil {
			return err
		}
	}
	if err := e.aggregator.Start(ctx); err != nil {
		return err
	}
	go e.run(ctx)
	return nil
}

func (e *Engine) run(ctx context.Context) {
	ticker := time.NewTicker(e.config.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.done:
			return
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

// Stop idempotently halts the tick loop, the aggregator, and the reporter.
func (e *Engine) Stop() error {
	e.stopOnce.Do(func() { close(e.done) })
	if err := e.aggregator.Stop(); err != nil {
		return err
	}
	if e.reporter != nil {
		return e.reporter.Stop()
	}
	return nil
}

// tick runs one full pass: snapshot -> build -> detect -> optimize/assess
// -> evaluate -> emit. Every stage degrades gracefully: an empty snapshot
// or graph simply ends the tick early rather than erroring.
func (e *Engine) tick(ctx context.Context) {
	ctx, span := e.tracer.Start(ctx, "Engine.tick")
	defer span.End()
	start := time.Now()

	prices := e.aggregator.Snapshot(e.config.PriceMaxAge)
	if e.reporter != nil {
		e.reporter.UpdatePrices(PriceSnapshot{Prices: prices, AsOf: time.Now()})
	}
	if len(prices) == 0 {
		return
	}

	graph := e.graphs.Build(ctx, prices)
	if graph.IsEmpty() {
		return
	}

	detected := e.cycles.Detect(ctx, graph)

	for _, cycle := range detected {
		key := cycle.Key()
		if e.alreadyReported(key) {
			continue
		}
		eval, _, ok := e.evaluateCycle(ctx, cycle, prices)
		if !ok {
			continue
		}
		e.remember(key)
		e.emit(eval)
	}

	if e.metrics != nil {
		e.metrics.ticksRun.Add(ctx, 1)
		e.metrics.tickLatency.Record(ctx, float64(time.Since(start).Microseconds())/1000.0)
	}
}

func (e *Engine) evaluateCycle(ctx context.Context, cycle domain.Cycle, prices map[marketDomain.PriceKey]marketDomain.AssetPrice) (domain.ComprehensiveEvaluation, domain.Opportunity, bool) {
	if len(cycle.Path) == 0 {
		return domain.ComprehensiveEvaluation{}, domain.Opportunity{}, false
	}

	notional := e.config.DefaultNotionalUSD
	grossProfit := cycle.ProfitMargin * notional

	liquidity := 0.0
	for _, edge := range cycle.Edges {
		if liquidity == 0 || edge.Liquidity < liquidity {
			liquidity = edge.Liquidity
		}
	}

	baseCost := e.costs.Compose(ctx, cycle, notional, grossProfit, nil, 0, liquidity, 0)

	paths := e.optimizer.Optimize(ctx, cycle, notional, baseCost, e.config.MonteCarloBaseSeed)
	if len(paths) == 0 {
		return domain.ComprehensiveEvaluation{}, domain.Opportunity{}, false
	}
	best := paths[0]

	source := cycle.Path[0]
	target := cycle.Path[len(cycle.Path)-1]
	sourcePrice := prices[marketDomain.PriceKey{ChainID: source.ChainID, Asset: source.Asset}]
	targetPrice := prices[marketDomain.PriceKey{ChainID: target.ChainID, Asset: target.Asset}]

	opp := domain.NewOpportunity(
		uuid.NewString(),
		string(source.Asset),
		source.ChainID,
		target.ChainID,
		sourcePrice.Price,
		targetPrice.Price,
		grossProfit,
		best.Costs.TotalGasUSD,
		best.Costs.TotalBridgeUSD,
		notional,
		cycle.ExecutionTimeS,
		0,
		cycle.Confidence,
		cycle,
		time.Now(),
	)
	opp.ExecutionPaths = paths

	in := EvaluationInput{
		Opportunity:       opp,
		BestPath:          best,
		BestPoolLiquidity: liquidity,
		VenueLiquidity:    venueLiquidityOf(cycle),
		OpportunityAgeS:   0,
	}
	eval := e.evaluator.Evaluate(ctx, in)
	opp.RiskScore = eval.Risk.OverallRisk

	return eval, opp, true
}

func venueLiquidityOf(cycle domain.Cycle) map[string]float64 {
	out := make(map[string]float64, len(cycle.Edges))
	for _, e := range cycle.Edges {
		out[e.VenueID] += e.Liquidity
	}
	return out
}

func (e *Engine) alreadyReported(id string) bool {
	e.recentMu.Lock()
	defer e.recentMu.Unlock()
	_, ok := e.recentKeys[id]
	return ok
}

func (e *Engine) remember(id string) {
	e.recentMu.Lock()
	defer e.recentMu.Unlock()

	if elem, ok := e.recentKeys[id]; ok {
		e.recentLRU.MoveToFront(elem)
		return
	}

	elem := e.recentLRU.PushFront(id)
	e.recentKeys[id] = elem

	for e.recentLRU.Len() > e.config.MaxRecentCache {
		oldest := e.recentLRU.Back()
		if oldest == nil {
			break
		}
		e.recentLRU.Remove(oldest)
		delete(e.recentKeys, oldest.Value.(string))
	}
}

func (e *Engine) emit(eval domain.ComprehensiveEvaluation) {
	if e.metrics != nil {
		e.metrics.opportunitiesEmitted.Add(context.Background(), 1)
	}
	if e.reporter != nil {
		e.reporter.Report(eval)
	}
	for _, s := range e.subscribers {
		s.OnOpportunity(eval)
	}
}
