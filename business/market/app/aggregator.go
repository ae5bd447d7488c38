package app

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/meridianfi/arbengine/business/market/domain"
	"github.com/meridianfi/arbengine/internal/apperror"
	"github.com/meridianfi/arbengine/internal/asset"
	"github.com/meridianfi/arbengine/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	tracerName = "github.com/meridianfi/arbengine/business/market/app"
	meterName  = "github.com/meridianfi/arbengine/business/market/app"
)

// AggregatorConfig holds the aggregator's tunable configuration.
type AggregatorConfig struct {
	Chains                   []uint64
	UpdateIntervalMS         int
	CacheExpirySeconds       int
	ReconnectDelayMS         int
	PriceValidationThreshold float64 // deviation fraction, e.g. 0.05
}

// PriceSourceAdapter is the port a live price source implements.
type PriceSourceAdapter interface {
	Start(ctx context.Context, sink chan<- domain.SourceQuote) error
	Stop() error
}

type aggregatorMetrics struct {
	quotesIngested    metric.Int64Counter
	quotesRejected    metric.Int64Counter
	deviationEvents   metric.Int64Counter
	tableSize         metric.Int64Gauge
}

// Aggregator maintains the (chain, asset) -> AssetPrice table described in
// a continuously updated cross-chain price table. It owns the table
// exclusively; readers receive a Snapshot copy.
type Aggregator struct {
	mapper *domain.Mapper
	config AggregatorConfig
	logger logger.LoggerInterface

	mu    sync.RWMutex
	table map[domain.PriceKey]domain.AssetPrice

	sources []PriceSourceAdapter
	sink    chan domain.SourceQuote

	metrics *aggregatorMetrics

	subs   []func(domain.AssetPrice)
	subsMu sync.Mutex

	stopOnce sync.Once
	done     chan struct{}
}

// NewAggregator creates an Aggregator over the given mapper.
func NewAggregator(mapper *domain.Mapper, cfg AggregatorConfig, log logger.LoggerInterface) *Aggregator {
	a := &Aggregator{
		mapper: mapper,
		config: cfg,
		logger: log,
		table:  make(map[domain.PriceKey]domain.AssetPrice),
		sink:   make(chan domain.SourceQuote, 1024),
		done:   make(chan struct{}),
	}
	if err := a.initMetrics(); err != nil {
		log.Error(context.Background(), "failed to initialize aggregator metrics", "error", err)
	}
	return a
}

func (a *Aggregator) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error
	a.metrics = &aggregatorMetrics{}

	a.metrics.quotesIngested, err = meter.Int64Counter(
		"market_quotes_ingested_total",
		metric.WithDescription("Total source quotes accepted into the price table"),
		metric.WithUnit("{quote}"),
	)
	if err != nil {
		return err
	}
	a.metrics.quotesRejected, err = meter.Int64Counter(
		"market_quotes_rejected_total",
		metric.WithDescription("Total source quotes rejected at ingress"),
		metric.WithUnit("{quote}"),
	)
	if err != nil {
		return err
	}
	a.metrics.deviationEvents, err = meter.Int64Counter(
		"market_deviation_events_total",
		metric.WithDescription("Total quotes accepted despite exceeding the deviation threshold"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return err
	}
	a.metrics.tableSize, err = meter.Int64Gauge(
		"market_price_table_size",
		metric.WithDescription("Current number of (chain, asset) entries in the price table"),
		metric.WithUnit("{entry}"),
	)
	return err
}

// RegisterSource adds a source adapter; Start fans its output into the
// aggregator's ingest loop.
func (a *Aggregator) RegisterSource(s PriceSourceAdapter) {
	a.sources = append(a.sources, s)
}

// Subscribe registers a callback invoked on every accepted price update.
func (a *Aggregator) Subscribe(fn func(domain.AssetPrice)) {
	a.subsMu.Lock()
	defer a.subsMu.Unlock()
	a.subs = append(a.subs, fn)
}

// Start launches every registered source and the ingest loop. A source
// that fails to start does not stop the others or the ingest loop from
// running; the first such failure is returned.
func (a *Aggregator) Start(ctx context.Context) error {
	var firstErr error
	for _, s := range a.sources {
		if err := s.Start(ctx, a.sink); err != nil && firstErr == nil {
			firstErr = apperror.External(apperror.CodeSourceFetchFailed, "starting price source", err)
		}
	}
	go a.run(ctx)
	return firstErr
}

func (a *Aggregator) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.done:
			return
		case q := <-a.sink:
			a.ingest(ctx, q)
		}
	}
}

// Stop idempotently stops the ingest loop and every registered source.
func (a *Aggregator) Stop() error {
	a.stopOnce.Do(func() { close(a.done) })
	var firstErr error
	for _, s := range a.sources {
		if err := s.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ingest validates and merges one source quote into the price table.
func (a *Aggregator) ingest(ctx context.Context, q domain.SourceQuote) {
	if q.Price <= 0 || math.IsNaN(q.Price) || math.IsInf(q.Price, 0) {
		a.reject(ctx, "non-positive or non-finite price")
		return
	}
	if q.Timestamp.After(time.Now().Add(time.Second)) {
		a.reject(ctx, "quote timestamp is in the future")
		return
	}

	canonical, ok := a.resolveAsset(q)
	if !ok {
		a.reject(ctx, "unknown asset symbol after mapper normalization")
		return
	}

	key := domain.PriceKey{ChainID: q.ChainID, Asset: canonical}

	a.mu.Lock()
	current, existed := a.table[key]
	deviated := false
	if existed && current.Price > 0 {
		deviation := math.Abs(q.Price-current.Price) / current.Price
		if deviation > a.config.PriceValidationThreshold {
			deviated = true
		}
	}

	sources := mergeSources(current.Sources, q.SourceID)
	confidence := computeConfidence(len(sources), q.Timestamp)
	slippage := computeSlippage(q.Liquidity)

	updated := domain.AssetPrice{
		Asset:      canonical,
		ChainID:    q.ChainID,
		Price:      q.Price,
		Liquidity:  q.Liquidity,
		Slippage:   slippage,
		Timestamp:  q.Timestamp,
		Sources:    sources,
		Confidence: confidence,
	}
	a.table[key] = updated
	tableSize := len(a.table)
	a.mu.Unlock()

	if a.metrics != nil {
		a.metrics.quotesIngested.Add(ctx, 1, metric.WithAttributes(attribute.String("asset", string(canonical))))
		a.metrics.tableSize.Record(ctx, int64(tableSize))
		if deviated {
			a.metrics.deviationEvents.Add(ctx, 1, metric.WithAttributes(attribute.String("asset", string(canonical))))
		}
	}
	if deviated {
		a.logger.Warn(ctx, "price deviation guard triggered",
			"asset", string(canonical), "chain", q.ChainID,
			"previous", current.Price, "incoming", q.Price,
			"threshold", a.config.PriceValidationThreshold,
		)
	}

	a.notify(updated)
}

func (a *Aggregator) reject(ctx context.Context, reason string) {
	if a.metrics != nil {
		a.metrics.quotesRejected.Add(ctx, 1)
	}
	a.logger.Debug(ctx, "rejected source quote", "reason", reason)
}

func (a *Aggregator) resolveAsset(q domain.SourceQuote) (asset.CanonicalAssetID, bool) {
	symbol := domain.NormalizeSymbol(q.AssetSymbol)
	if symbol == "" {
		return "", false
	}
	return asset.CanonicalAssetID(symbol), true
}

func (a *Aggregator) notify(p domain.AssetPrice) {
	a.subsMu.Lock()
	subs := make([]func(domain.AssetPrice), len(a.subs))
	copy(subs, a.subs)
	a.subsMu.Unlock()

	for _, fn := range subs {
		fn(p)
	}
}

// Snapshot returns a copy of every non-stale entry in the price table.
func (a *Aggregator) Snapshot(maxAge time.Duration) map[domain.PriceKey]domain.AssetPrice {
	now := time.Now()
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make(map[domain.PriceKey]domain.AssetPrice, len(a.table))
	for k, v := range a.table {
		if v.IsStale(now, maxAge) {
			continue
		}
		out[k] = v
	}
	return out
}

func mergeSources(existing []string, next string) []string {
	for _, s := range existing {
		if s == next {
			return existing
		}
	}
	return append(append([]string{}, existing...), next)
}

// computeConfidence derives a 0..1 confidence from source count and age.
// More contributing sources and fresher data both raise confidence; the
// 60-second age-decay reference and similar constants are intentionally
// exposed as the literals below rather than buried deeper in the call
// chain, so a deployment can tune them without touching ingest logic.
func computeConfidence(sourceCount int, ts time.Time) float64 {
	const ageDecaySeconds = 60.0
	sourceFactor := math.Min(1.0, float64(sourceCount)/3.0)
	age := time.Since(ts).Seconds()
	ageFactor := math.Max(0, 1.0-age/ageDecaySeconds)
	return 0.5*sourceFactor + 0.5*ageFactor
}

// computeSlippage derives the default 0..0.1 slippage estimate from
// liquidity depth relative to a $1M reference.
func computeSlippage(liquidity float64) float64 {
	const referenceLiquidity = 1_000_000.0
	if liquidity <= 0 {
		return 0.1
	}
	s := referenceLiquidity / liquidity
	if s < 0 {
		s = 0
	}
	if s > 0.1 {
		s = 0.1
	}
	return s
}
