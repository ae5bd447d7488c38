package binance

import (
	"context"
	"time"

	"github.com/meridianfi/arbengine/business/market/app"
	"github.com/meridianfi/arbengine/business/market/domain"
	"github.com/meridianfi/arbengine/internal/asset"
	"github.com/meridianfi/arbengine/internal/logger"
	"github.com/meridianfi/arbengine/internal/ratelimit"
	"github.com/shopspring/decimal"
)

var decimalTwo = decimal.NewFromInt(2)

// SourceAdapter polls a Binance Provider on an interval and emits the mid
// price of each configured pair as a SourceQuote tagged to one chain. A
// centralized exchange has no chain of its own, so its quotes serve as an
// extra, independent source for that chain's on-chain reference asset
// rather than a node in the arbitrage graph.
type SourceAdapter struct {
	provider     *Provider
	pairs        []domain.Pair
	chainID      uint64
	pollInterval time.Duration
	tradeSize    asset.Amount
	limiter      *ratelimit.Limiter
	logger       logger.LoggerInterface

	cancel context.CancelFunc
}

// NewSourceAdapter wraps provider as a market PriceSourceAdapter. rateLimitMS,
// when positive, caps how often the adapter calls the exchange's REST
// endpoint regardless of how many pairs it polls per tick.
func NewSourceAdapter(provider *Provider, pairs []domain.Pair, chainID uint64, tradeSize asset.Amount, pollInterval time.Duration, rateLimitMS int, log logger.LoggerInterface) *SourceAdapter {
	var limiter *ratelimit.Limiter
	if rateLimitMS > 0 {
		limiter = ratelimit.NewWithBurst(1000.0/float64(rateLimitMS), 1)
	}
	return &SourceAdapter{
		provider:     provider,
		pairs:        pairs,
		chainID:      chainID,
		pollInterval: pollInterval,
		tradeSize:    tradeSize,
		limiter:      limiter,
		logger:       log,
	}
}

var _ app.PriceSourceAdapter = (*SourceAdapter)(nil)

// Start connects the underlying provider and begins polling.
func (a *SourceAdapter) Start(ctx context.Context, sink chan<- domain.SourceQuote) error {
	if err := a.provider.Connect(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	go a.run(runCtx, sink)
	return nil
}

func (a *SourceAdapter) run(ctx context.Context, sink chan<- domain.SourceQuote) {
	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.pollOnce(ctx, sink)
		}
	}
}

func (a *SourceAdapter) pollOnce(ctx context.Context, sink chan<- domain.SourceQuote) {
	for _, pair := range a.pairs {
		if a.limiter != nil {
			if err := a.limiter.Wait(ctx); err != nil {
				return
			}
		}
		bid, err := a.provider.GetEffectivePrice(ctx, pair, a.tradeSize.ToDecimal(), domain.SideSell)
		if err != nil {
			a.logger.Warn(ctx, "binance source: bid fetch failed", "pair", pair.String(), "error", err)
			continue
		}
		ask, err := a.provider.GetEffectivePrice(ctx, pair, a.tradeSize.ToDecimal(), domain.SideBuy)
		if err != nil {
			a.logger.Warn(ctx, "binance source: ask fetch failed", "pair", pair.String(), "error", err)
			continue
		}

		mid := bid.Rate.Rate().Add(ask.Rate.Rate()).Div(decimalTwo)
		midFloat, _ := mid.Float64()

		quote := domain.SourceQuote{
			SourceID:    "binance",
			AssetSymbol: pair.Base.Symbol(),
			ChainID:     a.chainID,
			Price:       midFloat,
			Timestamp:   time.Now(),
		}

		select {
		case sink <- quote:
		case <-ctx.Done():
			return
		}
	}
}

// Stop cancels the polling loop and closes the underlying provider.
func (a *SourceAdapter) Stop() error {
	if a.cancel != nil {
		a.cancel()
	}
	return a.provider.Close()
}
