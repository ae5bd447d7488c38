package uniswap

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/meridianfi/arbengine/business/market/app"
	"github.com/meridianfi/arbengine/business/market/domain"
	"github.com/meridianfi/arbengine/internal/logger"
	"github.com/meridianfi/arbengine/internal/ratelimit"
)

// QuotedPair is one token pair this adapter polls, priced in terms of
// quote (expected to be a USD stablecoin so Price approximates USD).
type QuotedPair struct {
	Symbol   string // canonical symbol to tag the resulting quote with
	TokenIn  common.Address
	TokenOut common.Address
	AmountIn *big.Int
}

// SourceAdapter polls a Uniswap Provider on an interval and emits one
// SourceQuote per configured pair, tagged to the chain the provider's
// client is connected to.
type SourceAdapter struct {
	provider     *Provider
	pairs        []QuotedPair
	chainID      uint64
	pollInterval time.Duration
	limiter      *ratelimit.Limiter
	logger       logger.LoggerInterface

	cancel context.CancelFunc
}

// NewSourceAdapter wraps provider as a market PriceSourceAdapter. rateLimitMS,
// when positive, caps how often the adapter calls out to the quoter RPC
// endpoint regardless of how many pairs it polls per tick.
func NewSourceAdapter(provider *Provider, pairs []QuotedPair, chainID uint64, pollInterval time.Duration, rateLimitMS int, log logger.LoggerInterface) *SourceAdapter {
	var limiter *ratelimit.Limiter
	if rateLimitMS > 0 {
		limiter = ratelimit.NewWithBurst(1000.0/float64(rateLimitMS), 1)
	}
	return &SourceAdapter{
		provider:     provider,
		pairs:        pairs,
		chainID:      chainID,
		pollInterval: pollInterval,
		limiter:      limiter,
		logger:       log,
	}
}

var _ app.PriceSourceAdapter = (*SourceAdapter)(nil)

// Start begins polling; Uniswap quoting is a pure RPC call so there is no
// separate connect step.
func (a *SourceAdapter) Start(ctx context.Context, sink chan<- domain.SourceQuote) error {
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
		quote, err := a.provider.GetQuote(ctx, pair.TokenIn, pair.TokenOut, pair.AmountIn)
		if err != nil {
			a.logger.Warn(ctx, "uniswap source: quote failed", "symbol", pair.Symbol, "error", err)
			continue
		}

		price, _ := quote.Price.Rate().Float64()
		sq := domain.SourceQuote{
			SourceID:    "uniswap_v3",
			AssetSymbol: pair.Symbol,
			ChainID:     a.chainID,
			Price:       price,
			Timestamp:   time.Now(),
		}

		select {
		case sink <- sq:
		case <-ctx.Done():
			return
		}
	}
}

// Stop cancels the polling loop.
func (a *SourceAdapter) Stop() error {
	if a.cancel != nil {
		a.cancel()
	}
	return nil
}
