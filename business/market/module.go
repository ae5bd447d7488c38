// Package market implements the price aggregation bounded context: it
// turns CEX/DEX feeds across every configured chain into one continuously
// updated cross-chain price table the arbitrage context reads from.
package market

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/meridianfi/arbengine/business/market/app"
	"github.com/meridianfi/arbengine/business/market/di"
	marketDomain "github.com/meridianfi/arbengine/business/market/domain"
	"github.com/meridianfi/arbengine/business/market/infra/binance"
	"github.com/meridianfi/arbengine/business/market/infra/uniswap"
	"github.com/meridianfi/arbengine/internal/asset"
	"github.com/meridianfi/arbengine/internal/config"
	internalDI "github.com/meridianfi/arbengine/internal/di"
	"github.com/meridianfi/arbengine/internal/kvstore"
	"github.com/meridianfi/arbengine/internal/logger"
	"github.com/meridianfi/arbengine/internal/monolith"
	"github.com/redis/go-redis/v9"
)

// Module implements the market (price aggregation) bounded context.
type Module struct{}

// RegisterServices wires the canonical-asset mapper, the aggregator, and
// one price source adapter per chain/venue combination the configuration
// names.
func (m *Module) RegisterServices(c internalDI.Container) error {
	internalDI.RegisterToken(c, di.MapperStore, func(sr internalDI.ServiceRegistry) kvstore.KVStore {
		cfg := sr.Get("config").(*config.Config)
		if cfg.Persistence.RedisAddr == "" {
			return kvstore.NewInMemory()
		}
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Persistence.RedisAddr,
			DB:   cfg.Persistence.RedisDB,
		})
		return kvstore.NewRedis(client)
	})

	internalDI.RegisterToken(c, di.Mapper, func(sr internalDI.ServiceRegistry) *marketDomain.Mapper {
		return marketDomain.DefaultMapper()
	})

	internalDI.RegisterToken(c, di.Aggregator, func(sr internalDI.ServiceRegistry) *app.Aggregator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		mapper := di.GetMapper(sr)

		agg := app.NewAggregator(mapper, cfg.AggregatorConfig(), log)

		for _, source := range buildSources(sr, cfg, log) {
			agg.RegisterSource(source)
		}

		return agg
	})

	return nil
}

// buildSources constructs one Uniswap V3 source adapter for each configured
// chain that has a known wrapped-native/USDC pair (Ethereum, Polygon,
// Arbitrum) and whose RPC dial and provider setup succeed, plus one
// Binance source adapter feeding Ethereum's reference price, treating the
// centralized exchange as an extra independent source rather than a
// separate graph node.
func buildSources(sr internalDI.ServiceRegistry, cfg *config.Config, log logger.LoggerInterface) []app.PriceSourceAdapter {
	var sources []app.PriceSourceAdapter
	pollInterval := time.Duration(cfg.Aggregator.UpdateIntervalMS) * time.Millisecond
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}

	for _, ch := range cfg.Chains {
		ethClient, err := dialChain(ch.HTTPURL)
		if err != nil {
			log.Warn(context.Background(), "market: skipping uniswap source, dial failed", "chain", ch.Name, "error", err)
			continue
		}

		provider, err := uniswap.NewProvider(ethClient, ch.ID, ch.UniswapConfig(), log)
		if err != nil {
			log.Warn(context.Background(), "market: skipping uniswap source, provider init failed", "chain", ch.Name, "error", err)
			continue
		}

		native, quote := nativeUniswapPair(ch)
		if native == nil {
			continue
		}

		oneUnit, err := asset.ParseFloat64(native, 1.0)
		if err != nil {
			log.Warn(context.Background(), "market: skipping uniswap source, amount parse failed", "chain", ch.Name, "error", err)
			continue
		}

		adapter := uniswap.NewSourceAdapter(provider, []uniswap.QuotedPair{
			{
				Symbol:   native.Symbol(),
				TokenIn:  native.Address(),
				TokenOut: quote.Address(),
				AmountIn: oneUnit.Raw(),
			},
		}, ch.ID, pollInterval, cfg.Aggregator.SourceRateLimitMS, log)
		sources = append(sources, adapter)
	}

	if binanceSource := buildBinanceSource(cfg, pollInterval, log); binanceSource != nil {
		sources = append(sources, binanceSource)
	}

	return sources
}

// nativeUniswapPair picks the (native-or-wrapped, USDC) pair used to derive
// a chain's reference USD price via Uniswap; it returns nil when the chain
// has no known wrapped-native/USDC pair in the default asset registry.
func nativeUniswapPair(ch config.ChainConfig) (native, quote *asset.Asset) {
	switch ch.ID {
	case asset.ChainIDEthereum:
		return asset.WETH, asset.USDC
	case asset.ChainIDPolygon:
		return asset.WMATIC, asset.USDCPolygon
	case asset.ChainIDArbitrum:
		return asset.WETH, asset.USDCArbitrum
	default:
		return nil, nil
	}
}

func buildBinanceSource(cfg *config.Config, pollInterval time.Duration, log logger.LoggerInterface) app.PriceSourceAdapter {
	pair := marketDomain.NewPair(asset.ETH, asset.USDC)
	providerCfg := binance.DefaultProviderConfig([]string{"ETHUSDC"})
	provider, err := binance.NewProvider(providerCfg, log)
	if err != nil {
		log.Warn(context.Background(), "market: skipping binance source, provider init failed", "error", err)
		return nil
	}
	tradeSize, err := asset.ParseFloat64(asset.ETH, 1.0)
	if err != nil {
		log.Warn(context.Background(), "market: skipping binance source, amount parse failed", "error", err)
		return nil
	}
	return binance.NewSourceAdapter(provider, []marketDomain.Pair{pair}, asset.ChainIDEthereum, tradeSize, pollInterval, cfg.Aggregator.SourceRateLimitMS, log)
}

// Startup starts the aggregator, which in turn starts every registered
// price source; a source that fails to connect is logged and skipped
// rather than failing the whole module, since the engine can still
// operate on the sources that did connect.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	mapper := di.GetMapper(mono.Services())
	store := di.GetMapperStore(mono.Services())

	if err := mapper.LoadCustomMappings(ctx, store); err != nil {
		log.Warn(ctx, "market module: failed to load persisted custom asset mappings", "error", err)
	}

	agg := di.GetAggregator(mono.Services())

	if err := agg.Start(ctx); err != nil {
		log.Warn(ctx, "market module: one or more price sources failed to start", "error", err)
	}

	log.Info(ctx, "market module started")
	return nil
}

func dialChain(httpURL string) (*ethclient.Client, error) {
	return ethclient.Dial(httpURL)
}
