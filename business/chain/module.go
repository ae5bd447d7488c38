// Package chain implements the chain bounded context: per-chain gas
// pricing and block subscription, multiplexed behind a single
// multi-chain ChainAdapter, plus the cross-chain bridge catalog.
package chain

import (
	"context"
	"fmt"

	"github.com/meridianfi/arbengine/business/chain/app"
	"github.com/meridianfi/arbengine/business/chain/di"
	"github.com/meridianfi/arbengine/business/chain/infra/ethereum"
	marketDI "github.com/meridianfi/arbengine/business/market/di"
	"github.com/meridianfi/arbengine/internal/config"
	internalDI "github.com/meridianfi/arbengine/internal/di"
	"github.com/meridianfi/arbengine/internal/logger"
	"github.com/meridianfi/arbengine/internal/monolith"
)

// Module implements the chain bounded context.
type Module struct{}

// RegisterServices wires the multi-chain adapter (empty; chains are added
// during Startup once the market module's mapper/aggregator are live) and
// the static bridge catalog.
func (m *Module) RegisterServices(c internalDI.Container) error {
	internalDI.RegisterToken(c, di.ChainAdapter, func(sr internalDI.ServiceRegistry) *app.MultiChainAdapter {
		log := sr.Get("logger").(logger.LoggerInterface)
		mapper := marketDI.GetMapper(sr)
		agg := marketDI.GetAggregator(sr)
		return app.NewMultiChainAdapter(mapper, agg, log)
	})

	internalDI.RegisterToken(c, di.BridgeCatalog, func(sr internalDI.ServiceRegistry) *app.StaticBridgeCatalog {
		cfg := sr.Get("config").(*config.Config)
		return app.NewStaticBridgeCatalog(cfg.DomainBridges())
	})

	return nil
}

// Startup connects a gas oracle and block subscriber for every configured
// chain. A chain that fails to connect is logged and left unwired rather
// than failing startup, since the engine's ChainAdapter.Available lets the
// rest of the system route around a chain that never came up.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()
	adapter := di.MultiChainAdapter(mono.Services())

	for _, ch := range cfg.Chains {
		gasCfg := ethereum.DefaultGasOracleConfig(ch.HTTPURL)

		wsURL := ch.WebSocketURL
		if wsURL == "" {
			wsURL = ch.HTTPURL
		}
		subCfg := ethereum.DefaultSubscriberConfig(wsURL, ch.HTTPURL)

		if err := adapter.AddChain(ctx, ch.ID, ch.NativeSymbol, gasCfg, subCfg); err != nil {
			log.Warn(ctx, "chain module: chain failed to connect, continuing without it",
				"chain_id", ch.ID, "chain", ch.Name, "error", err)
			continue
		}
	}

	if len(cfg.Chains) == 0 {
		return fmt.Errorf("chain module: no chains configured")
	}

	log.Info(ctx, "chain module started")
	return nil
}
