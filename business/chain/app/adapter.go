// Package app contains application services and port definitions for the chain context.
package app

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	arbitrageApp "github.com/meridianfi/arbengine/business/arbitrage/app"
	chainDomain "github.com/meridianfi/arbengine/business/chain/domain"
	"github.com/meridianfi/arbengine/business/chain/infra/ethereum"
	marketApp "github.com/meridianfi/arbengine/business/market/app"
	marketDomain "github.com/meridianfi/arbengine/business/market/domain"
	"github.com/meridianfi/arbengine/internal/logger"
)

// bigToFloat converts a wei amount to a float64, accepting the loss of
// precision below 1 wei since gas costs are consumed as USD estimates.
func bigToFloat(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(wei).Float64()
	return f
}

// gasLimitByTxKind approximates gas usage for the transaction shapes the
// arbitrage engine costs out. A prospective route has no real calldata to
// estimate against, so the engine asks for a kind rather than a payload.
var gasLimitByTxKind = map[string]uint64{
	"swap":       180_000,
	"bridge_out": 120_000,
	"bridge_in":  90_000,
	"approve":    46_000,
}

const defaultGasLimit = 150_000

// chainClient bundles one chain's gas oracle and block subscriber behind
// a BlockchainService.
type chainClient struct {
	nativeSymbol string
	service      *BlockchainService
}

// MultiChainAdapter implements the arbitrage engine's ChainAdapter port
// over one BlockchainService (gas oracle + block subscriber pair) per
// configured chain. It resolves native-token USD prices from the market
// aggregator's price table rather than talking to a chain directly, since
// that table is already canonicalizing cross-chain asset identities.
type MultiChainAdapter struct {
	mu      sync.RWMutex
	clients map[uint64]*chainClient

	mapper *marketDomain.Mapper
	agg    *marketApp.Aggregator
	logger logger.LoggerInterface

	priceMaxAge time.Duration
}

// NewMultiChainAdapter creates an adapter with no chains wired yet; call
// AddChain once per configured chain during module startup.
func NewMultiChainAdapter(mapper *marketDomain.Mapper, agg *marketApp.Aggregator, log logger.LoggerInterface) *MultiChainAdapter {
	return &MultiChainAdapter{
		clients:     make(map[uint64]*chainClient),
		mapper:      mapper,
		agg:         agg,
		logger:      log,
		priceMaxAge: 60 * time.Second,
	}
}

// AddChain constructs, connects, and registers the gas oracle and block
// subscriber for one chain. A failure to connect is returned rather than
// silently skipped, since Startup decides whether to tolerate it.
func (m *MultiChainAdapter) AddChain(ctx context.Context, chainID uint64, nativeSymbol string, gasCfg ethereum.GasOracleConfig, subCfg ethereum.SubscriberConfig) error {
	oracle, err := ethereum.NewGasOracle(gasCfg, m.logger)
	if err != nil {
		return fmt.Errorf("chain %d: new gas oracle: %w", chainID, err)
	}
	if err := oracle.Connect(ctx); err != nil {
		return fmt.Errorf("chain %d: connect gas oracle: %w", chainID, err)
	}

	sub, err := ethereum.NewSubscriber(subCfg, m.logger)
	if err != nil {
		return fmt.Errorf("chain %d: new subscriber: %w", chainID, err)
	}
	if _, err := sub.Subscribe(ctx); err != nil {
		return fmt.Errorf("chain %d: subscribe: %w", chainID, err)
	}

	m.mu.Lock()
	m.clients[chainID] = &chainClient{
		nativeSymbol: nativeSymbol,
		service:      NewBlockchainService(sub, oracle),
	}
	m.mu.Unlock()

	m.logger.Info(ctx, "chain adapter wired", "chain_id", chainID, "native_symbol", nativeSymbol)
	return nil
}

func (m *MultiChainAdapter) client(chainID uint64) (*chainClient, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients[chainID]
	return c, ok
}

// CurrentGasPrice returns the current gas quote for a chain.
func (m *MultiChainAdapter) CurrentGasPrice(ctx context.Context, chainID uint64) (arbitrageApp.GasQuote, error) {
	c, ok := m.client(chainID)
	if !ok {
		return arbitrageApp.GasQuote{}, fmt.Errorf("chain %d: not configured", chainID)
	}

	price, err := c.service.GetGasPrice(ctx)
	if err != nil {
		return arbitrageApp.GasQuote{}, err
	}

	tipWei := 0.0
	if tip, err := c.service.GetGasTipCap(ctx); err == nil && tip != nil {
		tipWei = bigToFloat(tip)
	}

	priceWei := bigToFloat(price.Wei())
	return arbitrageApp.GasQuote{
		PriceWeiPerGas:   priceWei,
		BaseFeeWeiPerGas: priceWei - tipWei,
		PriorityFeeWei:   tipWei,
	}, nil
}

// BlockNumber returns the latest known block number for a chain.
func (m *MultiChainAdapter) BlockNumber(ctx context.Context, chainID uint64) (uint64, error) {
	c, ok := m.client(chainID)
	if !ok {
		return 0, fmt.Errorf("chain %d: not configured", chainID)
	}
	block, err := c.service.LatestBlock(ctx)
	if err != nil {
		return 0, err
	}
	return block.Number, nil
}

// EstimateGas returns an approximate gas limit for a transaction kind on
// a chain (swap, bridge_out, bridge_in, approve).
func (m *MultiChainAdapter) EstimateGas(ctx context.Context, chainID uint64, txKind string) (uint64, error) {
	if _, ok := m.client(chainID); !ok {
		return 0, fmt.Errorf("chain %d: not configured", chainID)
	}
	if limit, ok := gasLimitByTxKind[txKind]; ok {
		return limit, nil
	}
	return defaultGasLimit, nil
}

// NativeTokenUSD resolves the USD price of a chain's native asset from
// the market aggregator's price table.
func (m *MultiChainAdapter) NativeTokenUSD(ctx context.Context, chainID uint64) (float64, error) {
	nativeID, ok := m.mapper.CanonicalNative(chainID)
	if !ok {
		return 0, fmt.Errorf("chain %d: no native asset mapping", chainID)
	}
	snapshot := m.agg.Snapshot(m.priceMaxAge)
	price, ok := snapshot[marketDomain.PriceKey{ChainID: chainID, Asset: nativeID}]
	if !ok {
		return 0, fmt.Errorf("chain %d: no recent price for native asset %s", chainID, nativeID)
	}
	return price.Price, nil
}

// Available reports whether a chain's connections are live.
func (m *MultiChainAdapter) Available(chainID uint64) bool {
	c, ok := m.client(chainID)
	if !ok {
		return false
	}
	return c.service.ConnectionState() == chainDomain.StateConnected
}
