package app

import (
	"context"
	"math"
	"time"

	"github.com/meridianfi/arbengine/business/arbitrage/domain"
	marketDomain "github.com/meridianfi/arbengine/business/market/domain"
	"github.com/meridianfi/arbengine/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// GraphBuilderConfig configures per-chain swap venues and bridge cost
// estimation used while constructing the per-tick graph.
type GraphBuilderConfig struct {
	SwapVenuesPerChain map[uint64][]string // DEX protocol names available on a chain
	TypicalSwapTimeS   float64
}

type graphBuilderMetrics struct {
	nodesBuilt metric.Int64Histogram
	edgesBuilt metric.Int64Histogram
	buildLatency metric.Float64Histogram
}

// GraphBuilder constructs the per-tick directed graph of (chain, asset)
// nodes with swap/bridge edges.
type GraphBuilder struct {
	mapper  *marketDomain.Mapper
	chains  ChainAdapter
	bridges BridgeCatalog
	config  GraphBuilderConfig
	logger  logger.LoggerInterface

	tracer  trace.Tracer
	metrics *graphBuilderMetrics
}

// NewGraphBuilder wires the mapper, chain adapter, and bridge catalog.
func NewGraphBuilder(mapper *marketDomain.Mapper, chains ChainAdapter, bridges BridgeCatalog, cfg GraphBuilderConfig, log logger.LoggerInterface) *GraphBuilder {
	b := &GraphBuilder{
		mapper:  mapper,
		chains:  chains,
		bridges: bridges,
		config:  cfg,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}
	if err := b.initMetrics(); err != nil {
		log.Error(context.Background(), "failed to initialize graph builder metrics", "error", err)
	}
	return b
}

func (b *GraphBuilder) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error
	b.metrics = &graphBuilderMetrics{}

	b.metrics.nodesBuilt, err = meter.Int64Histogram(
		"graph_nodes_built",
		metric.WithDescription("Number of nodes in the per-tick arbitrage graph"),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return err
	}
	b.metrics.edgesBuilt, err = meter.Int64Histogram(
		"graph_edges_built",
		metric.WithDescription("Number of edges in the per-tick arbitrage graph"),
		metric.WithUnit("{edge}"),
	)
	if err != nil {
		return err
	}
	b.metrics.buildLatency, err = meter.Float64Histogram(
		"graph_build_latency_ms",
		metric.WithDescription("Time to build one tick's arbitrage graph"),
		metric.WithUnit("ms"),
	)
	return err
}

// Build constructs a Graph from a snapshot of non-stale prices.
func (b *GraphBuilder) Build(ctx context.Context, prices map[marketDomain.PriceKey]marketDomain.AssetPrice) *domain.Graph {
	ctx, span := b.tracer.Start(ctx, "GraphBuilder.Build")
	defer span.End()
	start := time.Now()

	g := domain.NewGraph(time.Now())

	for key, price := range prices {
		if price.Price <= 0 || math.IsNaN(price.Price) {
			continue // numerical pathology: treated as absent node, never panics
		}
		if !b.chains.Available(key.ChainID) {
			continue // graph builder omits edges/nodes sourced from unavailable chains
		}
		g.AddNode(domain.Node{ChainID: key.ChainID, Asset: key.Asset})
	}

	for _, from := range g.Nodes {
		for _, to := range g.Nodes {
			if from == to {
				continue
			}
			fromPrice, ok := prices[marketDomain.PriceKey{ChainID: from.ChainID, Asset: from.Asset}]
			if !ok {
				continue
			}
			toPrice, ok := prices[marketDomain.PriceKey{ChainID: to.ChainID, Asset: to.Asset}]
			if !ok {
				continue
			}

			if from.ChainID == to.ChainID {
				b.addSwapEdges(ctx, g, from, to, fromPrice, toPrice)
			} else if from.Asset == to.Asset {
				b.addBridgeEdges(ctx, g, from, to, fromPrice, toPrice)
			}
		}
	}

	if b.metrics != nil {
		b.metrics.nodesBuilt.Record(ctx, int64(g.NodeCount()))
		b.metrics.edgesBuilt.Record(ctx, int64(g.EdgeCount()))
		b.metrics.buildLatency.Record(ctx, float64(time.Since(start).Microseconds())/1000.0)
	}

	return g
}

func (b *GraphBuilder) addSwapEdges(ctx context.Context, g *domain.Graph, from, to domain.Node, fromPrice, toPrice marketDomain.AssetPrice) {
	venues := b.config.SwapVenuesPerChain[from.ChainID]
	if len(venues) == 0 {
		venues = []string{"default"}
	}

	gasUSD := b.chainGasCostEstimateUSD(ctx, from.ChainID)
	rate := toPrice.Price / fromPrice.Price

	for _, venue := range venues {
		g.AddEdge(domain.Edge{
			From:         from,
			To:           to,
			Kind:         domain.EdgeKindSwap,
			VenueID:      venue,
			Rate:         rate,
			CostAbsolute: gasUSD,
			Weight:       edgeWeight(rate, gasUSD, fromPrice.Price),
			CostTimeS:    b.config.TypicalSwapTimeS,
			Liquidity:    math.Min(fromPrice.Liquidity, toPrice.Liquidity),
			Source:       "swap",
			AsOf:         time.Now(),
		})
	}
}

func (b *GraphBuilder) addBridgeEdges(ctx context.Context, g *domain.Graph, from, to domain.Node, fromPrice, toPrice marketDomain.AssetPrice) {
	for _, bridge := range b.bridges.Bridges(from.ChainID, to.ChainID) {
		costAbsolute := bridge.Fee.Base + fromPrice.Price*bridge.Fee.Percentage
		if costAbsolute < bridge.Fee.Min {
			costAbsolute = bridge.Fee.Min
		}
		if costAbsolute > bridge.Fee.Max {
			costAbsolute = bridge.Fee.Max
		}
		rate := toPrice.Price / fromPrice.Price

		g.AddEdge(domain.Edge{
			From:         from,
			To:           to,
			Kind:         domain.EdgeKindBridge,
			VenueID:      bridge.ID,
			Rate:         rate,
			CostAbsolute: costAbsolute,
			Weight:       edgeWeight(rate, costAbsolute, fromPrice.Price),
			CostTimeS:    bridge.AvgProcessingSeconds,
			Liquidity:    math.Min(fromPrice.Liquidity, toPrice.Liquidity),
			Source:       "bridge:" + bridge.ID,
			AsOf:         time.Now(),
		})
	}
}

// edgeWeight implements w = -(ln(p_v/p_u) - cost_absolute/p_u). Log space
// is mandatory: it turns the multiplicative product of ratios around a
// cycle into a sum the relaxation algorithm can compare.
func edgeWeight(rate, costAbsolute, priceU float64) float64 {
	if rate <= 0 || priceU <= 0 {
		return math.Inf(1) // numerical pathology: no usable edge
	}
	return -(math.Log(rate) - costAbsolute/priceU)
}

func (b *GraphBuilder) chainGasCostEstimateUSD(ctx context.Context, chainID uint64) float64 {
	quote, err := b.chains.CurrentGasPrice(ctx, chainID)
	if err != nil {
		b.logger.Debug(ctx, "gas price unavailable for swap edge cost estimate", "chain", chainID, "error", err)
		return 0
	}
	nativeUSD, err := b.chains.NativeTokenUSD(ctx, chainID)
	if err != nil {
		return 0
	}
	const estimatedSwapGasUnits = 180_000.0
	gasNative := estimatedSwapGasUnits * quote.PriceWeiPerGas * 1e-18
	return gasNative * nativeUSD
}
