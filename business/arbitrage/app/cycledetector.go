package app

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/meridianfi/arbengine/business/arbitrage/domain"
	"github.com/meridianfi/arbengine/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CycleDetectorConfig configures the Bellman-Ford search and output cap.
type CycleDetectorConfig struct {
	MinProfitThreshold float64
	TopN               int // default 100
}

type cycleDetectorMetrics struct {
	cyclesFound    metric.Int64Histogram
	detectLatency  metric.Float64Histogram
}

// CycleDetector finds negative-weight cycles (profitable loops) in the
// arbitrage graph via Bellman-Ford with predecessor reconstruction, per
// negative-cycle detection. It runs single-threaded per tick.
type CycleDetector struct {
	config  CycleDetectorConfig
	logger  logger.LoggerInterface
	tracer  trace.Tracer
	metrics *cycleDetectorMetrics
}

// NewCycleDetector creates a CycleDetector.
func NewCycleDetector(cfg CycleDetectorConfig, log logger.LoggerInterface) *CycleDetector {
	if cfg.TopN <= 0 {
		cfg.TopN = 100
	}
	d := &CycleDetector{config: cfg, logger: log, tracer: otel.Tracer(tracerName)}
	if err := d.initMetrics(); err != nil {
		log.Error(context.Background(), "failed to initialize cycle detector metrics", "error", err)
	}
	return d
}

func (d *CycleDetector) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error
	d.metrics = &cycleDetectorMetrics{}

	d.metrics.cyclesFound, err = meter.Int64Histogram(
		"cycle_detector_cycles_found",
		metric.WithDescription("Number of negative-weight cycles found per detection tick"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return err
	}
	d.metrics.detectLatency, err = meter.Float64Histogram(
		"cycle_detector_latency_ms",
		metric.WithDescription("Time to run one detection tick"),
		metric.WithUnit("ms"),
	)
	return err
}

// Detect runs Bellman-Ford from every unvisited seed node and returns the
// top-N cycles by profit margin, after filtering by MinProfitThreshold
// and deduplicating rotations of the same cycle.
func (d *CycleDetector) Detect(ctx context.Context, g *domain.Graph) []domain.Cycle {
	_, span := d.tracer.Start(ctx, "CycleDetector.Detect")
	defer span.End()
	start := time.Now()

	if g.IsEmpty() {
		return nil
	}

	var all []domain.Cycle
	visited := make(map[domain.Node]bool)

	for _, seed := range g.Nodes {
		if visited[seed] {
			continue
		}
		cycles := d.bellmanFordFrom(g, seed)
		for _, c := range cycles {
			for _, n := range c.Path {
				visited[n] = true
			}
		}
		all = append(all, cycles...)
	}

	all = domain.DedupeCycles(all)

	filtered := all[:0]
	for _, c := range all {
		if c.ProfitMargin > d.config.MinProfitThreshold {
			filtered = append(filtered, c)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].ProfitMargin != filtered[j].ProfitMargin {
			return filtered[i].ProfitMargin > filtered[j].ProfitMargin
		}
		return filtered[i].ExecutionTimeS < filtered[j].ExecutionTimeS
	})

	if len(filtered) > d.config.TopN {
		filtered = filtered[:d.config.TopN]
	}

	if d.metrics != nil {
		d.metrics.cyclesFound.Record(ctx, int64(len(filtered)))
		d.metrics.detectLatency.Record(ctx, float64(time.Since(start).Microseconds())/1000.0)
	}

	return filtered
}

// bellmanFordFrom relaxes every edge |V|-1 times from seed, then performs
// one final pass: any edge that still relaxes witnesses a negative cycle,
// reconstructed by walking predecessors from edge.To until a node repeats.
func (d *CycleDetector) bellmanFordFrom(g *domain.Graph, seed domain.Node) []domain.Cycle {
	dist := make(map[domain.Node]float64, g.NodeCount())
	pred := make(map[domain.Node]domain.Edge, g.NodeCount())
	for _, n := range g.Nodes {
		dist[n] = math.Inf(1)
	}
	dist[seed] = 0

	n := g.NodeCount()
	for i := 0; i < n-1; i++ {
		relaxed := false
		for _, u := range g.Nodes {
			if math.IsInf(dist[u], 1) {
				continue
			}
			for _, e := range bestEdgesFrom(g, u) {
				if nd := dist[u] + e.Weight; nd < dist[e.To] {
					dist[e.To] = nd
					pred[e.To] = e
					relaxed = true
				}
			}
		}
		if !relaxed {
			break
		}
	}

	var cycles []domain.Cycle
	seenWitness := make(map[domain.Node]bool)
	for _, u := range g.Nodes {
		if math.IsInf(dist[u], 1) {
			continue
		}
		for _, e := range bestEdgesFrom(g, u) {
			if dist[u]+e.Weight < dist[e.To]-1e-12 {
				witness := e.To
				if seenWitness[witness] {
					continue
				}
				seenWitness[witness] = true
				if c, ok := reconstructCycle(pred, witness, e); ok {
					cycles = append(cycles, c)
				}
			}
		}
	}
	return cycles
}

// bestEdgesFrom returns one representative edge per destination node,
// applying the tie-break rule: among edges out of u tying on weight, the
// lower cost_time_s wins; still tied, the lexicographically smaller
// (protocol, contract) — approximated here by VenueID — wins.
func bestEdgesFrom(g *domain.Graph, u domain.Node) []domain.Edge {
	byTarget := make(map[domain.Node]domain.Edge)
	for _, e := range g.EdgesFrom(u) {
		cur, ok := byTarget[e.To]
		if !ok || edgeBetter(e, cur) {
			byTarget[e.To] = e
		}
	}
	out := make([]domain.Edge, 0, len(byTarget))
	for _, e := range byTarget {
		out = append(out, e)
	}
	return out
}

func edgeBetter(a, b domain.Edge) bool {
	if a.Weight != b.Weight {
		return a.Weight < b.Weight
	}
	if a.CostTimeS != b.CostTimeS {
		return a.CostTimeS < b.CostTimeS
	}
	// VenueID stands in for (protocol, contract) lexicographic order.
	return a.VenueID < b.VenueID
}

// reconstructCycle walks predecessors from witness until a node repeats,
// then builds the Cycle from that repeated node back to itself.
func reconstructCycle(pred map[domain.Node]domain.Edge, witness domain.Node, triggeringEdge domain.Edge) (domain.Cycle, bool) {
	// Walk back |pred|+1 steps (bounded by map size) to guarantee landing
	// on a node that repeats, per the classical Bellman-Ford witness walk.
	cur := witness
	for i := 0; i < len(pred)+1; i++ {
		e, ok := pred[cur]
		if !ok {
			return domain.Cycle{}, false
		}
		cur = e.From
	}

	start := cur
	var path []domain.Node
	var edges []domain.Edge
	node := start
	for {
		path = append(path, node)
		e, ok := pred[node]
		if !ok {
			return domain.Cycle{}, false
		}
		edges = append(edges, e)
		node = e.From
		if node == start {
			break
		}
		if len(path) > len(pred)+1 {
			return domain.Cycle{}, false // defensive: malformed predecessor chain
		}
	}

	if len(path) < 3 {
		return domain.Cycle{}, false
	}

	// reverse: edges were collected walking backwards via predecessors
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	var sumWeight, sumTime float64
	for _, e := range edges {
		sumWeight += e.Weight
		sumTime += e.CostTimeS
	}
	profitMargin := math.Exp(-sumWeight) - 1

	return domain.Cycle{
		Path:           path,
		Edges:          edges,
		ProfitMargin:   profitMargin,
		ExecutionTimeS: sumTime,
		Confidence:     confidenceFromMargin(profitMargin),
		DetectedAt:     time.Now(),
	}, true
}

func confidenceFromMargin(margin float64) float64 {
	if margin <= 0 {
		return 0
	}
	c := margin * 20 // a 5% margin saturates confidence
	if c > 1 {
		c = 1
	}
	return c
}
