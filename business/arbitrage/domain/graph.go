// Package domain contains the core domain types for the arbitrage context:
// the per-tick graph of tradeable (chain, asset) positions, the negative
// cycles found in it, and the costed, scored opportunities derived from
// those cycles.
package domain

import (
	"fmt"
	"time"

	"github.com/meridianfi/arbengine/internal/asset"
)

// Node identifies a tradeable position: a specific asset on a specific
// chain. Two nodes for the same canonical asset on different chains are
// distinct nodes connected only by bridge edges.
type Node struct {
	ChainID uint64
	Asset   asset.CanonicalAssetID
}

func (n Node) String() string {
	return fmt.Sprintf("%s@%d", n.Asset, n.ChainID)
}

// EdgeKind distinguishes same-chain swaps from cross-chain bridge hops.
type EdgeKind string

const (
	EdgeKindSwap   EdgeKind = "swap"
	EdgeKindBridge EdgeKind = "bridge"
)

// Edge is a directed, weighted connection from one node to another,
// carrying enough market data to reconstruct an execution step later.
type Edge struct {
	From Node
	To   Node
	Kind EdgeKind

	// VenueID names the swap pool or bridge route that prices this edge
	// (e.g. "uniswap-v3:0.05%", "bridge:polygon-pos").
	VenueID string

	// Rate is the ratio of the To node's USD price to the From node's USD
	// price (price_v/price_u), before costs.
	Rate float64

	// CostAbsolute is the fixed cost of traversing this edge in USD,
	// independent of notional (a swap's gas estimate or a bridge's fee);
	// Weight divides it by the From node's USD price.
	CostAbsolute float64

	// Weight is the log-space edge weight used by the cycle detector:
	// w = -(ln(Rate) - CostAbsolute/price_u), negative for a profitable hop.
	Weight float64

	// CostTimeS is the expected time to settle this hop: a swap's typical
	// confirmation time, or a bridge's average processing time.
	CostTimeS float64

	Liquidity float64 // USD-equivalent, for feasibility scoring
	Source    string  // price source / quote provenance, for audit
	AsOf      time.Time
}

// Graph is the per-tick directed graph over (chain, asset) nodes built by
// the graph builder from the current non-stale price table.
type Graph struct {
	BuiltAt time.Time
	Nodes   []Node
	edges   map[Node][]Edge
}

// NewGraph creates an empty graph.
func NewGraph(builtAt time.Time) *Graph {
	return &Graph{
		BuiltAt: builtAt,
		edges:   make(map[Node][]Edge),
	}
}

// AddNode registers a node if not already present.
func (g *Graph) AddNode(n Node) {
	if _, ok := g.edges[n]; ok {
		return
	}
	g.Nodes = append(g.Nodes, n)
	g.edges[n] = nil
}

// AddEdge registers a directed edge, adding its endpoints as nodes if new.
func (g *Graph) AddEdge(e Edge) {
	g.AddNode(e.From)
	g.AddNode(e.To)
	g.edges[e.From] = append(g.edges[e.From], e)
}

// EdgesFrom returns the outgoing edges of a node, or nil if it has none.
func (g *Graph) EdgesFrom(n Node) []Edge {
	return g.edges[n]
}

// NodeCount returns the number of distinct nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// EdgeCount returns the total number of directed edges in the graph.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, es := range g.edges {
		n += len(es)
	}
	return n
}

// IsEmpty reports whether the graph has no nodes.
func (g *Graph) IsEmpty() bool {
	return len(g.Nodes) == 0
}
