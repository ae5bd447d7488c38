package domain_test

import (
	"testing"
	"time"

	"github.com/meridianfi/arbengine/business/arbitrage/domain"
	"github.com/meridianfi/arbengine/internal/asset"
)

func TestGraph_AddNodeDeduplicates(t *testing.T) {
	g := domain.NewGraph(time.Now())
	n := domain.Node{ChainID: 1, Asset: "USDC"}

	g.AddNode(n)
	g.AddNode(n)

	if g.NodeCount() != 1 {
		t.Fatalf("expected 1 node after duplicate AddNode, got %d", g.NodeCount())
	}
}

func TestGraph_AddEdgeRegistersEndpoints(t *testing.T) {
	g := domain.NewGraph(time.Now())
	from := domain.Node{ChainID: 1, Asset: "USDC"}
	to := domain.Node{ChainID: 1, Asset: "WETH"}

	g.AddEdge(domain.Edge{From: from, To: to, Kind: domain.EdgeKindSwap, VenueID: "uniswap-v3:0.05%", Rate: 0.0005})

	if g.NodeCount() != 2 {
		t.Fatalf("expected 2 nodes, got %d", g.NodeCount())
	}
	if g.EdgeCount() != 1 {
		t.Fatalf("expected 1 edge, got %d", g.EdgeCount())
	}
	edges := g.EdgesFrom(from)
	if len(edges) != 1 || edges[0].To != to {
		t.Fatalf("expected one edge from %v to %v, got %v", from, to, edges)
	}
	if len(g.EdgesFrom(to)) != 0 {
		t.Fatalf("expected no outgoing edges from %v", to)
	}
}

func TestGraph_IsEmpty(t *testing.T) {
	g := domain.NewGraph(time.Now())
	if !g.IsEmpty() {
		t.Fatal("expected new graph to be empty")
	}
	g.AddNode(domain.Node{ChainID: 1, Asset: asset.CanonicalAssetID("ETH")})
	if g.IsEmpty() {
		t.Fatal("expected graph with a node to not be empty")
	}
}

func TestGraph_MultipleEdgesFromSameNode(t *testing.T) {
	g := domain.NewGraph(time.Now())
	usdc := domain.Node{ChainID: 1, Asset: "USDC"}
	weth := domain.Node{ChainID: 1, Asset: "WETH"}
	dai := domain.Node{ChainID: 1, Asset: "DAI"}

	g.AddEdge(domain.Edge{From: usdc, To: weth, VenueID: "pool-a"})
	g.AddEdge(domain.Edge{From: usdc, To: dai, VenueID: "pool-b"})

	edges := g.EdgesFrom(usdc)
	if len(edges) != 2 {
		t.Fatalf("expected 2 outgoing edges, got %d", len(edges))
	}
	if g.EdgeCount() != 2 {
		t.Fatalf("expected 2 total edges, got %d", g.EdgeCount())
	}
}
