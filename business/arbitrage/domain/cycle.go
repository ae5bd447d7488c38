package domain

import "time"

// Cycle is a closed walk through the graph whose edges, taken in order,
// return to the starting node at a net gain once each edge's weight is
// summed. The cycle detector reconstructs it from a relaxed predecessor
// tree; everything downstream (cost calculators, optimizer, evaluator)
// consumes a Cycle, never the raw predecessor array.
type Cycle struct {
	Path  []Node
	Edges []Edge

	// ProfitMargin is the round-trip multiplicative gain minus 1
	// (exp(-sum(weight)) - 1). The edge weights already include each
	// edge's CostAbsolute/price term; the cost calculators' breakdown is
	// not subtracted.
	ProfitMargin float64

	// GasCostUSD is not populated by the cycle detector, and cycle
	// ranking does not read it.
	GasCostUSD float64

	ExecutionTimeS float64
	Confidence     float64
	DetectedAt     time.Time
}

// Length returns the number of edges (hops) in the cycle.
func (c Cycle) Length() int {
	return len(c.Edges)
}

// Key returns a canonical representation of the cycle used for
// deduplication and stable identity: the node sequence rotated so the
// lexicographically/numerically smallest node comes first, preserving
// direction. Two Cycles that traverse the same edges starting from
// different offsets produce the same key; a cycle and its reverse do
// not, since direction is preserved and reversal is economically a
// different trade.
//
// Deduplicating this way (rather than by marking visited nodes during
// detection) is required because distinct negative cycles can share a
// node; marking nodes visited would incorrectly discard one of them.
// Callers that need a recurring cycle to keep the same identity across
// detection ticks (e.g. the engine's recent-opportunity cache) should
// key off this rather than a freshly generated ID.
func (c Cycle) Key() string {
	n := len(c.Path)
	if n == 0 {
		return ""
	}
	minIdx := 0
	for i := 1; i < n; i++ {
		if nodeLess(c.Path[i], c.Path[minIdx]) {
			minIdx = i
		}
	}
	key := ""
	for i := 0; i < n; i++ {
		node := c.Path[(minIdx+i)%n]
		key += node.String() + "|"
	}
	return key
}

func nodeLess(a, b Node) bool {
	if a.ChainID != b.ChainID {
		return a.ChainID < b.ChainID
	}
	return a.Asset < b.Asset
}

// DedupeCycles removes cycles that are rotations of one another,
// keeping the first occurrence (callers should pre-sort by whatever
// tie-break they want preserved, e.g. profit margin descending).
func DedupeCycles(cycles []Cycle) []Cycle {
	seen := make(map[string]struct{}, len(cycles))
	out := make([]Cycle, 0, len(cycles))
	for _, c := range cycles {
		key := c.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
