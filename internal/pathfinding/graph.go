package pathfinding

import (
	"slices"

	"github.com/vanshika/dexroute/backend/internal/domain"
)

// Graph is an adjacency view over a liquidity pair list. It is immutable once
// built and may be shared between concurrent searches.
type Graph struct {
	adjacency map[domain.AssetID][]domain.AssetID
	assets    []domain.AssetID
	known     map[domain.AssetID]struct{}
	pairs     []domain.Pair
}

// NewGraph indexes pairs so neighbor lookups cost O(degree) instead of a full
// scan of the pair list.
func NewGraph(pairs []domain.Pair) *Graph {
	g := &Graph{
		adjacency: make(map[domain.AssetID][]domain.AssetID),
		known:     make(map[domain.AssetID]struct{}),
		pairs:     slices.Clone(pairs),
	}
	register := func(asset domain.AssetID) {
		if _, ok := g.known[asset]; ok {
			return
		}
		g.known[asset] = struct{}{}
		g.assets = append(g.assets, asset)
	}

	for _, pair := range pairs {
		register(pair.A)
		register(pair.B)
		if pair.IsSelfLoop() {
			continue
		}
		g.adjacency[pair.A] = append(g.adjacency[pair.A], pair.B)
		g.adjacency[pair.B] = append(g.adjacency[pair.B], pair.A)
	}
	return g
}

// Neighbors returns the same sequence as the package level Neighbors for the
// pair list the graph was built from.
func (g *Graph) Neighbors(asset domain.AssetID) []domain.AssetID {
	adjacent := g.adjacency[asset]
	if len(adjacent) == 0 {
		return []domain.AssetID{}
	}
	return slices.Clone(adjacent)
}

// Assets lists every asset appearing in at least one pair, in order of first
// appearance.
func (g *Graph) Assets() []domain.AssetID {
	return slices.Clone(g.assets)
}

// Pairs returns the pair list the graph was built from.
func (g *Graph) Pairs() []domain.Pair {
	return slices.Clone(g.pairs)
}

// Len returns the number of distinct assets.
func (g *Graph) Len() int {
	return len(g.assets)
}

// HasAsset reports whether asset appears in any pair.
func (g *Graph) HasAsset(asset domain.AssetID) bool {
	_, ok := g.known[asset]
	return ok
}
