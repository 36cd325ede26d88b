package pathfinding

import (
	"context"
	"slices"

	"github.com/vanshika/dexroute/backend/internal/domain"
)

// Result is the outcome of a single route search.
type Result struct {
	// Visited holds every asset expanded before the search concluded. When the
	// target is unreachable it is exactly the origin's connected component.
	Visited map[domain.AssetID]struct{}
	// Path runs from origin to target inclusive. It is empty when no route exists.
	Path []domain.AssetID
}

// Found reports whether a route was located.
func (r Result) Found() bool {
	return len(r.Path) > 0
}

// Hops returns the number of pairs traversed by Path.
func (r Result) Hops() int {
	if len(r.Path) == 0 {
		return 0
	}
	return len(r.Path) - 1
}

// HasVisited reports whether asset was expanded during the search.
func (r Result) HasVisited(asset domain.AssetID) bool {
	_, ok := r.Visited[asset]
	return ok
}

// VisitedAssets returns the visited set sorted by symbol.
func (r Result) VisitedAssets() []domain.AssetID {
	assets := make([]domain.AssetID, 0, len(r.Visited))
	for asset := range r.Visited {
		assets = append(assets, asset)
	}
	slices.Sort(assets)
	return assets
}

// FindPath runs a breadth-first search from origin to target over pairs and
// returns a shortest route by hop count.
func FindPath(pairs []domain.Pair, origin, target domain.AssetID) Result {
	res, _ := NewGraph(pairs).FindPathContext(context.Background(), origin, target)
	return res
}

// FindPathContext is FindPath with cancellation checked between expansions.
func FindPathContext(ctx context.Context, pairs []domain.Pair, origin, target domain.AssetID) (Result, error) {
	return NewGraph(pairs).FindPathContext(ctx, origin, target)
}

// FindPath searches the graph from origin to target.
func (g *Graph) FindPath(origin, target domain.AssetID) Result {
	res, _ := g.FindPathContext(context.Background(), origin, target)
	return res
}

// FindPathContext searches the graph from origin to target. On cancellation it
// returns the assets visited so far, an empty path and the context error.
func (g *Graph) FindPathContext(ctx context.Context, origin, target domain.AssetID) (Result, error) {
	s := newSearch(g, origin, target)
	if err := s.run(ctx); err != nil {
		return Result{Visited: s.visited, Path: []domain.AssetID{}}, err
	}
	return Result{Visited: s.visited, Path: s.path()}, nil
}

// search is the traversal state of one FindPath call. Nothing in it outlives
// the call.
type search struct {
	graph  *Graph
	origin domain.AssetID
	target domain.AssetID

	queue      []domain.AssetID
	discovered map[domain.AssetID]struct{}
	visited    map[domain.AssetID]struct{}
	parent     map[domain.AssetID]domain.AssetID
	found      bool
}

func newSearch(g *Graph, origin, target domain.AssetID) *search {
	return &search{
		graph:      g,
		origin:     origin,
		target:     target,
		queue:      []domain.AssetID{origin},
		discovered: map[domain.AssetID]struct{}{origin: {}},
		visited:    make(map[domain.AssetID]struct{}),
		parent:     make(map[domain.AssetID]domain.AssetID),
	}
}

func (s *search) run(ctx context.Context) error {
	for len(s.queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		current := s.queue[0]
		s.queue = s.queue[1:]
		s.visited[current] = struct{}{}

		if current == s.target {
			s.found = true
			s.queue = nil
			return nil
		}

		// Parallel pairs repeat a neighbor; the discovered check makes the
		// repeat a no-op.
		for _, next := range s.graph.adjacency[current] {
			if _, ok := s.discovered[next]; ok {
				continue
			}
			s.discovered[next] = struct{}{}
			s.parent[next] = current
			s.queue = append(s.queue, next)
		}
	}
	return nil
}

func (s *search) path() []domain.AssetID {
	if !s.found {
		return []domain.AssetID{}
	}
	path := []domain.AssetID{s.target}
	for current := s.target; current != s.origin; {
		current = s.parent[current]
		path = append(path, current)
	}
	slices.Reverse(path)
	return path
}
