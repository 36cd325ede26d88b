package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/vanshika/dexroute/backend/internal/pathfinding"
)

// BatchRouter answers many route requests against a single pair snapshot.
type BatchRouter struct {
	service *RouteService
	workers int
}

// NewBatchRouter creates a BatchRouter running at most workers searches at once.
func NewBatchRouter(service *RouteService, workers int) *BatchRouter {
	if workers <= 0 {
		workers = 4
	}
	return &BatchRouter{
		service: service,
		workers: workers,
	}
}

// FindRoutes loads the pairs once, builds one shared adjacency view and runs
// every request against it concurrently. Results keep request order. A bad
// request only fails its own RouteResult; the returned error is reserved for
// pair loading and context cancellation.
func (br *BatchRouter) FindRoutes(ctx context.Context, requests []RouteRequest) ([]RouteResult, error) {
	results := make([]RouteResult, len(requests))
	if len(requests) == 0 {
		return results, nil
	}

	ctx, cancel := br.service.withTimeout(ctx)
	defer cancel()

	pairs, err := br.service.loadPairs(ctx)
	if err != nil {
		return nil, err
	}
	graph := pathfinding.NewGraph(pairs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(br.workers)
	for i, req := range requests {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = RouteResult{Request: req}
			origin, target, err := parseRoute(req.From, req.To)
			if err != nil {
				results[i].Err = err
				return nil
			}
			route, err := br.service.search(gctx, graph, origin, target, br.service.nowFn())
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				results[i].Err = err
				return nil
			}
			results[i].Route = route
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
