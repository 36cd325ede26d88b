package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/vanshika/dexroute/backend/internal/domain"
	"github.com/vanshika/dexroute/backend/internal/metrics"
	"github.com/vanshika/dexroute/backend/internal/pathfinding"
	"github.com/vanshika/dexroute/backend/internal/repository"
)

var (
	// ErrInvalidAsset is returned for empty or malformed asset symbols.
	ErrInvalidAsset = errors.New("invalid asset symbol")
	// ErrSelfLoop is returned when a pair would connect an asset to itself.
	ErrSelfLoop = errors.New("pair connects an asset to itself")
	// ErrReadOnly is returned for writes when the pair source cannot store pairs.
	ErrReadOnly = errors.New("pair source is read-only")
)

// PairProvider supplies the current edge list. Every call must return a fresh
// snapshot.
type PairProvider interface {
	ListPairs(ctx context.Context) ([]domain.Pair, error)
}

// PairWriter persists liquidity pairs.
type PairWriter interface {
	UpsertPair(ctx context.Context, pair domain.Pair) error
	DeletePair(ctx context.Context, id domain.PairID) error
}

// PairPager lists pairs a page at a time in the store itself.
type PairPager interface {
	ListPairsPage(ctx context.Context, opts repository.ListPairsOptions) (domain.PairListResult, error)
}

// RouteService answers route queries against the pairs supplied by a PairProvider.
type RouteService struct {
	pairs   PairProvider
	writer  PairWriter
	pager   PairPager
	metrics *metrics.Recorder
	logger  *slog.Logger
	timeout time.Duration
	nowFn   func() time.Time
}

// NewRouteService constructs a RouteService. recorder and logger may be nil.
// When pairs also implements PairWriter, writes are enabled.
func NewRouteService(pairs PairProvider, recorder *metrics.Recorder, logger *slog.Logger) *RouteService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	svc := &RouteService{
		pairs:   pairs,
		metrics: recorder,
		logger:  logger.With("component", "route_service"),
		nowFn:   time.Now,
	}
	if w, ok := pairs.(PairWriter); ok {
		svc.writer = w
	}
	if p, ok := pairs.(PairPager); ok {
		svc.pager = p
	}
	return svc
}

// WithClock overrides the time provider (used primarily in tests).
func (s *RouteService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// WithSearchTimeout bounds each search, pair loading included. Zero disables it.
func (s *RouteService) WithSearchTimeout(d time.Duration) {
	s.timeout = d
}

// FindRoute loads the current pairs and returns a shortest route from one
// asset to another. An unreachable target is not an error: the route comes
// back with Found=false and an empty path.
func (s *RouteService) FindRoute(ctx context.Context, from, to string) (domain.Route, error) {
	origin, target, err := parseRoute(from, to)
	if err != nil {
		return domain.Route{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := s.nowFn()
	pairs, err := s.loadPairs(ctx)
	if err != nil {
		s.metrics.ObserveSearch(metrics.OutcomeError, 0, 0, s.nowFn().Sub(start))
		return domain.Route{}, err
	}
	return s.search(ctx, pathfinding.NewGraph(pairs), origin, target, start)
}

// Neighbors lists the distinct assets sharing a pool with asset.
func (s *RouteService) Neighbors(ctx context.Context, asset string) ([]domain.AssetID, error) {
	id, ok := normalizeAsset(asset)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAsset, asset)
	}
	pairs, err := s.loadPairs(ctx)
	if err != nil {
		return nil, err
	}
	return uniqueAssets(pathfinding.Neighbors(id, pairs)), nil
}

// ListPairs returns the current edge list.
func (s *RouteService) ListPairs(ctx context.Context) ([]domain.Pair, error) {
	return s.loadPairs(ctx)
}

// ListPairsPage returns one page of pairs, optionally only those touching
// params.Asset. Stores implementing PairPager page server side; other sources
// are filtered and sliced in memory.
func (s *RouteService) ListPairsPage(ctx context.Context, params ListPairsParams) (PairsPage, error) {
	page, pageSize := normalizePagination(params.Page, params.PageSize)
	offset := (page - 1) * pageSize

	var asset domain.AssetID
	if params.Asset != "" {
		id, ok := normalizeAsset(params.Asset)
		if !ok {
			return PairsPage{}, fmt.Errorf("%w: %q", ErrInvalidAsset, params.Asset)
		}
		asset = id
	}

	var result domain.PairListResult
	if s.pager != nil {
		res, err := s.pager.ListPairsPage(ctx, repository.ListPairsOptions{
			Offset: offset,
			Limit:  pageSize,
			Asset:  asset,
		})
		if err != nil {
			return PairsPage{}, err
		}
		result = res
	} else {
		pairs, err := s.ListPairs(ctx)
		if err != nil {
			return PairsPage{}, err
		}
		result = pagePairs(pairs, asset, offset, pageSize)
	}

	return PairsPage{
		Items:      result.Items,
		Pagination: buildPaginationMeta(page, pageSize, result.Total),
	}, nil
}

// UpsertPair validates and stores a pair. Self-loops are rejected here even
// though route searches tolerate them.
func (s *RouteService) UpsertPair(ctx context.Context, input PairInput) (domain.Pair, error) {
	if s.writer == nil {
		return domain.Pair{}, ErrReadOnly
	}
	a, ok := normalizeAsset(input.A)
	if !ok {
		return domain.Pair{}, fmt.Errorf("%w: %q", ErrInvalidAsset, input.A)
	}
	b, ok := normalizeAsset(input.B)
	if !ok {
		return domain.Pair{}, fmt.Errorf("%w: %q", ErrInvalidAsset, input.B)
	}
	if a == b {
		return domain.Pair{}, fmt.Errorf("%w: %s", ErrSelfLoop, a)
	}

	pair := domain.Pair{ID: domain.PairID(sanitizeString(input.ID)), A: a, B: b}
	if pair.ID == "" {
		pair.ID = defaultPairID(a, b)
	}
	if err := s.writer.UpsertPair(ctx, pair); err != nil {
		return domain.Pair{}, err
	}
	return pair, nil
}

// DeletePair removes a stored pair.
func (s *RouteService) DeletePair(ctx context.Context, id string) error {
	if s.writer == nil {
		return ErrReadOnly
	}
	pairID := domain.PairID(sanitizeString(id))
	if pairID == "" {
		return errors.New("pair id is required")
	}
	return s.writer.DeletePair(ctx, pairID)
}

func (s *RouteService) search(ctx context.Context, g *pathfinding.Graph, origin, target domain.AssetID, start time.Time) (domain.Route, error) {
	res, err := g.FindPathContext(ctx, origin, target)
	if err != nil {
		s.metrics.ObserveSearch(metrics.OutcomeError, 0, len(res.Visited), s.nowFn().Sub(start))
		return domain.Route{}, fmt.Errorf("route search %s -> %s: %w", origin, target, err)
	}

	route := domain.Route{
		From:    origin,
		To:      target,
		Found:   res.Found(),
		Path:    res.Path,
		Hops:    []domain.RouteHop{},
		Visited: res.VisitedAssets(),
	}
	for _, asset := range []domain.AssetID{origin, target} {
		if !g.HasAsset(asset) && !slices.Contains(route.Unknown, asset) {
			route.Unknown = append(route.Unknown, asset)
		}
	}
	if route.Found {
		hops, err := pathfinding.ResolveHops(res.Path, g.Pairs())
		if err != nil {
			s.metrics.ObserveSearch(metrics.OutcomeError, 0, len(res.Visited), s.nowFn().Sub(start))
			return domain.Route{}, err
		}
		for _, hop := range hops {
			route.Hops = append(route.Hops, domain.RouteHop{PairID: hop.Pair.ID, From: hop.From, To: hop.To})
		}
	}

	outcome := metrics.OutcomeNotFound
	if route.Found {
		outcome = metrics.OutcomeFound
	}
	s.metrics.ObserveSearch(outcome, route.HopCount(), len(res.Visited), s.nowFn().Sub(start))
	s.logger.Debug("route search",
		"from", origin,
		"to", target,
		"found", route.Found,
		"hops", route.HopCount(),
		"visited", len(res.Visited),
		"assets", g.Len(),
	)
	return route, nil
}

func (s *RouteService) loadPairs(ctx context.Context) ([]domain.Pair, error) {
	pairs, err := s.pairs.ListPairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pairs: %w", err)
	}
	s.metrics.SetPairsLoaded(len(pairs))
	return pairs, nil
}

func (s *RouteService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func pagePairs(pairs []domain.Pair, asset domain.AssetID, offset, limit int) domain.PairListResult {
	if asset != "" {
		filtered := pairs[:0:0]
		for _, p := range pairs {
			if p.A == asset || p.B == asset {
				filtered = append(filtered, p)
			}
		}
		pairs = filtered
	}
	total := int64(len(pairs))
	if offset >= len(pairs) {
		return domain.PairListResult{Items: []domain.Pair{}, Total: total}
	}
	end := min(offset+limit, len(pairs))
	return domain.PairListResult{Items: pairs[offset:end], Total: total}
}

func normalizePagination(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}
	return page, pageSize
}

func buildPaginationMeta(page, pageSize int, total int64) PaginationMeta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	}
	return PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

func parseRoute(from, to string) (domain.AssetID, domain.AssetID, error) {
	origin, ok := normalizeAsset(from)
	if !ok {
		return "", "", fmt.Errorf("%w: from %q", ErrInvalidAsset, from)
	}
	target, ok := normalizeAsset(to)
	if !ok {
		return "", "", fmt.Errorf("%w: to %q", ErrInvalidAsset, to)
	}
	return origin, target, nil
}
