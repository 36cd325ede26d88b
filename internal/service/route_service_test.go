package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/vanshika/dexroute/backend/internal/domain"
	"github.com/vanshika/dexroute/backend/internal/metrics"
	"github.com/vanshika/dexroute/backend/internal/repository"
)

type stubPairs struct {
	mu        sync.Mutex
	pairs     []domain.Pair
	listErr   error
	upsertErr error
	deleteErr error
	listCalls int
	upserted  []domain.Pair
	deleted   []domain.PairID
}

func (s *stubPairs) ListPairs(ctx context.Context) ([]domain.Pair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]domain.Pair(nil), s.pairs...), nil
}

func (s *stubPairs) UpsertPair(ctx context.Context, pair domain.Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserted = append(s.upserted, pair)
	return nil
}

func (s *stubPairs) DeletePair(ctx context.Context, id domain.PairID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

// readOnlyPairs hides the write methods of stubPairs.
type readOnlyPairs struct {
	pairs []domain.Pair
}

func (r readOnlyPairs) ListPairs(ctx context.Context) ([]domain.Pair, error) {
	return r.pairs, nil
}

func dexPairs() []domain.Pair {
	return []domain.Pair{
		{ID: "4", A: "ETH", B: "DFI"},
		{ID: "5", A: "BTC", B: "DFI"},
		{ID: "6", A: "USDT", B: "DFI"},
		{ID: "7", A: "USDT", B: "DUSD"},
		{ID: "8", A: "BTC", B: "DFI"},
		{ID: "9", A: "TSLA", B: "DUSD"},
		{ID: "10", A: "DOGE", B: "LTC"},
	}
}

func TestRouteService_FindRoute(t *testing.T) {
	repo := &stubPairs{pairs: dexPairs()}
	svc := NewRouteService(repo, metrics.NewRecorder(), nil)

	route, err := svc.FindRoute(context.Background(), " eth ", "TSLA")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !route.Found {
		t.Fatal("expected route to be found")
	}
	wantPath := []domain.AssetID{"ETH", "DFI", "USDT", "DUSD", "TSLA"}
	if !slices.Equal(route.Path, wantPath) {
		t.Fatalf("expected path %v, got %v", wantPath, route.Path)
	}
	wantPairs := []domain.PairID{"4", "6", "7", "9"}
	if len(route.Hops) != len(wantPairs) {
		t.Fatalf("expected %d hops, got %d", len(wantPairs), len(route.Hops))
	}
	for i, hop := range route.Hops {
		if hop.PairID != wantPairs[i] || hop.From != wantPath[i] || hop.To != wantPath[i+1] {
			t.Errorf("hop %d: unexpected %+v", i, hop)
		}
	}
	if route.HopCount() != 4 {
		t.Errorf("expected 4 hops, got %d", route.HopCount())
	}
}

func TestRouteService_FindRouteUnreachable(t *testing.T) {
	svc := NewRouteService(&stubPairs{pairs: dexPairs()}, nil, nil)

	route, err := svc.FindRoute(context.Background(), "DFI", "LTC")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if route.Found || len(route.Path) != 0 || len(route.Hops) != 0 {
		t.Fatalf("expected empty route, got %+v", route)
	}
	wantVisited := []domain.AssetID{"BTC", "DFI", "DUSD", "ETH", "TSLA", "USDT"}
	if !slices.Equal(route.Visited, wantVisited) {
		t.Fatalf("expected visited %v, got %v", wantVisited, route.Visited)
	}
}

func TestRouteService_FindRouteSameAsset(t *testing.T) {
	svc := NewRouteService(&stubPairs{}, nil, nil)

	route, err := svc.FindRoute(context.Background(), "dfi", "DFI")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !route.Found || !slices.Equal(route.Path, []domain.AssetID{"DFI"}) || len(route.Hops) != 0 {
		t.Fatalf("unexpected route %+v", route)
	}
}

func TestRouteService_FindRouteErrors(t *testing.T) {
	boom := errors.New("graph down")

	tests := []struct {
		name    string
		repo    *stubPairs
		from    string
		to      string
		wantErr error
	}{
		{name: "empty origin", repo: &stubPairs{}, from: " ", to: "BTC", wantErr: ErrInvalidAsset},
		{name: "malformed target", repo: &stubPairs{}, from: "DFI", to: "B T C", wantErr: ErrInvalidAsset},
		{name: "provider failure", repo: &stubPairs{listErr: boom}, from: "DFI", to: "BTC", wantErr: boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewRouteService(tt.repo, metrics.NewRecorder(), nil)
			_, err := svc.FindRoute(context.Background(), tt.from, tt.to)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRouteService_FindRouteCancelled(t *testing.T) {
	svc := NewRouteService(&stubPairs{pairs: dexPairs()}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.FindRoute(ctx, "DFI", "BTC"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRouteService_LoadsFreshPairsEachCall(t *testing.T) {
	repo := &stubPairs{pairs: []domain.Pair{{ID: "1", A: "DFI", B: "BTC"}}}
	svc := NewRouteService(repo, nil, nil)

	first, _ := svc.FindRoute(context.Background(), "BTC", "ETH")
	repo.mu.Lock()
	repo.pairs = append(repo.pairs, domain.Pair{ID: "2", A: "DFI", B: "ETH"})
	repo.mu.Unlock()
	second, _ := svc.FindRoute(context.Background(), "BTC", "ETH")

	if first.Found || !second.Found {
		t.Fatalf("expected second search to see the new pair: %+v / %+v", first, second)
	}
	if repo.listCalls != 2 {
		t.Fatalf("expected 2 pair loads, got %d", repo.listCalls)
	}
}

func TestRouteService_Neighbors(t *testing.T) {
	svc := NewRouteService(&stubPairs{pairs: dexPairs()}, nil, nil)

	got, err := svc.Neighbors(context.Background(), "dfi")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := []domain.AssetID{"ETH", "BTC", "USDT"}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if _, err := svc.Neighbors(context.Background(), ""); !errors.Is(err, ErrInvalidAsset) {
		t.Fatalf("expected ErrInvalidAsset, got %v", err)
	}
}

func TestRouteService_UpsertPair(t *testing.T) {
	repo := &stubPairs{}
	svc := NewRouteService(repo, nil, nil)

	pair, err := svc.UpsertPair(context.Background(), PairInput{A: " dfi", B: "btc "})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := domain.Pair{ID: "DFI-BTC", A: "DFI", B: "BTC"}
	if pair != want || len(repo.upserted) != 1 || repo.upserted[0] != want {
		t.Fatalf("expected %+v stored, got %+v / %+v", want, pair, repo.upserted)
	}

	if _, err := svc.UpsertPair(context.Background(), PairInput{ID: "1", A: "DFI", B: "dfi"}); !errors.Is(err, ErrSelfLoop) {
		t.Fatalf("expected ErrSelfLoop, got %v", err)
	}
	if _, err := svc.UpsertPair(context.Background(), PairInput{ID: "1", A: "DFI"}); !errors.Is(err, ErrInvalidAsset) {
		t.Fatalf("expected ErrInvalidAsset, got %v", err)
	}
}

func TestRouteService_DeletePair(t *testing.T) {
	repo := &stubPairs{}
	svc := NewRouteService(repo, nil, nil)

	if err := svc.DeletePair(context.Background(), " 42 "); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "42" {
		t.Fatalf("unexpected deletes %v", repo.deleted)
	}
	if err := svc.DeletePair(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestRouteService_ReadOnlySource(t *testing.T) {
	svc := NewRouteService(readOnlyPairs{pairs: dexPairs()}, nil, nil)

	if _, err := svc.UpsertPair(context.Background(), PairInput{A: "DFI", B: "BTC"}); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if err := svc.DeletePair(context.Background(), "1"); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
}

func TestBatchRouter_FindRoutes(t *testing.T) {
	repo := &stubPairs{pairs: dexPairs()}
	svc := NewRouteService(repo, metrics.NewRecorder(), nil)
	router := NewBatchRouter(svc, 3)

	var requests []RouteRequest
	for i := 0; i < 20; i++ {
		requests = append(requests, RouteRequest{From: "BTC", To: "TSLA"})
	}
	requests = append(requests,
		RouteRequest{From: "DFI", To: "LTC"},
		RouteRequest{From: "", To: "DFI"},
	)

	results, err := router.FindRoutes(context.Background(), requests)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(results) != len(requests) {
		t.Fatalf("expected %d results, got %d", len(requests), len(results))
	}
	for i := 0; i < 20; i++ {
		if results[i].Err != nil || results[i].Route.HopCount() != 4 {
			t.Fatalf("result %d: unexpected %+v", i, results[i])
		}
	}
	if results[20].Err != nil || results[20].Route.Found {
		t.Fatalf("expected unreachable route, got %+v", results[20])
	}
	if !errors.Is(results[21].Err, ErrInvalidAsset) {
		t.Fatalf("expected ErrInvalidAsset, got %v", results[21].Err)
	}
	if repo.listCalls != 1 {
		t.Fatalf("expected pairs loaded once, got %d", repo.listCalls)
	}
}

func TestBatchRouter_ProviderError(t *testing.T) {
	boom := errors.New("boom")
	router := NewBatchRouter(NewRouteService(&stubPairs{listErr: boom}, nil, nil), 0)

	if _, err := router.FindRoutes(context.Background(), []RouteRequest{{From: "DFI", To: "BTC"}}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	results, err := router.FindRoutes(context.Background(), nil)
	if err != nil || len(results) != 0 {
		t.Fatalf("expected empty result for empty batch, got %v, %v", results, err)
	}
}

func TestBulkIngestor_IngestPairs(t *testing.T) {
	repo := &stubPairs{}
	ingestor := NewBulkIngestor(NewRouteService(repo, nil, nil), 4)

	var inputs []PairInput
	for i := 0; i < 50; i++ {
		inputs = append(inputs, PairInput{ID: fmt.Sprint(i), A: fmt.Sprintf("T%d", i), B: "DFI"})
	}
	inputs = append(inputs, PairInput{ID: "bad", A: "DFI", B: "DFI"})

	err := ingestor.IngestPairs(context.Background(), inputs)
	var taskErr *TaskError
	if !errors.As(err, &taskErr) || len(taskErr.Errors) != 1 {
		t.Fatalf("expected one task error, got %v", err)
	}
	if !errors.Is(err, ErrSelfLoop) {
		t.Fatalf("expected ErrSelfLoop inside task error, got %v", err)
	}
	if len(repo.upserted) != 50 {
		t.Fatalf("expected 50 pairs stored, got %d", len(repo.upserted))
	}
}

func TestBulkIngestor_Cancelled(t *testing.T) {
	ingestor := NewBulkIngestor(NewRouteService(&stubPairs{}, nil, nil), 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ingestor.IngestPairs(ctx, []PairInput{{A: "DFI", B: "BTC"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBulkIngestor_CancelledWhileFailing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	repo := &cancellingPairs{cancel: cancel}
	ingestor := NewBulkIngestor(NewRouteService(repo, nil, nil), 3)

	var inputs []PairInput
	for i := 0; i < 100; i++ {
		inputs = append(inputs, PairInput{ID: fmt.Sprint(i), A: fmt.Sprintf("T%d", i), B: "DFI"})
	}

	err := ingestor.IngestPairs(ctx, inputs)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// cancellingPairs fails every write and cancels the run on the first one.
type cancellingPairs struct {
	readOnlyPairs
	cancel context.CancelFunc
}

func (c *cancellingPairs) UpsertPair(ctx context.Context, pair domain.Pair) error {
	c.cancel()
	return errors.New("store unavailable")
}

func (c *cancellingPairs) DeletePair(ctx context.Context, id domain.PairID) error {
	return nil
}

func TestRouteService_WithClock(t *testing.T) {
	svc := NewRouteService(&stubPairs{}, nil, nil)
	fixed := time.Date(2024, 4, 20, 12, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return fixed })
	svc.WithClock(nil)

	if !svc.nowFn().Equal(fixed) {
		t.Fatal("expected nil clock to be ignored")
	}
}

type pagedPairs struct {
	readOnlyPairs
	opts   repository.ListPairsOptions
	result domain.PairListResult
}

func (p *pagedPairs) ListPairsPage(ctx context.Context, opts repository.ListPairsOptions) (domain.PairListResult, error) {
	p.opts = opts
	return p.result, nil
}

func TestRouteService_ListPairsPageUsesPager(t *testing.T) {
	pager := &pagedPairs{result: domain.PairListResult{Items: dexPairs()[:2], Total: 7}}
	svc := NewRouteService(pager, nil, nil)

	page, err := svc.ListPairsPage(context.Background(), ListPairsParams{Page: 3, PageSize: 2, Asset: " dfi "})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if pager.opts != (repository.ListPairsOptions{Offset: 4, Limit: 2, Asset: "DFI"}) {
		t.Fatalf("unexpected pager options %+v", pager.opts)
	}
	if len(page.Items) != 2 || page.Pagination != (PaginationMeta{Page: 3, PageSize: 2, TotalItems: 7, TotalPages: 4}) {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestRouteService_ListPairsPageInMemory(t *testing.T) {
	svc := NewRouteService(readOnlyPairs{pairs: dexPairs()}, nil, nil)

	tests := []struct {
		name    string
		params  ListPairsParams
		wantIDs []domain.PairID
		total   int64
	}{
		{name: "defaults", params: ListPairsParams{}, wantIDs: []domain.PairID{"4", "5", "6", "7", "8", "9", "10"}, total: 7},
		{name: "asset filter", params: ListPairsParams{Asset: "btc"}, wantIDs: []domain.PairID{"5", "8"}, total: 2},
		{name: "second page", params: ListPairsParams{Page: 2, PageSize: 3}, wantIDs: []domain.PairID{"7", "8", "9"}, total: 7},
		{name: "past the end", params: ListPairsParams{Page: 5, PageSize: 3}, wantIDs: []domain.PairID{}, total: 7},
		{name: "oversized page", params: ListPairsParams{PageSize: 1000}, wantIDs: []domain.PairID{"4", "5", "6", "7", "8", "9", "10"}, total: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.ListPairsPage(context.Background(), tt.params)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			ids := make([]domain.PairID, 0, len(page.Items))
			for _, p := range page.Items {
				ids = append(ids, p.ID)
			}
			if !slices.Equal(ids, tt.wantIDs) {
				t.Fatalf("expected ids %v, got %v", tt.wantIDs, ids)
			}
			if page.Pagination.TotalItems != tt.total {
				t.Fatalf("expected total %d, got %d", tt.total, page.Pagination.TotalItems)
			}
			if page.Pagination.PageSize > 200 {
				t.Fatalf("page size not capped: %d", page.Pagination.PageSize)
			}
		})
	}

	if _, err := svc.ListPairsPage(context.Background(), ListPairsParams{Asset: "$$"}); !errors.Is(err, ErrInvalidAsset) {
		t.Fatalf("expected ErrInvalidAsset, got %v", err)
	}
}

func TestRouteService_FindRouteReportsUnknownAssets(t *testing.T) {
	svc := NewRouteService(readOnlyPairs{pairs: dexPairs()}, nil, nil)

	route, err := svc.FindRoute(context.Background(), "DFI", "XRP")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if route.Found || !slices.Equal(route.Unknown, []domain.AssetID{"XRP"}) {
		t.Fatalf("unexpected route %+v", route)
	}

	route, err = svc.FindRoute(context.Background(), "DFI", "TSLA")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(route.Unknown) != 0 {
		t.Fatalf("expected no unknown assets, got %v", route.Unknown)
	}
}

func TestRouteService_MixedCaseFileSymbols(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.yaml")
	doc := "pairs:\n  - {pairId: '1', a: DFI, b: dBTC}\n  - {pairId: '2', a: dBTC, b: dETH}\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	svc := NewRouteService(repository.NewFileSource(path), nil, nil)

	route, err := svc.FindRoute(context.Background(), "DFI", "dBTC")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !route.Found || !slices.Equal(route.Path, []domain.AssetID{"DFI", "DBTC"}) {
		t.Fatalf("expected direct route, got %+v", route)
	}

	neighbors, err := svc.Neighbors(context.Background(), "dbtc")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !slices.Equal(neighbors, []domain.AssetID{"DFI", "DETH"}) {
		t.Fatalf("unexpected neighbors %v", neighbors)
	}
}
