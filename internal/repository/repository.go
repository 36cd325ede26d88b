package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/vanshika/dexroute/backend/internal/domain"
	"github.com/vanshika/dexroute/backend/internal/graph"
)

// ErrPairNotFound is returned when a pair id matches no stored pool.
var ErrPairNotFound = errors.New("pair not found")

// ListPairsOptions defines pagination for pair listing.
type ListPairsOptions struct {
	Offset int
	Limit  int
	Asset  domain.AssetID
}

// Repository stores liquidity pairs as POOL relationships between Asset nodes.
type Repository struct {
	client graph.Client
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client) *Repository {
	return &Repository{client: client}
}

// UpsertPair creates or replaces the pool identified by pair.ID.
func (r *Repository) UpsertPair(ctx context.Context, pair domain.Pair) error {
	if err := validatePair(pair); err != nil {
		return err
	}

	params := map[string]any{
		"pairId": string(pair.ID),
		"a":      string(pair.A),
		"b":      string(pair.B),
	}
	if _, err := r.client.ExecuteWrite(ctx, upsertPairCypher, params); err != nil {
		return fmt.Errorf("upsert pair %s: %w", pair.ID, err)
	}
	return nil
}

// DeletePair removes the pool identified by id.
func (r *Repository) DeletePair(ctx context.Context, id domain.PairID) error {
	if id == "" {
		return errors.New("pair id is required")
	}
	res, err := r.client.ExecuteWrite(ctx, deletePairCypher, map[string]any{"pairId": string(id)})
	if err != nil {
		return fmt.Errorf("delete pair %s: %w", id, err)
	}
	if len(res.Records) == 0 || res.Records[0].Int("deleted") == 0 {
		return fmt.Errorf("%w: %s", ErrPairNotFound, id)
	}
	return nil
}

// ListPairs returns every stored pool ordered by pair id, giving callers a
// stable edge list.
func (r *Repository) ListPairs(ctx context.Context) ([]domain.Pair, error) {
	res, err := r.client.ExecuteRead(ctx, listAllPairsCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("list pairs query: %w", err)
	}
	return recordsToPairs(res.Records), nil
}

// ListPairsPage returns one page of pools, optionally restricted to those
// touching opts.Asset.
func (r *Repository) ListPairsPage(ctx context.Context, opts ListPairsOptions) (domain.PairListResult, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Limit > 200 {
		opts.Limit = 200
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	params := map[string]any{
		"asset":  string(opts.Asset),
		"offset": opts.Offset,
		"limit":  opts.Limit,
	}

	countRes, err := r.client.ExecuteRead(ctx, countPairsCypher, params)
	if err != nil {
		return domain.PairListResult{}, fmt.Errorf("count pairs query: %w", err)
	}
	var total int64
	if len(countRes.Records) > 0 {
		total = countRes.Records[0].Int("total")
	}

	res, err := r.client.ExecuteRead(ctx, listPairsPageCypher, params)
	if err != nil {
		return domain.PairListResult{}, fmt.Errorf("list pairs query: %w", err)
	}
	return domain.PairListResult{
		Items: recordsToPairs(res.Records),
		Total: total,
	}, nil
}

func recordsToPairs(records []graph.Record) []domain.Pair {
	pairs := make([]domain.Pair, 0, len(records))
	for _, record := range records {
		pair := domain.Pair{
			ID: domain.PairID(record.String("pairId")),
			A:  domain.AssetID(record.String("a")),
			B:  domain.AssetID(record.String("b")),
		}
		if pair.A == "" || pair.B == "" {
			continue
		}
		pairs = append(pairs, pair)
	}
	return pairs
}

func validatePair(pair domain.Pair) error {
	if pair.ID == "" {
		return errors.New("pair id is required")
	}
	if pair.A == "" || pair.B == "" {
		return fmt.Errorf("pair %s: both assets are required", pair.ID)
	}
	return nil
}

const upsertPairCypher = `
OPTIONAL MATCH ()-[old:POOL {pairId: $pairId}]->()
DELETE old
WITH count(*) AS _
MERGE (a:Asset {symbol: $a})
MERGE (b:Asset {symbol: $b})
MERGE (a)-[p:POOL {pairId: $pairId}]->(b)
SET p.updatedAt = datetime()
`

const deletePairCypher = `
MATCH ()-[p:POOL {pairId: $pairId}]->()
DELETE p
RETURN count(p) AS deleted
`

const listAllPairsCypher = `
MATCH (a:Asset)-[p:POOL]->(b:Asset)
RETURN p.pairId AS pairId, a.symbol AS a, b.symbol AS b
ORDER BY pairId
`

const countPairsCypher = `
MATCH (a:Asset)-[p:POOL]->(b:Asset)
WHERE $asset = '' OR a.symbol = $asset OR b.symbol = $asset
RETURN count(p) AS total
`

const listPairsPageCypher = `
MATCH (a:Asset)-[p:POOL]->(b:Asset)
WHERE $asset = '' OR a.symbol = $asset OR b.symbol = $asset
RETURN p.pairId AS pairId, a.symbol AS a, b.symbol AS b
ORDER BY pairId
SKIP $offset LIMIT $limit
`
