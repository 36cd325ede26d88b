package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/vanshika/dexroute/backend/internal/domain"
)

// Dataset contains the generated pools.
type Dataset struct {
	Pairs []domain.Pair `json:"pairs" yaml:"pairs"`
}

// Assets returns the distinct assets in first-appearance order.
func (d Dataset) Assets() []domain.AssetID {
	seen := make(map[domain.AssetID]struct{})
	var assets []domain.AssetID
	for _, p := range d.Pairs {
		for _, a := range []domain.AssetID{p.A, p.B} {
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			assets = append(assets, a)
		}
	}
	return assets
}

// Generator produces synthetic liquidity graphs for load tests and demos.
type Generator struct {
	cfg    Config
	rand   *rand.Rand
	nextID int
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if len(cfg.Hubs) == 0 {
		cfg.Hubs = def.Hubs
	}
	if cfg.NumAssets < len(cfg.Hubs)+1 {
		cfg.NumAssets = max(def.NumAssets, len(cfg.Hubs)+1)
	}
	if cfg.NumPairs <= 0 {
		cfg.NumPairs = def.NumPairs
	}
	if cfg.HubChance < 0 || cfg.HubChance > 1 {
		cfg.HubChance = def.HubChance
	}
	if cfg.ParallelChance < 0 || cfg.ParallelChance > 1 {
		cfg.ParallelChance = def.ParallelChance
	}
	if cfg.Islands < 0 {
		cfg.Islands = 0
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Generate synthesises the pools. Every token of the main market is attached
// to it first so the market is connected; the remaining pools are spread
// between hubs and the long tail. Island markets never share an asset with
// the main market. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	assets := make([]domain.AssetID, 0, g.cfg.NumAssets)
	for _, hub := range g.cfg.Hubs {
		assets = append(assets, domain.NormalizeAsset(hub))
	}
	for i := len(assets); i < g.cfg.NumAssets; i++ {
		assets = append(assets, domain.AssetID(fmt.Sprintf("TKN%04d", i)))
	}
	hubs := assets[:len(g.cfg.Hubs)]

	pairs := make([]domain.Pair, 0, g.cfg.NumPairs)
	seen := make(map[[2]domain.AssetID]struct{}, g.cfg.NumPairs)

	// spanning pools: each new asset joins one already in the market
	for i := 1; i < len(assets) && len(pairs) < g.cfg.NumPairs; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		anchor := assets[g.rand.Intn(i)]
		if i >= len(hubs) && g.rand.Float64() < g.cfg.HubChance {
			anchor = hubs[g.rand.Intn(len(hubs))]
		}
		pairs = append(pairs, g.newPair(anchor, assets[i], seen))
	}

	attempts := 0
	for len(pairs) < g.cfg.NumPairs && attempts < g.cfg.NumPairs*20 {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		attempts++

		if len(pairs) > 0 && g.rand.Float64() < g.cfg.ParallelChance {
			existing := pairs[g.rand.Intn(len(pairs))]
			pairs = append(pairs, g.newPair(existing.B, existing.A, seen))
			continue
		}

		a := assets[g.rand.Intn(len(assets))]
		if g.rand.Float64() < g.cfg.HubChance {
			a = hubs[g.rand.Intn(len(hubs))]
		}
		b := assets[g.rand.Intn(len(assets))]
		if a == b {
			continue
		}
		if _, ok := seen[key(a, b)]; ok {
			continue
		}
		pairs = append(pairs, g.newPair(a, b, seen))
	}

	for island := 0; island < g.cfg.Islands; island++ {
		size := 2 + g.rand.Intn(3)
		members := make([]domain.AssetID, size)
		for j := range members {
			members[j] = domain.AssetID(fmt.Sprintf("ISL%d-%d", island+1, j))
		}
		for j := 1; j < size; j++ {
			pairs = append(pairs, g.newPair(members[g.rand.Intn(j)], members[j], seen))
		}
	}

	return Dataset{Pairs: pairs}, nil
}

func (g *Generator) newPair(a, b domain.AssetID, seen map[[2]domain.AssetID]struct{}) domain.Pair {
	g.nextID++
	seen[key(a, b)] = struct{}{}
	return domain.Pair{ID: domain.PairID(fmt.Sprintf("%d", g.nextID)), A: a, B: b}
}

func key(a, b domain.AssetID) [2]domain.AssetID {
	if b < a {
		a, b = b, a
	}
	return [2]domain.AssetID{a, b}
}
