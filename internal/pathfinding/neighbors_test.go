package pathfinding

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/dexroute/backend/internal/domain"
)

func TestNeighbors(t *testing.T) {
	pairs := []domain.Pair{
		pair("1", "DFI", "BTC"),
		pair("2", "ETH", "DFI"),
		pair("3", "DFI", "DFI"),
		pair("4", "BTC", "ETH"),
		pair("5", "BTC", "DFI"),
	}

	tests := []struct {
		name  string
		asset domain.AssetID
		want  []domain.AssetID
	}{
		{name: "both orientations in pair order", asset: "DFI", want: []domain.AssetID{"BTC", "ETH", "BTC"}},
		{name: "no self loop", asset: "BTC", want: []domain.AssetID{"DFI", "ETH", "DFI"}},
		{name: "unknown asset", asset: "LTC", want: []domain.AssetID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Neighbors(tt.asset, pairs)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, tt.asset)
		})
	}
}

func TestNeighbors_EmptyPairList(t *testing.T) {
	got := Neighbors("DFI", nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGraph_MatchesNeighbors(t *testing.T) {
	pairs := []domain.Pair{
		pair("1", "DFI", "BTC"),
		pair("2", "ETH", "DFI"),
		pair("3", "USDT", "USDT"),
		pair("4", "BTC", "ETH"),
		pair("5", "BTC", "DFI"),
	}
	g := NewGraph(pairs)

	for _, asset := range []domain.AssetID{"DFI", "BTC", "ETH", "USDT", "LTC"} {
		assert.Equalf(t, Neighbors(asset, pairs), g.Neighbors(asset), "asset %s", asset)
	}
	assert.Equal(t, []domain.AssetID{"DFI", "BTC", "ETH", "USDT"}, g.Assets())
	assert.Equal(t, 4, g.Len())
	assert.True(t, g.HasAsset("USDT"))
	assert.False(t, g.HasAsset("LTC"))
	assert.Equal(t, pairs, g.Pairs())
}

func TestGraph_NeighborsReturnsCopy(t *testing.T) {
	g := NewGraph([]domain.Pair{pair("1", "DFI", "BTC")})

	got := g.Neighbors("DFI")
	got[0] = "LTC"

	assert.Equal(t, []domain.AssetID{"BTC"}, g.Neighbors("DFI"))
}

func TestIsSamePair(t *testing.T) {
	p := pair("1", "X", "Y")

	assert.True(t, IsSamePair(p, "X", "Y"))
	assert.True(t, IsSamePair(p, "Y", "X"))
	assert.False(t, IsSamePair(p, "X", "Z"))
	assert.False(t, IsSamePair(p, "X", "X"))
}

func TestResolveHops(t *testing.T) {
	pairs := []domain.Pair{
		pair("DFI-ETH", "DFI", "ETH"),
		pair("USDT-ETH", "USDT", "ETH"),
		pair("ETH-USDT-2", "ETH", "USDT"),
	}

	hops, err := ResolveHops([]domain.AssetID{"DFI", "ETH", "USDT"}, pairs)

	require.NoError(t, err)
	require.Len(t, hops, 2)
	assert.Equal(t, Hop{Pair: pairs[0], From: "DFI", To: "ETH"}, hops[0])
	assert.Equal(t, Hop{Pair: pairs[1], From: "ETH", To: "USDT"}, hops[1])
}

func TestResolveHops_ShortPaths(t *testing.T) {
	for _, path := range [][]domain.AssetID{nil, {}, {"DFI"}} {
		hops, err := ResolveHops(path, nil)
		require.NoError(t, err)
		assert.Empty(t, hops)
	}
}

func TestResolveHops_MissingPair(t *testing.T) {
	_, err := ResolveHops([]domain.AssetID{"DFI", "BTC"}, []domain.Pair{pair("1", "DFI", "ETH")})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHopNotFound))
	assert.Contains(t, err.Error(), "DFI -> BTC")
}
