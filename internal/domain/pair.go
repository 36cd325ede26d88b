package domain

import "strings"

// AssetID identifies a token participating in the liquidity graph.
type AssetID string

// PairID identifies a liquidity pool.
type PairID string

// NormalizeAsset trims and upper-cases an asset symbol.
func NormalizeAsset(symbol string) AssetID {
	return AssetID(strings.ToUpper(strings.TrimSpace(symbol)))
}

func (a AssetID) String() string { return string(a) }

func (p PairID) String() string { return string(p) }

// Pair is an undirected liquidity pool connecting assets A and B.
type Pair struct {
	ID PairID  `json:"pairId" yaml:"pairId"`
	A  AssetID `json:"a" yaml:"a"`
	B  AssetID `json:"b" yaml:"b"`
}

// IsSelfLoop reports whether both sides of the pair are the same asset.
func (p Pair) IsSelfLoop() bool {
	return p.A == p.B
}

// PairListResult captures paginated pair list results.
type PairListResult struct {
	Items []Pair
	Total int64
}
