package domain

// RouteHop is one swap through a single liquidity pool.
type RouteHop struct {
	PairID PairID  `json:"pairId"`
	From   AssetID `json:"from"`
	To     AssetID `json:"to"`
}

// Route encapsulates the hop sequence connecting a source and target asset.
type Route struct {
	From    AssetID    `json:"from"`
	To      AssetID    `json:"to"`
	Found   bool       `json:"found"`
	Path    []AssetID  `json:"path"`
	Hops    []RouteHop `json:"hops"`
	Visited []AssetID  `json:"visited"`
	// Unknown lists the requested assets that appear in no pair.
	Unknown []AssetID `json:"unknown,omitempty"`
}

// HopCount returns the number of pools traversed.
func (r Route) HopCount() int {
	if len(r.Path) == 0 {
		return 0
	}
	return len(r.Path) - 1
}
