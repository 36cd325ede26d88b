package service

import "github.com/vanshika/dexroute/backend/internal/domain"

// PairInput is the inbound payload for a liquidity pair.
type PairInput struct {
	ID string `json:"pairId" yaml:"pairId"`
	A  string `json:"a" yaml:"a"`
	B  string `json:"b" yaml:"b"`
}

// PairInputFromDomain converts a stored pair back into an input payload.
func PairInputFromDomain(p domain.Pair) PairInput {
	return PairInput{ID: string(p.ID), A: string(p.A), B: string(p.B)}
}

// RouteRequest asks for a route between two asset symbols.
type RouteRequest struct {
	From string
	To   string
}

// RouteResult pairs a batch request with its outcome. Err is set when that
// single request was rejected; the other requests are unaffected.
type RouteResult struct {
	Request RouteRequest
	Route   domain.Route
	Err     error
}

// ListPairsParams selects one page of the pair list. Asset, when set,
// restricts the list to pools touching that asset.
type ListPairsParams struct {
	Page     int
	PageSize int
	Asset    string
}

// PaginationMeta describes where a page sits in the full result.
type PaginationMeta struct {
	Page       int
	PageSize   int
	TotalItems int64
	TotalPages int
}

// PairsPage is one page of pairs.
type PairsPage struct {
	Items      []domain.Pair
	Pagination PaginationMeta
}
