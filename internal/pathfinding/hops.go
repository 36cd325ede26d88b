package pathfinding

import (
	"errors"
	"fmt"

	"github.com/vanshika/dexroute/backend/internal/domain"
)

// ErrHopNotFound indicates two consecutive path assets share no pair.
var ErrHopNotFound = errors.New("no pair connects hop")

// Hop is a single swap step of a resolved route.
type Hop struct {
	Pair domain.Pair
	From domain.AssetID
	To   domain.AssetID
}

// ResolveHops maps each consecutive pair of assets in path onto the first
// matching pair in pairs, giving the pools a composite swap must go through.
func ResolveHops(path []domain.AssetID, pairs []domain.Pair) ([]Hop, error) {
	if len(path) < 2 {
		return []Hop{}, nil
	}
	hops := make([]Hop, 0, len(path)-1)
	for i := 0; i+1 < len(path); i++ {
		from, to := path[i], path[i+1]
		pair, ok := firstPair(pairs, from, to)
		if !ok {
			return nil, fmt.Errorf("%w: %s -> %s", ErrHopNotFound, from, to)
		}
		hops = append(hops, Hop{Pair: pair, From: from, To: to})
	}
	return hops, nil
}

func firstPair(pairs []domain.Pair, x, y domain.AssetID) (domain.Pair, bool) {
	for _, pair := range pairs {
		if IsSamePair(pair, x, y) {
			return pair, true
		}
	}
	return domain.Pair{}, false
}
