package pathfinding

import "github.com/vanshika/dexroute/backend/internal/domain"

// Neighbors returns the assets adjacent to asset in pairs, in edge-list order.
// Parallel pairs produce duplicate entries. Self-loops never contribute.
func Neighbors(asset domain.AssetID, pairs []domain.Pair) []domain.AssetID {
	adjacent := []domain.AssetID{}
	for _, pair := range pairs {
		if pair.A == asset && pair.B != asset {
			adjacent = append(adjacent, pair.B)
		} else if pair.B == asset && pair.A != asset {
			adjacent = append(adjacent, pair.A)
		}
	}
	return adjacent
}

// IsSamePair reports whether pair connects x and y in either orientation.
func IsSamePair(pair domain.Pair, x, y domain.AssetID) bool {
	return (pair.A == x && pair.B == y) || (pair.A == y && pair.B == x)
}
