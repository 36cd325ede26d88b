package service

import (
	"regexp"
	"slices"
	"strings"

	"github.com/vanshika/dexroute/backend/internal/domain"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	assetRegex      = regexp.MustCompile(`^[A-Z0-9][A-Z0-9._/-]{0,31}$`)
)

// sanitizeString collapses whitespace and trims the result.
func sanitizeString(value string) string {
	value = whitespaceRegex.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// normalizeAsset upper-cases a symbol and checks it looks like a token ticker.
func normalizeAsset(symbol string) (domain.AssetID, bool) {
	asset := domain.NormalizeAsset(sanitizeString(symbol))
	if !assetRegex.MatchString(string(asset)) {
		return "", false
	}
	return asset, true
}

// defaultPairID names a pool after its assets when the caller gives no id.
func defaultPairID(a, b domain.AssetID) domain.PairID {
	return domain.PairID(string(a) + "-" + string(b))
}

// uniqueAssets drops repeated entries while keeping first-seen order.
func uniqueAssets(assets []domain.AssetID) []domain.AssetID {
	out := make([]domain.AssetID, 0, len(assets))
	for _, asset := range assets {
		if !slices.Contains(out, asset) {
			out = append(out, asset)
		}
	}
	return out
}
