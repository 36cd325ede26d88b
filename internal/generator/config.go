package generator

// Config drives the synthetic liquidity graph generator.
type Config struct {
	// NumAssets is the number of tokens in the main market, hubs included.
	NumAssets int
	// NumPairs is the number of pools in the main market.
	NumPairs int
	// Hubs are the quote assets most pools trade against.
	Hubs []string
	// HubChance is the probability that a new pool has a hub on one side.
	HubChance float64
	// ParallelChance is the probability of adding a second pool for an
	// asset combination that already has one.
	ParallelChance float64
	// Islands is the number of small markets unreachable from the main one.
	Islands int
	Seed    int64
}

// DefaultConfig returns settings that produce a DEX-like graph: a few hubs,
// a long tail of tokens and a couple of isolated markets.
func DefaultConfig() Config {
	return Config{
		NumAssets:      200,
		NumPairs:       600,
		Hubs:           []string{"DFI", "DUSD", "USDT", "BTC", "ETH"},
		HubChance:      0.7,
		ParallelChance: 0.05,
		Islands:        2,
		Seed:           42,
	}
}
