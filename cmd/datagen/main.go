package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vanshika/dexroute/backend/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		assets         = flag.Int("assets", cfg.NumAssets, "number of tokens in the main market")
		pairs          = flag.Int("pairs", cfg.NumPairs, "number of pools in the main market")
		hubs           = flag.String("hubs", strings.Join(cfg.Hubs, ","), "comma separated hub assets")
		hubChance      = flag.Float64("hub-chance", cfg.HubChance, "probability that a pool trades against a hub")
		parallelChance = flag.Float64("parallel-chance", cfg.ParallelChance, "probability of a second pool for an existing asset combination")
		islands        = flag.Int("islands", cfg.Islands, "number of markets unreachable from the main one")
		seed           = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		output         = flag.String("output", "data/pairs.yaml", "file to write; .json selects JSON, anything else YAML")
		writeStdout    = flag.Bool("stdout", false, "write the dataset to stdout as JSON instead of a file")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumAssets:      *assets,
		NumPairs:       *pairs,
		Hubs:           splitHubs(*hubs),
		HubChance:      clampProbability(*hubChance),
		ParallelChance: clampProbability(*parallelChance),
		Islands:        *islands,
		Seed:           *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen := generator.New(genCfg)
	dataset, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *output); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d pairs over %d assets into %s\n", len(dataset.Pairs), len(dataset.Assets()), *output)
}

func splitHubs(csv string) []string {
	var hubs []string
	for _, part := range strings.Split(csv, ",") {
		if hub := strings.TrimSpace(part); hub != "" {
			hubs = append(hubs, hub)
		}
	}
	return hubs
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
