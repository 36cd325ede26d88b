package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vanshika/dexroute/backend/internal/config"
	"github.com/vanshika/dexroute/backend/internal/graph"
	"github.com/vanshika/dexroute/backend/internal/logging"
	"github.com/vanshika/dexroute/backend/internal/repository"
	"github.com/vanshika/dexroute/backend/internal/service"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	var (
		pairsPath = flag.String("pairs", cfg.Routing.PairsFile, "Path to a YAML or JSON pair file")
		workers   = flag.Int("workers", 4, "Number of concurrent workers for ingestion")
		keepGoing = flag.Bool("keep-going", false, "Report rejected pairs instead of failing the run")
	)
	flag.Parse()

	logger := logging.New(cfg.Logging).With("component", "ingest")

	pairs, err := repository.NewFileSource(*pairsPath).ListPairs(context.Background())
	if err != nil {
		logger.Error("failed to load pairs", "error", err, "path", *pairsPath)
		os.Exit(1)
	}
	if len(pairs) == 0 {
		logger.Error("pair file empty", "path", *pairsPath)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	graphClient, err := buildGraphClient(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := graphClient.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	svc := service.NewRouteService(repository.New(graphClient), nil, logger)
	ingestor := service.NewBulkIngestor(svc, *workers)

	inputs := make([]service.PairInput, 0, len(pairs))
	for _, p := range pairs {
		inputs = append(inputs, service.PairInputFromDomain(p))
	}

	start := time.Now()
	logger.Info("ingesting pairs", "count", len(inputs), "workers", *workers)
	if err := ingestor.IngestPairs(ctx, inputs); err != nil {
		var taskErr *service.TaskError
		if !*keepGoing || !errors.As(err, &taskErr) {
			logger.Error("pair ingestion failed", "error", err)
			os.Exit(1)
		}
		for _, e := range taskErr.Errors {
			logger.Warn("pair rejected", "error", e)
		}
		logger.Info("ingestion complete", "duration", time.Since(start).String(), "pairs", len(inputs)-len(taskErr.Errors), "rejected", len(taskErr.Errors))
		return
	}

	logger.Info("ingestion complete", "duration", time.Since(start).String(), "pairs", len(inputs))
}

func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, error) {
	if cfg.Graph.URI == "" {
		return nil, fmt.Errorf("GRAPH_URI is required for ingestion")
	}
	opts := graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	}
	client, err := graph.NewNeo4jClient(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, err
	}
	logger.Info("connected to graph", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)
	return client, nil
}
