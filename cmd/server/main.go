package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/vanshika/dexroute/backend/internal/config"
	"github.com/vanshika/dexroute/backend/internal/graph"
	"github.com/vanshika/dexroute/backend/internal/logging"
	"github.com/vanshika/dexroute/backend/internal/metrics"
	"github.com/vanshika/dexroute/backend/internal/repository"
	"github.com/vanshika/dexroute/backend/internal/server"
	"github.com/vanshika/dexroute/backend/internal/service"
)

func main() {
	ctx := context.Background()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	pairs, health, closeFn, err := buildPairSource(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to create pair source", "error", err, "source", cfg.Routing.PairsSource)
		os.Exit(1)
	}
	defer closeFn()

	var (
		recorder       *metrics.Recorder
		metricsHandler http.Handler
	)
	if cfg.HTTP.MetricsEnabled {
		recorder = metrics.NewRecorder()
		metricsHandler = recorder.Handler()
	}

	routeService := service.NewRouteService(pairs, recorder, logger)
	routeService.WithSearchTimeout(cfg.Routing.SearchTimeout)
	batchRouter := service.NewBatchRouter(routeService, cfg.Routing.BatchWorkers)
	apiHandlers := server.NewAPIHandlers(logger, routeService, batchRouter)

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           health,
		API:              apiHandlers,
		Metrics:          metricsHandler,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// buildPairSource returns the configured pair provider, a matching health
// probe and a cleanup function.
func buildPairSource(ctx context.Context, logger *slog.Logger, cfg config.Config) (service.PairProvider, server.HealthService, func(), error) {
	switch cfg.Routing.PairsSource {
	case config.PairsSourceFile:
		src := repository.NewFileSource(cfg.Routing.PairsFile)
		logger.Info("serving pairs from file", "path", src.Path())
		return src, server.FileHealthService{Source: src}, func() {}, nil
	default:
		client, err := buildGraphClient(ctx, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(context.Background()); err != nil {
				logger.Warn("closing graph client failed", "error", err)
			}
		}
		logger.Info("serving pairs from graph", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)
		return repository.New(client), server.GraphHealthService{Client: client}, closeFn, nil
	}
}

func buildGraphClient(ctx context.Context, cfg config.Config) (graph.Client, error) {
	if cfg.Graph.URI == "" {
		return nil, graph.ErrMissingURI
	}

	opts := graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	}
	return graph.NewNeo4jClient(ctx, opts)
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
