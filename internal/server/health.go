package server

import (
	"context"

	"github.com/vanshika/dexroute/backend/internal/graph"
	"github.com/vanshika/dexroute/backend/internal/service"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// GraphHealthService verifies graph connectivity as part of health checks.
type GraphHealthService struct {
	Client graph.Client
}

// Probe implements the HealthService interface.
func (s GraphHealthService) Probe(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.VerifyConnectivity(ctx)
}

// FileHealthService reports whether a pair file can still be loaded.
type FileHealthService struct {
	Source service.PairProvider
}

// Probe implements the HealthService interface.
func (s FileHealthService) Probe(ctx context.Context) error {
	if s.Source == nil {
		return nil
	}
	_, err := s.Source.ListPairs(ctx)
	return err
}
