// Package di provides dependency injection wiring and initialization.
package di

import (
	"context"
	"fmt"

	"github.com/aristath/sentinel-stress/internal/config"
	"github.com/rs/zerolog"
)

// Wire initializes all dependencies and returns a fully configured container
// Order of operations:
// 1. Initialize databases
// 2. Initialize services
// 3. Register jobs
func Wire(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container, err := InitializeDatabases(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := InitializeServices(ctx, container, cfg, log); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := RegisterJobs(container, cfg, log); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to register jobs: %w", err)
	}

	log.Info().Msg("Dependency injection wiring completed successfully")

	return container, nil
}
