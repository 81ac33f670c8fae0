package di

import (
	"context"
	"fmt"

	"github.com/aristath/sentinel-stress/internal/config"
	"github.com/aristath/sentinel-stress/internal/modules/classification"
	"github.com/aristath/sentinel-stress/internal/modules/history"
	"github.com/aristath/sentinel-stress/internal/modules/sensitivity"
	"github.com/aristath/sentinel-stress/internal/modules/stress"
	stresshandlers "github.com/aristath/sentinel-stress/internal/modules/stress/handlers"
	"github.com/aristath/sentinel-stress/internal/reliability"
	"github.com/aristath/sentinel-stress/internal/server"
	"github.com/rs/zerolog"
)

// NewEngine builds the stress engine from the configured tables and reference data
func NewEngine(cfg *config.Config, log zerolog.Logger) (*stress.Engine, error) {
	tables := sensitivity.DefaultTables()
	if cfg.TablesPath != "" {
		loaded, err := sensitivity.LoadTables(cfg.TablesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load coefficient tables: %w", err)
		}
		tables = loaded
		log.Info().Str("path", cfg.TablesPath).Str("version", tables.Version).Msg("Coefficient tables loaded")
	}

	var reference classification.ReferenceData
	if cfg.ReferencePath != "" {
		loaded, err := classification.LoadReference(cfg.ReferencePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load reference data: %w", err)
		}
		reference = loaded
		log.Info().Str("path", cfg.ReferencePath).Int("symbols", len(loaded)).Msg("Reference data loaded")
	}

	return stress.NewEngine(
		classification.NewClassifier(reference),
		sensitivity.NewCalculator(tables),
		stress.Config{
			VolatilityAmplification: cfg.Engine.VolatilityAmplification,
			Workers:                 cfg.Engine.Workers,
			ParallelThreshold:       cfg.Engine.ParallelThreshold,
		},
		log,
	), nil
}

// InitializeServices creates the engine, repositories, archiver and HTTP handlers
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	engine, err := NewEngine(cfg, log)
	if err != nil {
		return err
	}
	container.Engine = engine

	var historyRepo history.RepositoryInterface
	if container.HistoryDB != nil {
		container.HistoryRepo = history.NewRepository(container.HistoryDB.Conn(), log)
		historyRepo = container.HistoryRepo
	}

	if cfg.Archive.Enabled() {
		archiver, err := reliability.NewS3ReportArchiver(ctx, reliability.ArchiveConfig{
			Bucket:          cfg.Archive.Bucket,
			Endpoint:        cfg.Archive.Endpoint,
			Region:          cfg.Archive.Region,
			AccessKeyID:     cfg.Archive.AccessKeyID,
			SecretAccessKey: cfg.Archive.SecretAccessKey,
			Prefix:          cfg.Archive.Prefix,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to initialize report archiver: %w", err)
		}
		container.Archiver = archiver
		log.Info().Str("bucket", cfg.Archive.Bucket).Msg("Report archiving enabled")
	}

	container.Metrics = server.NewMetricsRegistry()
	container.StressHandler = stresshandlers.NewHandler(
		engine,
		historyRepo,
		container.Archiver,
		container.Metrics,
		log,
	)

	return nil
}
