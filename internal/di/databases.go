package di

import (
	"fmt"

	"github.com/aristath/sentinel-stress/internal/config"
	"github.com/aristath/sentinel-stress/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens and migrates the history database when run history is enabled
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	if !cfg.History.Enabled {
		log.Info().Msg("Run history disabled, skipping history database")
		return container, nil
	}

	historyDB, err := database.New(database.Config{
		Path:    cfg.HistoryDBPath(),
		Profile: database.ProfileStandard,
		Name:    "history",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize history database: %w", err)
	}

	if err := historyDB.Migrate(); err != nil {
		historyDB.Close()
		return nil, fmt.Errorf("failed to apply history schema: %w", err)
	}

	container.HistoryDB = historyDB
	log.Info().Str("path", historyDB.Path()).Msg("History database initialized")
	return container, nil
}
