package app

import (
	"context"
	"fmt"

	"squad-ingest/external/sportmonks"
	"squad-ingest/internal/config"
	"squad-ingest/internal/infrastructure/repository/postgres"
	"squad-ingest/internal/platform/logging"
	"squad-ingest/internal/usecase"
)

// Ingestion bundles a ready-to-run sync service with its resource
// cleanup.
type Ingestion struct {
	Service *usecase.RosterSyncService
	Close   func(ctx context.Context) error
}

// NewIngestion wires the provider client, the Postgres repositories
// and the sync service. Schema and index setup runs here; a failure
// aborts before any provider call is made.
func NewIngestion(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Ingestion, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := postgres.EnsureSchema(cfg.DBURL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	client := sportmonks.NewClient(sportmonks.ClientConfig{
		BaseURL:            cfg.SportMonksBaseURL,
		Token:              cfg.SportMonksToken,
		Timeout:            cfg.SportMonksTimeout,
		MaxRetries:         cfg.SportMonksMaxRetries,
		MinRequestInterval: cfg.SportMonksMinRequestInterval,
		Logger:             logger,
		CircuitBreaker:     cfg.SportMonksCircuit,
	})

	service, err := usecase.NewRosterSyncService(
		client,
		postgres.NewTeamRepository(db),
		postgres.NewPlayerRepository(db),
		postgres.NewSquadRepository(db),
		postgres.NewCountryRepository(db),
		usecase.SyncConfig{
			Provider:     cfg.ProviderTag,
			TeamIDs:      cfg.TeamIDs,
			TeamNames:    cfg.TeamNames,
			MaxSquadSize: cfg.SquadMaxSize,
		},
		logger,
	)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("build sync service: %w", err)
	}

	return &Ingestion{
		Service: service,
		Close: func(context.Context) error {
			return db.Close()
		},
	}, nil
}
