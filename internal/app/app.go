// Package app wires configuration, storage and services into a runnable
// application.
package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/soccer-fixtures/external/livesoccertv"
	"github.com/riskibarqy/soccer-fixtures/internal/config"
	"github.com/riskibarqy/soccer-fixtures/internal/infrastructure/repository/sqlite"
	"github.com/riskibarqy/soccer-fixtures/internal/platform/logging"
	"github.com/riskibarqy/soccer-fixtures/internal/platform/resilience"
	"github.com/riskibarqy/soccer-fixtures/internal/usecase"
)

// App owns the shared database handle and the services the CLI commands use.
type App struct {
	Config      config.Config
	Logger      *logging.Logger
	Scraper     *usecase.ScrapeService
	Queries     *usecase.QueryService
	Maintenance *usecase.MaintenanceService

	db *sqlx.DB
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open fixture database at %s: %w", cfg.DBPath, err)
	}

	repo := sqlite.NewFixtureRepository(db, logger)

	source := livesoccertv.NewClient(livesoccertv.ClientConfig{
		BaseURL:     cfg.ScrapeBaseURL,
		UserAgent:   cfg.ScrapeUserAgent,
		Timeout:     cfg.ScrapeTimeout,
		MaxRetries:  cfg.ScrapeMaxRetries,
		PacingDelay: cfg.ScrapePacingDelay,
		CacheTTL:    cfg.ScrapeCacheTTL,
		Logger:      logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ScrapeCircuitEnabled,
			FailureThreshold: cfg.ScrapeCircuitFailureCount,
			OpenTimeout:      cfg.ScrapeCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ScrapeCircuitHalfOpenMaxReq,
		},
	})

	leagues := make([]usecase.League, 0, len(cfg.Leagues))
	for _, league := range cfg.Leagues {
		leagues = append(leagues, usecase.League{Slug: league.Slug, Name: league.Name})
	}

	return &App{
		Config:      cfg,
		Logger:      logger,
		Scraper:     usecase.NewScrapeService(source, repo, leagues, cfg.ParseWorkers, "livesoccertv", logger),
		Queries:     usecase.NewQueryService(repo, logger),
		Maintenance: usecase.NewMaintenanceService(repo, logger),
		db:          db,
	}, nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
