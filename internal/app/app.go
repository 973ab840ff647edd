package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/crichq/standings/external/cricketfeed"
	"github.com/crichq/standings/external/refreshqueue"
	"github.com/crichq/standings/internal/config"
	"github.com/crichq/standings/internal/domain/series"
	"github.com/crichq/standings/internal/domain/standings"
	cacherepo "github.com/crichq/standings/internal/infrastructure/repository/cache"
	"github.com/crichq/standings/internal/infrastructure/repository/memory"
	"github.com/crichq/standings/internal/infrastructure/repository/postgres"
	"github.com/crichq/standings/internal/interfaces/httpapi"
	basecache "github.com/crichq/standings/internal/platform/cache"
	"github.com/crichq/standings/internal/platform/logging"
	"github.com/crichq/standings/internal/platform/resilience"
	"github.com/crichq/standings/internal/usecase"
)

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}

	seriesRepo, standingsRepo, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		seriesRepo = cacherepo.NewSeriesRepository(seriesRepo, store)
		standingsRepo = cacherepo.NewStandingsRepository(standingsRepo, store)
	}

	feedClient := cricketfeed.NewClient(cricketfeed.ClientConfig{
		BaseURL:    cfg.FeedBaseURL,
		APIKey:     cfg.FeedAPIKey,
		Timeout:    cfg.FeedTimeout,
		MaxRetries: cfg.FeedMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FeedCircuitEnabled,
			FailureThreshold: cfg.FeedCircuitFailureCount,
			OpenTimeout:      cfg.FeedCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FeedCircuitHalfOpenMaxReq,
		},
	})

	var signaler usecase.RefreshSignaler
	if cfg.QueueEnabled {
		signaler = refreshqueue.NewPublisher(refreshqueue.PublisherConfig{
			BaseURL:          cfg.QueueBaseURL,
			Token:            cfg.QueueToken,
			TargetBaseURL:    cfg.QueueTargetBaseURL,
			Retries:          cfg.QueueRetries,
			Delay:            cfg.QueueDelay,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.QueueCircuitEnabled,
				FailureThreshold: cfg.QueueCircuitFailureCount,
				OpenTimeout:      cfg.QueueCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.QueueCircuitHalfOpenMaxRq,
			},
		}, logger)
	}

	seriesSvc := usecase.NewSeriesService(seriesRepo, feedClient, logger)
	standingsSvc := usecase.NewStandingsService(seriesSvc, feedClient, standingsRepo, signaler, logger)
	refreshSvc := usecase.NewRefreshService(standingsSvc, logger)

	handler := httpapi.NewHandler(seriesSvc, standingsSvc, refreshSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

func buildRepositories(cfg config.Config, logger *logging.Logger) (series.Repository, standings.Repository, error) {
	if cfg.DBURL == "" {
		logger.Info("using in-memory repositories", "reason", "DB_URL empty")
		return memory.NewSeriesRepository(), memory.NewStandingsRepository(), nil
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	logger.Info("using postgres repositories")

	return postgres.NewSeriesRepository(db), postgres.NewStandingsRepository(db), nil
}

func openDatabase(cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres", cfg.DBURL,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName("standings"),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
