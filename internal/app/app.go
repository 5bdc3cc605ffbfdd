package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/fantasy-cricket/external/cricketdata"
	"github.com/riskibarqy/fantasy-cricket/internal/config"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasy"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/scoring"
	repocache "github.com/riskibarqy/fantasy-cricket/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/simulation"
	"github.com/riskibarqy/fantasy-cricket/internal/interfaces/httpapi"
	"github.com/riskibarqy/fantasy-cricket/internal/observability"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/cache"
	idgen "github.com/riskibarqy/fantasy-cricket/internal/platform/id"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/riskibarqy/fantasy-cricket/internal/usecase"
)

// App is the assembled service: the HTTP server plus the background match
// start scheduler and the storage it owns.
type App struct {
	Server *http.Server

	cfg          config.Config
	logger       *logging.Logger
	matchService *usecase.MatchService
	closeStorage func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	verifier, err := newTokenVerifier(cfg, logger)
	if err != nil {
		_ = repos.close()
		return nil, err
	}

	var store *cache.Store
	playerRepo := repos.players
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL)
		playerRepo = repocache.NewPlayerRepository(repos.players, store)
	}

	// Interfaces stay untyped nil when the feed is off so the services see no source.
	var feed usecase.MatchFeed
	var source scoring.PerformanceSource
	if cfg.CricketDataEnabled {
		client := cricketdata.NewClient(cricketdata.ClientConfig{
			BaseURL:        cfg.CricketDataBaseURL,
			APIKey:         cfg.CricketDataAPIKey,
			Timeout:        cfg.CricketDataTimeout,
			MaxRetries:     cfg.CricketDataMaxRetries,
			RetryBaseDelay: cfg.CricketDataRetryBaseDelay,
			RateLimit:      cfg.CricketDataRateLimit,
			Logger:         logger,
			CircuitBreaker: circuitBreakerConfig(cfg.CricketDataCircuit),
		})
		feed = client
		source = client
	}

	generator := simulation.NewGenerator(cfg.SimulationSeed)
	logger.Info("performance simulator ready", "seed", generator.Seed(), "cricketdata_enabled", cfg.CricketDataEnabled)

	resolver := usecase.NewPerformanceResolver(source, generator, logger)
	matchService := usecase.NewMatchService(repos.matches, playerRepo, feed, logger)
	rosterService := usecase.NewRosterService(
		repos.matches,
		playerRepo,
		repos.rosters,
		fantasy.DefaultRules(),
		idgen.NewUUIDGenerator(),
		logger,
	)
	scoringService := usecase.NewScoringService(
		repos.matches,
		playerRepo,
		repos.rosters,
		repos.scores,
		scoring.NewEngine(scoring.DefaultRules()),
		resolver,
		logger,
	)
	scoringService.SetWorkerCount(cfg.FinalizeWorkers)
	if store != nil {
		scoringService.SetCache(store)
	}

	routerCfg := httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	}
	if cfg.MetricsEnabled {
		metrics := observability.NewMetrics()
		matchService.SetMetrics(metrics)
		rosterService.SetMetrics(metrics)
		scoringService.SetMetrics(metrics)
		resolver.SetMetrics(metrics)
		routerCfg.MetricsHandler = metrics.Handler()
		routerCfg.Observer = metrics
	}

	handler := httpapi.NewHandler(matchService, rosterService, scoringService, logger)
	router := httpapi.NewRouter(handler, verifier, logger, routerCfg)

	return &App{
		Server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		cfg:          cfg,
		logger:       logger,
		matchService: matchService,
		closeStorage: repos.close,
	}, nil
}

// RunScheduler blocks until ctx is done.
func (a *App) RunScheduler(ctx context.Context) {
	runMatchStarter(ctx, a.matchService, a.cfg.MatchStartInterval, a.logger)
}

// Shutdown stops the HTTP server and releases storage.
func (a *App) Shutdown(ctx context.Context) error {
	serverErr := a.Server.Shutdown(ctx)
	var storageErr error
	if a.closeStorage != nil {
		storageErr = a.closeStorage()
	}
	return errors.Join(serverErr, storageErr)
}
