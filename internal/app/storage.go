package app

import (
	"context"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/riskibarqy/fantasy-cricket/internal/config"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasy"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/player"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
)

const dbPingTimeout = 5 * time.Second

type repositories struct {
	matches match.Repository
	players player.Repository
	rosters fantasy.Repository
	scores  scoring.Repository
	close   func() error
}

func openRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	switch cfg.StorageBackend {
	case config.StorageMemory:
		logger.Info("using in-memory storage with demo seed")
		return repositories{
			matches: memory.NewMatchRepository(memory.SeedMatches(time.Now())),
			players: memory.NewPlayerRepository(memory.SeedPlayers()),
			rosters: memory.NewRosterRepository(),
			scores:  memory.NewScoringRepository(),
			close:   func() error { return nil },
		}, nil
	case config.StoragePostgres:
		return openPostgres(ctx, cfg, logger)
	default:
		return repositories{}, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}

func openPostgres(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	dsn := normalizeDBURL(cfg.DBURL, dbURLOptions{
		DisablePreparedBinary: cfg.DBDisablePreparedBinary,
		ApplicationName:       cfg.ServiceName,
	})
	opts := []otelsql.Option{
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	}
	if name := dbNameFromURL(dsn); name != "" {
		opts = append(opts, otelsql.WithDBName(name))
	}

	db, err := otelsqlx.Open("postgres", dsn, opts...)
	if err != nil {
		return repositories{}, fmt.Errorf("open postgres: %w", err)
	}
	otelsql.ReportDBStatsMetrics(db.DB, opts...)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return repositories{}, fmt.Errorf("ping postgres: %w", err)
	}

	if err := postgres.BootstrapSeed(ctx, db, time.Now()); err != nil {
		_ = db.Close()
		return repositories{}, fmt.Errorf("bootstrap seed: %w", err)
	}

	logger.Info("using postgres storage", "db_name", dbNameFromURL(dsn))
	return repositories{
		matches: postgres.NewMatchRepository(db),
		players: postgres.NewPlayerRepository(db),
		rosters: postgres.NewRosterRepository(db),
		scores:  postgres.NewScoringRepository(db),
		close:   db.Close,
	}, nil
}
