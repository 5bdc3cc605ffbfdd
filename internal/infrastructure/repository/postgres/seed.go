package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo match and its pool into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, now time.Time) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM matches`); err != nil {
		return fmt.Errorf("count matches for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, m := range memory.SeedMatches(now) {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO matches (id, external_ref, team1, team2, venue, start_at, status)
VALUES (:id, :external_ref, :team1, :team2, :venue, :start_at, :status)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":           m.ID,
			"external_ref": m.ExternalRef,
			"team1":        m.Team1,
			"team2":        m.Team2,
			"venue":        m.Venue,
			"start_at":     m.StartAt.UTC(),
			"status":       string(m.Status),
		})
		if err != nil {
			return fmt.Errorf("bind seed match %s query: %w", m.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed match %s: %w", m.ID, err)
		}
	}

	players := memory.SeedPlayers()
	if len(players) > 0 {
		sqlQuery, args, err := buildUpsertPlayersQuery(players)
		if err != nil {
			return fmt.Errorf("build seed players query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed players: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
