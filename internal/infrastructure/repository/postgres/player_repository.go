package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/player"
	qb "github.com/riskibarqy/fantasy-cricket/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

var playerSelectColumns = []string{
	"match_id",
	"id",
	"name",
	"role",
	"team",
	"cost",
	"base_points",
	"external_ref",
	"created_at",
	"updated_at",
}

var playerInsertColumns = []string{
	"match_id",
	"id",
	"name",
	"role",
	"team",
	"cost",
	"base_points",
	"external_ref",
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) ListByMatch(ctx context.Context, matchID string) ([]player.Player, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(qb.Eq("match_id", matchID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by match query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players by match: %w", err)
	}

	return playersFromRows(rows), nil
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, matchID string, playerIDs []string) ([]player.Player, error) {
	if len(playerIDs) == 0 {
		return []player.Player{}, nil
	}

	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(
			qb.Eq("match_id", matchID),
			qb.Any("id", pq.Array(playerIDs)),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by ids query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players by ids: %w", err)
	}

	return playersFromRows(rows), nil
}

func (r *PlayerRepository) UpsertMany(ctx context.Context, players []player.Player) error {
	if len(players) == 0 {
		return nil
	}

	query, args, err := buildUpsertPlayersQuery(players)
	if err != nil {
		return fmt.Errorf("build upsert players query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert players: %w", err)
	}
	return nil
}

// buildUpsertPlayersQuery keeps the last occurrence of a repeated key; one
// INSERT .. ON CONFLICT cannot touch the same row twice.
func buildUpsertPlayersQuery(players []player.Player) (string, []any, error) {
	last := make(map[string]int, len(players))
	for i, p := range players {
		last[p.MatchID+"/"+p.ID] = i
	}

	builder := qb.InsertInto("players").Columns(playerInsertColumns...)
	for i, p := range players {
		if last[p.MatchID+"/"+p.ID] != i {
			continue
		}
		builder.Values(p.MatchID, p.ID, p.Name, string(p.Role), p.Team, p.Cost, p.BasePoints, p.ExternalRef)
	}
	return builder.OnConflict(qb.OnConflict("match_id", "id").
		UpdateExcluded("name", "role", "team", "cost", "base_points", "external_ref").
		UpdateExpr("updated_at", "NOW()")).
		ToSQL()
}

func playersFromRows(rows []playerTableModel) []player.Player {
	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, player.Player{
			ID:          row.ID,
			MatchID:     row.MatchID,
			Name:        row.Name,
			Role:        player.Role(row.Role),
			Team:        row.Team,
			Cost:        row.Cost,
			BasePoints:  row.BasePoints,
			ExternalRef: row.ExternalRef,
		})
	}
	return out
}
