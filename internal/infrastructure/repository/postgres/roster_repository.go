package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasy"
	qb "github.com/riskibarqy/fantasy-cricket/internal/platform/querybuilder"
)

type RosterRepository struct {
	db *sqlx.DB
}

var rosterSelectColumns = []string{
	"id",
	"user_id",
	"match_id",
	"name",
	"player_ids",
	"captain_id",
	"vice_captain_id",
	"created_at",
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) Create(ctx context.Context, roster fantasy.Roster) error {
	query, args, err := qb.InsertModel("rosters", rosterTableModel{
		ID:            roster.ID,
		UserID:        roster.UserID,
		MatchID:       roster.MatchID,
		Name:          roster.Name,
		PlayerIDs:     pq.StringArray(roster.PlayerIDs),
		CaptainID:     roster.CaptainID,
		ViceCaptainID: roster.ViceCaptainID,
		CreatedAt:     roster.CreatedAt.UTC(),
	}, nil)
	if err != nil {
		return fmt.Errorf("build insert roster query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("roster id=%s already exists: %w", roster.ID, err)
		}
		return fmt.Errorf("insert roster id=%s: %w", roster.ID, err)
	}
	return nil
}

func (r *RosterRepository) GetByID(ctx context.Context, rosterID string) (fantasy.Roster, bool, error) {
	query, args, err := qb.Select(rosterSelectColumns...).From("rosters").
		Where(qb.Eq("id", rosterID)).
		ToSQL()
	if err != nil {
		return fantasy.Roster{}, false, fmt.Errorf("build get roster query: %w", err)
	}

	var row rosterTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return fantasy.Roster{}, false, nil
		}
		return fantasy.Roster{}, false, fmt.Errorf("get roster: %w", err)
	}
	return rosterFromRow(row), true, nil
}

func (r *RosterRepository) ListByMatch(ctx context.Context, matchID string) ([]fantasy.Roster, error) {
	return r.list(ctx, "match_id", matchID)
}

func (r *RosterRepository) ListByUser(ctx context.Context, userID string) ([]fantasy.Roster, error) {
	return r.list(ctx, "user_id", userID)
}

func (r *RosterRepository) list(ctx context.Context, column, value string) ([]fantasy.Roster, error) {
	query, args, err := qb.Select(rosterSelectColumns...).From("rosters").
		Where(qb.Eq(column, value)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list rosters by %s query: %w", column, err)
	}

	var rows []rosterTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list rosters by %s: %w", column, err)
	}

	out := make([]fantasy.Roster, 0, len(rows))
	for _, row := range rows {
		out = append(out, rosterFromRow(row))
	}
	return out, nil
}

func rosterFromRow(row rosterTableModel) fantasy.Roster {
	return fantasy.Roster{
		ID:            row.ID,
		UserID:        row.UserID,
		MatchID:       row.MatchID,
		Name:          row.Name,
		PlayerIDs:     append([]string(nil), row.PlayerIDs...),
		CaptainID:     row.CaptainID,
		ViceCaptainID: row.ViceCaptainID,
		CreatedAt:     row.CreatedAt.UTC(),
	}
}
