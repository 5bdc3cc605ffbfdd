package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	qb "github.com/riskibarqy/fantasy-cricket/internal/platform/querybuilder"
)

type MatchRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

var matchSelectColumns = []string{
	"id",
	"external_ref",
	"team1",
	"team2",
	"venue",
	"start_at",
	"status",
	"completed_at",
	"created_at",
	"updated_at",
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db, now: time.Now}
}

func (r *MatchRepository) List(ctx context.Context, limit int) ([]match.Match, error) {
	query, args, err := qb.Select(matchSelectColumns...).From("matches").
		OrderBy("start_at DESC", "id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := qb.Select(matchSelectColumns...).From("matches").
		Where(qb.Eq("id", matchID)).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match: %w", err)
	}

	return matchFromRow(row), true, nil
}

func (r *MatchRepository) Upsert(ctx context.Context, item match.Match) error {
	query, args, err := buildUpsertMatchQuery(item)
	if err != nil {
		return fmt.Errorf("build upsert match query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match id=%s: %w", item.ID, err)
	}
	return nil
}

// UpdateStatus is a compare-and-swap on the stored status.
func (r *MatchRepository) UpdateStatus(ctx context.Context, matchID string, from, to match.Status) (bool, error) {
	query, args, err := buildUpdateStatusQuery(matchID, from, to, r.now().UTC())
	if err != nil {
		return false, fmt.Errorf("build update match status query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update match status id=%s: %w", matchID, err)
	}
	changed, err := rowsChanged(result)
	if err != nil {
		return false, fmt.Errorf("update match status id=%s rows affected: %w", matchID, err)
	}
	return changed, nil
}

func buildUpsertMatchQuery(item match.Match) (string, []any, error) {
	return qb.InsertModel("matches", matchInsertModel{
		ID:          item.ID,
		ExternalRef: item.ExternalRef,
		Team1:       item.Team1,
		Team2:       item.Team2,
		Venue:       item.Venue,
		StartAt:     item.StartAt.UTC(),
		Status:      string(item.Status),
		CompletedAt: item.CompletedAt,
	}, qb.OnConflict("id").
		UpdateExcluded("external_ref", "team1", "team2", "venue", "start_at").
		UpdateExpr("status", upsertStatusExpr).
		UpdateExpr("updated_at", "NOW()"))
}

// upsertStatusExpr mirrors match.Status.MergeUpsert inside the row lock of
// the conflicting insert, so a concurrent UpdateStatus commit is never
// rewound. completed_at is owned by UpdateStatus and left out of the update.
var upsertStatusExpr = fmt.Sprintf(
	"CASE WHEN matches.status = '%s' AND EXCLUDED.status = '%s' THEN EXCLUDED.status ELSE matches.status END",
	match.StatusUpcoming, match.StatusLive,
)

func buildUpdateStatusQuery(matchID string, from, to match.Status, now time.Time) (string, []any, error) {
	builder := qb.Update("matches").
		Set("status", string(to)).
		SetExpr("updated_at", "NOW()")
	if to == match.StatusCompleted {
		builder.Set("completed_at", now)
	}
	return builder.
		Where(qb.Eq("id", matchID), qb.Eq("status", string(from))).
		ToSQL()
}

func matchFromRow(row matchTableModel) match.Match {
	item := match.Match{
		ID:          row.ID,
		ExternalRef: row.ExternalRef,
		Team1:       row.Team1,
		Team2:       row.Team2,
		Venue:       row.Venue,
		StartAt:     row.StartAt.UTC(),
		Status:      match.Status(row.Status),
	}
	if row.CompletedAt != nil {
		completedAt := row.CompletedAt.UTC()
		item.CompletedAt = &completedAt
	}
	return item
}
