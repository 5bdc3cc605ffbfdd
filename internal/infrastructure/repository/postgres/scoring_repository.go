package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/scoring"
	qb "github.com/riskibarqy/fantasy-cricket/internal/platform/querybuilder"
)

type ScoringRepository struct {
	db *sqlx.DB
}

var scoredTeamSelectColumns = []string{
	"roster_id",
	"user_id",
	"match_id",
	"total",
	"breakdown::text AS breakdown",
	"scored_at",
}

func NewScoringRepository(db *sqlx.DB) *ScoringRepository {
	return &ScoringRepository{db: db}
}

func (r *ScoringRepository) GetScoredTeam(ctx context.Context, rosterID string) (scoring.ScoredTeam, bool, error) {
	query, args, err := qb.Select(scoredTeamSelectColumns...).From("scored_teams").
		Where(qb.Eq("roster_id", rosterID)).
		ToSQL()
	if err != nil {
		return scoring.ScoredTeam{}, false, fmt.Errorf("build get scored team query: %w", err)
	}

	var row scoredTeamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return scoring.ScoredTeam{}, false, nil
		}
		return scoring.ScoredTeam{}, false, fmt.Errorf("get scored team: %w", err)
	}

	team, err := scoredTeamFromRow(row)
	if err != nil {
		return scoring.ScoredTeam{}, false, err
	}
	return team, true, nil
}

func (r *ScoringRepository) ListScoredTeamsByMatch(ctx context.Context, matchID string) ([]scoring.ScoredTeam, error) {
	query, args, err := qb.Select(scoredTeamSelectColumns...).From("scored_teams").
		Where(qb.Eq("match_id", matchID)).
		OrderBy("scored_at", "roster_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list scored teams query: %w", err)
	}

	var rows []scoredTeamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list scored teams: %w", err)
	}

	out := make([]scoring.ScoredTeam, 0, len(rows))
	for _, row := range rows {
		team, err := scoredTeamFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, team)
	}
	return out, nil
}

// SaveScoredTeam inserts the team and credits the owner in one transaction.
// The insert is a no-op for an already scored roster, so a retry never
// credits twice.
func (r *ScoringRepository) SaveScoredTeam(ctx context.Context, team scoring.ScoredTeam) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save scored team tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := saveScoredTeamTx(ctx, tx, team); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save scored team tx: %w", err)
	}
	return nil
}

func saveScoredTeamTx(ctx context.Context, tx *sqlx.Tx, team scoring.ScoredTeam) error {
	teamQuery, teamArgs, err := buildInsertScoredTeamQuery(team)
	if err != nil {
		return fmt.Errorf("build insert scored team query: %w", err)
	}
	totalQuery, totalArgs, err := buildCreditUserTotalQuery(team.UserID, team.Total)
	if err != nil {
		return fmt.Errorf("build credit user total query: %w", err)
	}

	result, err := tx.ExecContext(ctx, teamQuery, teamArgs...)
	if err != nil {
		return fmt.Errorf("insert scored team roster=%s: %w", team.RosterID, err)
	}
	inserted, err := rowsChanged(result)
	if err != nil {
		return fmt.Errorf("insert scored team roster=%s rows affected: %w", team.RosterID, err)
	}
	if !inserted {
		return scoring.ErrAlreadyScored
	}

	if _, err := tx.ExecContext(ctx, totalQuery, totalArgs...); err != nil {
		return fmt.Errorf("credit user total user=%s: %w", team.UserID, err)
	}
	return nil
}

// CommitMatch runs every insert, credit and the status compare-and-swap in
// one transaction, so a failure anywhere leaves no team of the match credited.
func (r *ScoringRepository) CommitMatch(ctx context.Context, matchID string, teams []scoring.ScoredTeam, completedAt time.Time) (bool, error) {
	statusQuery, statusArgs, err := buildUpdateStatusQuery(matchID, match.StatusLive, match.StatusCompleted, completedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("build complete match query: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin commit match tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, team := range teams {
		if err := saveScoredTeamTx(ctx, tx, team); err != nil {
			if errors.Is(err, scoring.ErrAlreadyScored) {
				continue
			}
			return false, err
		}
	}

	result, err := tx.ExecContext(ctx, statusQuery, statusArgs...)
	if err != nil {
		return false, fmt.Errorf("complete match id=%s: %w", matchID, err)
	}
	changed, err := rowsChanged(result)
	if err != nil {
		return false, fmt.Errorf("complete match id=%s rows affected: %w", matchID, err)
	}
	if !changed {
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit match tx: %w", err)
	}
	return true, nil
}

func (r *ScoringRepository) ListUserTotals(ctx context.Context) ([]scoring.UserTotal, error) {
	query, args, err := qb.Select("user_id", "points").From("user_totals").
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list user totals query: %w", err)
	}

	var rows []userTotalTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list user totals: %w", err)
	}

	out := make([]scoring.UserTotal, 0, len(rows))
	for _, row := range rows {
		out = append(out, scoring.UserTotal{UserID: row.UserID, Points: row.Points})
	}
	return out, nil
}

func (r *ScoringRepository) GetUserTotal(ctx context.Context, userID string) (scoring.UserTotal, bool, error) {
	query, args, err := qb.Select("user_id", "points").From("user_totals").
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return scoring.UserTotal{}, false, fmt.Errorf("build get user total query: %w", err)
	}

	var row userTotalTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return scoring.UserTotal{}, false, nil
		}
		return scoring.UserTotal{}, false, fmt.Errorf("get user total: %w", err)
	}
	return scoring.UserTotal{UserID: row.UserID, Points: row.Points}, true, nil
}

func buildInsertScoredTeamQuery(team scoring.ScoredTeam) (string, []any, error) {
	breakdown, err := encodeBreakdown(team.Breakdown)
	if err != nil {
		return "", nil, err
	}

	return qb.InsertInto("scored_teams").
		Columns("roster_id", "user_id", "match_id", "total", "breakdown", "scored_at").
		Values(team.RosterID, team.UserID, team.MatchID, team.Total, breakdown, team.ScoredAt.UTC()).
		OnConflict(qb.OnConflict("roster_id").DoNothing()).
		ToSQL()
}

func buildCreditUserTotalQuery(userID string, points int) (string, []any, error) {
	return qb.InsertModel("user_totals", userTotalTableModel{UserID: userID, Points: points},
		qb.OnConflict("user_id").
			UpdateExpr("points", "user_totals.points + EXCLUDED.points").
			UpdateExpr("updated_at", "NOW()"))
}

func encodeBreakdown(items []scoring.PlayerScore) (string, error) {
	rows := make([]breakdownItem, 0, len(items))
	for _, item := range items {
		rows = append(rows, breakdownItem{
			PlayerID:   item.PlayerID,
			Base:       item.Base,
			Multiplier: item.Multiplier,
			Points:     item.Points,
			HasRecord:  item.HasRecord,
		})
	}
	raw, err := sonic.MarshalString(rows)
	if err != nil {
		return "", fmt.Errorf("encode score breakdown: %w", err)
	}
	return raw, nil
}

func decodeBreakdown(raw string) ([]scoring.PlayerScore, error) {
	if raw == "" {
		return []scoring.PlayerScore{}, nil
	}

	var rows []breakdownItem
	if err := sonic.UnmarshalString(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode score breakdown: %w", err)
	}

	out := make([]scoring.PlayerScore, 0, len(rows))
	for _, row := range rows {
		out = append(out, scoring.PlayerScore{
			PlayerID:   row.PlayerID,
			Base:       row.Base,
			Multiplier: row.Multiplier,
			Points:     row.Points,
			HasRecord:  row.HasRecord,
		})
	}
	return out, nil
}

func scoredTeamFromRow(row scoredTeamTableModel) (scoring.ScoredTeam, error) {
	breakdown, err := decodeBreakdown(row.Breakdown)
	if err != nil {
		return scoring.ScoredTeam{}, fmt.Errorf("scored team roster=%s: %w", row.RosterID, err)
	}
	return scoring.ScoredTeam{
		RosterID:  row.RosterID,
		UserID:    row.UserID,
		MatchID:   row.MatchID,
		Breakdown: breakdown,
		Total:     row.Total,
		ScoredAt:  row.ScoredAt.UTC(),
	}, nil
}
