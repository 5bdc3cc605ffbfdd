package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/player"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/scoring"
	"github.com/shopspring/decimal"
)

var _ scoring.MatchCommitter = (*ScoringRepository)(nil)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get match: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped sql.ErrNoRows to be not found")
	}
	if isNotFound(errors.New("connection refused")) {
		t.Fatalf("expected unrelated error to be false")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})) {
		t.Fatalf("expected 23505 to be a unique violation")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Fatalf("expected foreign key violation to be false")
	}
	if isUniqueViolation(errors.New("23505")) {
		t.Fatalf("expected plain error to be false")
	}
}

func TestBuildUpdateStatusQuery(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("start only swaps status", func(t *testing.T) {
		query, args, err := buildUpdateStatusQuery("m1", match.StatusUpcoming, match.StatusLive, now)
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		want := "UPDATE matches SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3"
		if query != want {
			t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
		}
		if len(args) != 3 || args[0] != "LIVE" || args[1] != "m1" || args[2] != "UPCOMING" {
			t.Fatalf("unexpected args: %+v", args)
		}
	})

	t.Run("completion stamps completed_at", func(t *testing.T) {
		query, args, err := buildUpdateStatusQuery("m1", match.StatusLive, match.StatusCompleted, now)
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		want := "UPDATE matches SET status = $1, updated_at = NOW(), completed_at = $2 WHERE id = $3 AND status = $4"
		if query != want {
			t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
		}
		if len(args) != 4 || args[1] != now || args[3] != "LIVE" {
			t.Fatalf("unexpected args: %+v", args)
		}
	})
}

func TestBuildUpsertMatchQuery(t *testing.T) {
	query, args, err := buildUpsertMatchQuery(match.Match{
		ID:      "m1",
		Team1:   "India",
		Team2:   "Australia",
		StartAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Status:  match.StatusUpcoming,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.HasPrefix(query, "INSERT INTO matches (id, external_ref, team1, team2, venue, start_at, status, completed_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (id)") {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 8 || args[6] != "UPCOMING" {
		t.Fatalf("unexpected args: %+v", args)
	}
	if !strings.Contains(query, "status = CASE WHEN matches.status = 'UPCOMING' AND EXCLUDED.status = 'LIVE' THEN EXCLUDED.status ELSE matches.status END") {
		t.Fatalf("status must only advance upcoming to live on conflict: %s", query)
	}
	for _, forbidden := range []string{"status = EXCLUDED.status", "completed_at = EXCLUDED.completed_at"} {
		if strings.Contains(query, forbidden) {
			t.Fatalf("upsert must not overwrite %q: %s", forbidden, query)
		}
	}
}

func TestBuildUpsertPlayersQuery_DeduplicatesKeys(t *testing.T) {
	players := []player.Player{
		{ID: "p1", MatchID: "m1", Name: "Old", Role: player.RoleBatsman, Team: "India", Cost: decimal.NewFromInt(9)},
		{ID: "p2", MatchID: "m1", Name: "Other", Role: player.RoleBowler, Team: "India", Cost: decimal.NewFromInt(8)},
		{ID: "p1", MatchID: "m1", Name: "New", Role: player.RoleBatsman, Team: "India", Cost: decimal.NewFromFloat(9.5)},
	}

	query, args, err := buildUpsertPlayersQuery(players)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(query, "VALUES ($1, $2, $3, $4, $5, $6, $7, $8), ($9, $10, $11, $12, $13, $14, $15, $16) ON CONFLICT (match_id, id)") {
		t.Fatalf("expected two rows, got: %s", query)
	}
	if len(args) != 16 {
		t.Fatalf("expected 16 args, got %d", len(args))
	}
	if args[2] != "Other" || args[10] != "New" {
		t.Fatalf("expected later duplicate to win, args=%+v", args)
	}
}

func TestBuildInsertScoredTeamQuery(t *testing.T) {
	query, args, err := buildInsertScoredTeamQuery(scoring.ScoredTeam{
		RosterID: "r1",
		UserID:   "u1",
		MatchID:  "m1",
		Total:    42,
		Breakdown: []scoring.PlayerScore{
			{PlayerID: "p1", Base: 20, Multiplier: 2, Points: 40, HasRecord: true},
		},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.HasSuffix(query, "ON CONFLICT (roster_id) DO NOTHING") {
		t.Fatalf("scored team insert must not overwrite: %s", query)
	}
	if len(args) != 6 || args[3] != 42 {
		t.Fatalf("unexpected args: %+v", args)
	}
	if raw, ok := args[4].(string); !ok || !strings.Contains(raw, `"player_id":"p1"`) {
		t.Fatalf("expected json breakdown arg, got %#v", args[4])
	}
}

func TestBuildCreditUserTotalQuery(t *testing.T) {
	query, args, err := buildCreditUserTotalQuery("u1", 15)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(query, "points = user_totals.points + EXCLUDED.points") {
		t.Fatalf("expected additive upsert, got: %s", query)
	}
	if len(args) != 2 || args[0] != "u1" || args[1] != 15 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestBreakdownRoundTrip(t *testing.T) {
	items := []scoring.PlayerScore{
		{PlayerID: "p1", Base: 33, Multiplier: 2, Points: 66, HasRecord: true},
		{PlayerID: "p2", Base: 0, Multiplier: 1, Points: 0},
	}

	raw, err := encodeBreakdown(items)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := decodeBreakdown(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0] != items[0] || got[1] != items[1] {
		t.Fatalf("unexpected breakdown: %+v", got)
	}

	if empty, err := decodeBreakdown(""); err != nil || len(empty) != 0 {
		t.Fatalf("expected empty breakdown, got %+v err=%v", empty, err)
	}
	if _, err := decodeBreakdown("{not json"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestMatchFromRow(t *testing.T) {
	completed := time.Date(2026, 3, 1, 18, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))
	got := matchFromRow(matchTableModel{
		ID:          "m1",
		Team1:       "India",
		Team2:       "Australia",
		Status:      "COMPLETED",
		CompletedAt: &completed,
	})
	if got.Status != match.StatusCompleted || got.CompletedAt == nil || got.CompletedAt.Location() != time.UTC {
		t.Fatalf("unexpected match: %+v", got)
	}
	if !got.CompletedAt.Equal(completed) {
		t.Fatalf("completed_at changed instant: %s", got.CompletedAt)
	}
}
