package scoring

import (
	"fmt"
	"testing"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasy"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/player"
)

func fixed(points int) PerformanceRecord {
	return PerformanceRecord{FixedPoints: &points}
}

func testRoster() (fantasy.Roster, map[string]player.Player) {
	roster := fantasy.Roster{ID: "r1", UserID: "u1", MatchID: "m1", Name: "XI", CaptainID: "p1", ViceCaptainID: "p2"}
	players := make(map[string]player.Player, 11)
	for i := 1; i <= 11; i++ {
		id := fmt.Sprintf("p%d", i)
		role := player.RoleBatsman
		if i > 7 {
			role = player.RoleBowler
		}
		roster.PlayerIDs = append(roster.PlayerIDs, id)
		players[id] = player.Player{ID: id, Role: role, Team: "India"}
	}
	return roster, players
}

func TestEngineBasePoints(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultRules())
	tests := []struct {
		name   string
		role   player.Role
		record PerformanceRecord
		want   float64
	}{
		{name: "runs fours sixes at strike rate 150", role: player.RoleBatsman, record: PerformanceRecord{Runs: 45, BallsFaced: 30, Fours: 4, Sixes: 1}, want: 51},
		{name: "half century with strike rate bonus", role: player.RoleBatsman, record: PerformanceRecord{Runs: 50, BallsFaced: 30}, want: 64},
		{name: "century replaces half century bonus", role: player.RoleBatsman, record: PerformanceRecord{Runs: 100, BallsFaced: 80}, want: 116},
		{name: "no balls faced skips strike rate", role: player.RoleBatsman, record: PerformanceRecord{Runs: 0, BallsFaced: 0}, want: 0},
		{name: "three wickets economical", role: player.RoleBowler, record: PerformanceRecord{Wickets: 3, Overs: 4, Economy: 4.5}, want: 81},
		{name: "four wicket haul", role: player.RoleBowler, record: PerformanceRecord{Wickets: 4, Overs: 4, Economy: 6}, want: 108},
		{name: "five wicket haul replaces four wicket bonus", role: player.RoleAllRounder, record: PerformanceRecord{Wickets: 5, Overs: 4, Economy: 7}, want: 175},
		{name: "no overs skips economy", role: player.RoleBowler, record: PerformanceRecord{Overs: 0, Economy: 0}, want: 0},
		{name: "batsman gets no bowling points", role: player.RoleBatsman, record: PerformanceRecord{Wickets: 3, Overs: 4, Economy: 3}, want: 0},
		{name: "wicketkeeper gets no bowling points", role: player.RoleWicketkeeper, record: PerformanceRecord{Runs: 10, BallsFaced: 10, Wickets: 1, Overs: 1, Economy: 2}, want: 10},
		{name: "fixed points override stats", role: player.RoleBowler, record: PerformanceRecord{Runs: 100, Wickets: 5, FixedPoints: intPtr(12)}, want: 12},
	}

	for _, tc := range tests {
		if got := engine.BasePoints(tc.role, tc.record); got != tc.want {
			t.Fatalf("%s: got=%v want=%v", tc.name, got, tc.want)
		}
	}
}

func TestEngineBasePointsMonotonicInRuns(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultRules())
	for _, role := range player.AllRoles {
		previous := -1.0
		for runs := 0; runs <= 200; runs++ {
			got := engine.BasePoints(role, PerformanceRecord{Runs: runs, BallsFaced: 60, Fours: 3, Wickets: 1, Overs: 2, Economy: 8})
			if got < previous {
				t.Fatalf("role=%s runs=%d: points decreased from %v to %v", role, runs, previous, got)
			}
			previous = got
		}
	}
}

func TestEngineScoreEndToEnd(t *testing.T) {
	t.Parallel()

	roster, players := testRoster()
	performances := map[string]PerformanceRecord{"p1": fixed(40), "p2": fixed(30)}
	for i := 3; i <= 11; i++ {
		performances[fmt.Sprintf("p%d", i)] = fixed(20)
	}

	team := NewEngine(DefaultRules()).Score(roster, players, performances)
	if team.Total != 305 {
		t.Fatalf("expected total 305, got %d", team.Total)
	}
	if team.RosterID != "r1" || team.UserID != "u1" || team.MatchID != "m1" {
		t.Fatalf("unexpected identity on scored team: %+v", team)
	}
	if len(team.Breakdown) != 11 {
		t.Fatalf("expected 11 breakdown entries, got %d", len(team.Breakdown))
	}
}

func TestEngineCaptainMultiplierAppliedOnce(t *testing.T) {
	t.Parallel()

	roster, players := testRoster()
	performances := map[string]PerformanceRecord{
		"p1": {Runs: 67, BallsFaced: 41, Fours: 6, Sixes: 2},
		"p2": {Runs: 12, BallsFaced: 15},
		"p9": {Wickets: 2, Overs: 4, Economy: 4.25},
	}
	engine := NewEngine(DefaultRules())

	withCaptain := engine.Score(roster, players, performances)
	plain := roster
	plain.CaptainID = "nobody"
	withoutCaptain := engine.Score(plain, players, performances)

	if withCaptain.Contribution("p1") != 2*withoutCaptain.Contribution("p1") {
		t.Fatalf("captain contribution %v is not double %v", withCaptain.Contribution("p1"), withoutCaptain.Contribution("p1"))
	}
	for _, id := range roster.PlayerIDs[1:] {
		if withCaptain.Contribution(id) != withoutCaptain.Contribution(id) {
			t.Fatalf("non-captain %s changed contribution", id)
		}
	}
}

func TestEngineScoreIdempotent(t *testing.T) {
	t.Parallel()

	roster, players := testRoster()
	performances := map[string]PerformanceRecord{
		"p1":  {Runs: 33, BallsFaced: 20, Fours: 3},
		"p10": {Wickets: 4, Overs: 4, Economy: 5.5},
	}
	engine := NewEngine(DefaultRules())

	first := engine.Score(roster, players, performances)
	second := engine.Score(roster, players, performances)
	if first.Total != second.Total {
		t.Fatalf("totals differ: %d vs %d", first.Total, second.Total)
	}
}

func TestEngineMissingRecordContributesZero(t *testing.T) {
	t.Parallel()

	roster, players := testRoster()
	performances := map[string]PerformanceRecord{"p1": fixed(40), "p2": fixed(30)}
	for i := 3; i <= 10; i++ {
		performances[fmt.Sprintf("p%d", i)] = fixed(20)
	}

	team := NewEngine(DefaultRules()).Score(roster, players, performances)
	if team.Total != 285 {
		t.Fatalf("expected total 285, got %d", team.Total)
	}
	last := team.Breakdown[len(team.Breakdown)-1]
	if last.PlayerID != "p11" || last.HasRecord || last.Points != 0 {
		t.Fatalf("unexpected breakdown for missing player: %+v", last)
	}
}

func TestEngineRoundsOnceAtTheEnd(t *testing.T) {
	t.Parallel()

	roster, players := testRoster()
	team := NewEngine(DefaultRules()).Score(roster, players, map[string]PerformanceRecord{"p2": fixed(7)})
	if team.Total != 11 {
		t.Fatalf("expected 10.5 to round to 11, got %d", team.Total)
	}
}

func TestFixedPointsGenerator(t *testing.T) {
	t.Parallel()

	record := FixedPointsGenerator().Generate(player.Player{ID: "p1", BasePoints: 42})
	if record.FixedPoints == nil || *record.FixedPoints != 42 || !record.Simulated || record.PlayerID != "p1" {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func intPtr(v int) *int {
	return &v
}
