package scoring

import "time"

// PerformanceRecord is one player's raw output in a match. FixedPoints, when
// set, replaces the stat formula with a precomputed base value.
type PerformanceRecord struct {
	PlayerID    string
	Runs        int
	BallsFaced  int
	Fours       int
	Sixes       int
	Wickets     int
	Overs       float64
	Economy     float64
	FixedPoints *int
	Simulated   bool
}

// PlayerScore is a single roster member's share of a team total.
type PlayerScore struct {
	PlayerID   string
	Base       float64
	Multiplier float64
	Points     float64
	HasRecord  bool
}

// ScoredTeam is the derived result of scoring one roster.
type ScoredTeam struct {
	RosterID  string
	UserID    string
	MatchID   string
	Breakdown []PlayerScore
	Total     int
	ScoredAt  time.Time
}

// Contribution returns the multiplied points of playerID in the breakdown.
func (s ScoredTeam) Contribution(playerID string) float64 {
	for _, item := range s.Breakdown {
		if item.PlayerID == playerID {
			return item.Points
		}
	}
	return 0
}

// UserTotal is a user's cumulative points across all scored rosters.
type UserTotal struct {
	UserID string
	Points int
}
