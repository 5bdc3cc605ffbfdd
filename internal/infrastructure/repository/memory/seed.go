package memory

import (
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/player"
	"github.com/shopspring/decimal"
)

const MatchIDDemoIndiaAustralia = "demo-ind-aus"

// SeedMatches returns the demo fixture, starting one day after now.
func SeedMatches(now time.Time) []match.Match {
	return []match.Match{
		{
			ID:      MatchIDDemoIndiaAustralia,
			Team1:   "India",
			Team2:   "Australia",
			Venue:   "Wankhede Stadium, Mumbai",
			StartAt: now.UTC().Add(24 * time.Hour).Truncate(time.Minute),
			Status:  match.StatusUpcoming,
		},
	}
}

type seedPlayer struct {
	id         string
	name       string
	role       string
	team       string
	cost       string
	basePoints int
}

var demoPlayers = []seedPlayer{
	{"ind-virat-kohli", "Virat Kohli", "Batsman", "India", "10.5", 50},
	{"ind-rohit-sharma", "Rohit Sharma", "Batsman", "India", "10", 48},
	{"ind-shubman-gill", "Shubman Gill", "Batsman", "India", "9", 43},
	{"ind-kl-rahul", "KL Rahul", "WK", "India", "9", 45},
	{"ind-rishabh-pant", "Rishabh Pant", "WK", "India", "8.5", 42},
	{"ind-hardik-pandya", "Hardik Pandya", "All-Rounder", "India", "9.5", 47},
	{"ind-ravindra-jadeja", "Ravindra Jadeja", "All-Rounder", "India", "9", 44},
	{"ind-axar-patel", "Axar Patel", "All-Rounder", "India", "7.5", 38},
	{"ind-jasprit-bumrah", "Jasprit Bumrah", "Bowler", "India", "10", 52},
	{"ind-mohammed-siraj", "Mohammed Siraj", "Bowler", "India", "8.5", 41},
	{"ind-kuldeep-yadav", "Kuldeep Yadav", "Bowler", "India", "8", 40},
	{"aus-steve-smith", "Steve Smith", "Batsman", "Australia", "10", 49},
	{"aus-david-warner", "David Warner", "Batsman", "Australia", "9.5", 46},
	{"aus-travis-head", "Travis Head", "Batsman", "Australia", "9", 45},
	{"aus-marnus-labuschagne", "Marnus Labuschagne", "Batsman", "Australia", "8", 40},
	{"aus-alex-carey", "Alex Carey", "WK", "Australia", "8", 44},
	{"aus-glenn-maxwell", "Glenn Maxwell", "All-Rounder", "Australia", "9.5", 51},
	{"aus-marcus-stoinis", "Marcus Stoinis", "All-Rounder", "Australia", "8", 39},
	{"aus-pat-cummins", "Pat Cummins", "Bowler", "Australia", "9.5", 50},
	{"aus-mitchell-starc", "Mitchell Starc", "Bowler", "Australia", "10", 53},
	{"aus-josh-hazlewood", "Josh Hazlewood", "Bowler", "Australia", "8.5", 43},
	{"aus-adam-zampa", "Adam Zampa", "Bowler", "Australia", "7.5", 37},
}

// SeedPlayers returns the demo match pool with roles normalized from their
// display labels.
func SeedPlayers() []player.Player {
	out := make([]player.Player, 0, len(demoPlayers))
	for _, item := range demoPlayers {
		role, err := player.NormalizeRole(item.role)
		if err != nil {
			panic(err)
		}
		out = append(out, player.Player{
			ID:         item.id,
			MatchID:    MatchIDDemoIndiaAustralia,
			Name:       item.name,
			Role:       role,
			Team:       item.team,
			Cost:       decimal.RequireFromString(item.cost),
			BasePoints: item.basePoints,
		})
	}
	return out
}
