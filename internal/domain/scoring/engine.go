package scoring

import (
	"math"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasy"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/player"
)

// Engine converts performance records into roster totals. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	rules Rules
}

func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules}
}

// BasePoints returns the additive points of one record before multipliers.
// Bowling points only apply to roles that bowl.
func (e *Engine) BasePoints(role player.Role, record PerformanceRecord) float64 {
	if record.FixedPoints != nil {
		return float64(*record.FixedPoints)
	}

	rules := e.rules
	points := record.Runs * rules.PointsPerRun
	switch {
	case record.Runs >= 100:
		points += rules.CenturyBonus
	case record.Runs >= 50:
		points += rules.HalfCenturyBonus
	}
	points += record.Fours * rules.FourBonus
	points += record.Sixes * rules.SixBonus
	if record.BallsFaced > 0 {
		strikeRate := float64(record.Runs) * 100 / float64(record.BallsFaced)
		if strikeRate > rules.StrikeRateThreshold {
			points += rules.StrikeRateBonus
		}
	}

	if role.Bowls() {
		points += record.Wickets * rules.PointsPerWicket
		switch {
		case record.Wickets >= 5:
			points += rules.FiveWicketBonus
		case record.Wickets >= 4:
			points += rules.FourWicketBonus
		}
		if record.Overs > 0 && record.Economy < rules.EconomyThreshold {
			points += rules.EconomyBonus
		}
	}

	return float64(points)
}

// Multiplier returns the factor applied to playerID inside roster.
func (e *Engine) Multiplier(roster fantasy.Roster, playerID string) float64 {
	switch playerID {
	case roster.CaptainID:
		return e.rules.CaptainMultiplier
	case roster.ViceCaptainID:
		return e.rules.ViceCaptainMultiplier
	default:
		return 1
	}
}

// Score computes a roster total. Players without a record contribute zero;
// the total is rounded once after all contributions are summed.
func (e *Engine) Score(roster fantasy.Roster, players map[string]player.Player, performances map[string]PerformanceRecord) ScoredTeam {
	breakdown := make([]PlayerScore, 0, len(roster.PlayerIDs))
	var sum float64
	for _, playerID := range roster.PlayerIDs {
		multiplier := e.Multiplier(roster, playerID)
		record, ok := performances[playerID]
		if !ok {
			breakdown = append(breakdown, PlayerScore{PlayerID: playerID, Multiplier: multiplier})
			continue
		}

		base := e.BasePoints(players[playerID].Role, record)
		contribution := base * multiplier
		sum += contribution
		breakdown = append(breakdown, PlayerScore{
			PlayerID:   playerID,
			Base:       base,
			Multiplier: multiplier,
			Points:     contribution,
			HasRecord:  true,
		})
	}

	return ScoredTeam{
		RosterID:  roster.ID,
		UserID:    roster.UserID,
		MatchID:   roster.MatchID,
		Breakdown: breakdown,
		Total:     int(math.Round(sum)),
	}
}
