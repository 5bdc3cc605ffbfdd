package postgres

import "time"

type scoredTeamTableModel struct {
	RosterID  string    `db:"roster_id"`
	UserID    string    `db:"user_id"`
	MatchID   string    `db:"match_id"`
	Total     int       `db:"total"`
	Breakdown string    `db:"breakdown"`
	ScoredAt  time.Time `db:"scored_at"`
}

type userTotalTableModel struct {
	UserID string `db:"user_id"`
	Points int    `db:"points"`
}

// breakdownItem is the jsonb shape of one scoring.PlayerScore.
type breakdownItem struct {
	PlayerID   string  `json:"player_id"`
	Base       float64 `json:"base"`
	Multiplier float64 `json:"multiplier"`
	Points     float64 `json:"points"`
	HasRecord  bool    `json:"has_record"`
}
