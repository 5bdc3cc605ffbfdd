package postgres

import (
	"time"

	"github.com/lib/pq"
)

type rosterTableModel struct {
	ID            string         `db:"id"`
	UserID        string         `db:"user_id"`
	MatchID       string         `db:"match_id"`
	Name          string         `db:"name"`
	PlayerIDs     pq.StringArray `db:"player_ids"`
	CaptainID     string         `db:"captain_id"`
	ViceCaptainID string         `db:"vice_captain_id"`
	CreatedAt     time.Time      `db:"created_at"`
}
