package postgres

import (
	"time"

	"github.com/shopspring/decimal"
)

type playerTableModel struct {
	MatchID     string          `db:"match_id"`
	ID          string          `db:"id"`
	Name        string          `db:"name"`
	Role        string          `db:"role"`
	Team        string          `db:"team"`
	Cost        decimal.Decimal `db:"cost"`
	BasePoints  int             `db:"base_points"`
	ExternalRef string          `db:"external_ref"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}
