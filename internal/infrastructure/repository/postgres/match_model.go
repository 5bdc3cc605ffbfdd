package postgres

import "time"

type matchTableModel struct {
	ID          string     `db:"id"`
	ExternalRef string     `db:"external_ref"`
	Team1       string     `db:"team1"`
	Team2       string     `db:"team2"`
	Venue       string     `db:"venue"`
	StartAt     time.Time  `db:"start_at"`
	Status      string     `db:"status"`
	CompletedAt *time.Time `db:"completed_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

type matchInsertModel struct {
	ID          string     `db:"id"`
	ExternalRef string     `db:"external_ref"`
	Team1       string     `db:"team1"`
	Team2       string     `db:"team2"`
	Venue       string     `db:"venue"`
	StartAt     time.Time  `db:"start_at"`
	Status      string     `db:"status"`
	CompletedAt *time.Time `db:"completed_at"`
}
