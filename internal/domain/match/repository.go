package match

import "context"

// Repository exposes match persistence operations.
type Repository interface {
	List(ctx context.Context, limit int) ([]Match, error)
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	// Upsert inserts item or refreshes an existing row's descriptive fields.
	// On an existing row the status merges through Status.MergeUpsert and
	// CompletedAt is left untouched.
	Upsert(ctx context.Context, item Match) error
	// UpdateStatus moves a match from one status to another and reports false
	// when the stored status no longer equals from.
	UpdateStatus(ctx context.Context, matchID string, from, to Status) (bool, error)
}
