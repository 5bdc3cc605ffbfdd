package fantasy

import "context"

// Repository describes roster persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, roster Roster) error
	GetByID(ctx context.Context, rosterID string) (Roster, bool, error)
	ListByMatch(ctx context.Context, matchID string) ([]Roster, error)
	ListByUser(ctx context.Context, userID string) ([]Roster, error)
}
