package player

import "context"

// Repository describes player pool persistence needs from use cases.
type Repository interface {
	ListByMatch(ctx context.Context, matchID string) ([]Player, error)
	GetByIDs(ctx context.Context, matchID string, playerIDs []string) ([]Player, error)
	UpsertMany(ctx context.Context, players []Player) error
}
