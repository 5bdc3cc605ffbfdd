package cache

import (
	"context"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/player"
	basecache "github.com/riskibarqy/fantasy-cricket/internal/platform/cache"
)

const playerPoolKeyPrefix = "player:pool:"

// PlayerRepository caches whole match pools. Pools change only through
// UpsertMany, which drops the affected keys.
type PlayerRepository struct {
	next  player.Repository
	cache *basecache.Store
}

func NewPlayerRepository(next player.Repository, cache *basecache.Store) *PlayerRepository {
	return &PlayerRepository{next: next, cache: cache}
}

func (r *PlayerRepository) ListByMatch(ctx context.Context, matchID string) ([]player.Player, error) {
	items, err := r.pool(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return append([]player.Player(nil), items...), nil
}

// GetByIDs answers from the cached pool in request order, skipping unknown ids.
func (r *PlayerRepository) GetByIDs(ctx context.Context, matchID string, playerIDs []string) ([]player.Player, error) {
	if len(playerIDs) == 0 {
		return []player.Player{}, nil
	}

	items, err := r.pool(ctx, matchID)
	if err != nil {
		return nil, err
	}

	index := make(map[string]player.Player, len(items))
	for _, item := range items {
		index[item.ID] = item
	}

	out := make([]player.Player, 0, len(playerIDs))
	for _, id := range playerIDs {
		if item, ok := index[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

// UpsertMany evicts the touched pools on both sides of the write. The store
// also refuses to cache a load that overlapped either eviction.
func (r *PlayerRepository) UpsertMany(ctx context.Context, players []player.Player) error {
	r.evictPools(ctx, players)
	err := r.next.UpsertMany(ctx, players)
	r.evictPools(ctx, players)
	return err
}

func (r *PlayerRepository) evictPools(ctx context.Context, players []player.Player) {
	seen := make(map[string]struct{}, 2)
	for _, p := range players {
		if _, ok := seen[p.MatchID]; ok {
			continue
		}
		seen[p.MatchID] = struct{}{}
		r.cache.Delete(ctx, playerPoolKeyPrefix+p.MatchID)
	}
}

func (r *PlayerRepository) pool(ctx context.Context, matchID string) ([]player.Player, error) {
	v, err := r.cache.GetOrLoad(ctx, playerPoolKeyPrefix+matchID, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByMatch(ctx, matchID)
		if err != nil {
			return nil, err
		}
		return append([]player.Player(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]player.Player)
	return items, nil
}
