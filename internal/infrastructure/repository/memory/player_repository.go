package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/player"
)

type PlayerRepository struct {
	mu           sync.RWMutex
	orderByMatch map[string][]string
	indexByMatch map[string]map[string]player.Player
}

func NewPlayerRepository(players []player.Player) *PlayerRepository {
	r := &PlayerRepository{
		orderByMatch: make(map[string][]string),
		indexByMatch: make(map[string]map[string]player.Player),
	}
	for _, p := range players {
		r.put(p)
	}

	return r
}

func (r *PlayerRepository) ListByMatch(_ context.Context, matchID string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index := r.indexByMatch[matchID]
	out := make([]player.Player, 0, len(index))
	for _, id := range r.orderByMatch[matchID] {
		out = append(out, index[id])
	}

	return out, nil
}

func (r *PlayerRepository) GetByIDs(_ context.Context, matchID string, playerIDs []string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index := r.indexByMatch[matchID]
	out := make([]player.Player, 0, len(playerIDs))
	for _, id := range playerIDs {
		p, ok := index[id]
		if !ok {
			continue
		}
		out = append(out, p)
	}

	return out, nil
}

func (r *PlayerRepository) UpsertMany(_ context.Context, players []player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range players {
		r.put(p)
	}
	return nil
}

func (r *PlayerRepository) put(p player.Player) {
	index, ok := r.indexByMatch[p.MatchID]
	if !ok {
		index = make(map[string]player.Player)
		r.indexByMatch[p.MatchID] = index
	}
	if _, exists := index[p.ID]; !exists {
		r.orderByMatch[p.MatchID] = append(r.orderByMatch[p.MatchID], p.ID)
	}
	index[p.ID] = p
}
