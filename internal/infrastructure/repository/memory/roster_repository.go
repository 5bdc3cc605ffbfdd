package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasy"
)

type RosterRepository struct {
	mu    sync.RWMutex
	items map[string]fantasy.Roster
	order []string
}

func NewRosterRepository() *RosterRepository {
	return &RosterRepository{items: make(map[string]fantasy.Roster)}
}

func (r *RosterRepository) Create(_ context.Context, roster fantasy.Roster) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[roster.ID]; exists {
		return fmt.Errorf("roster id=%s already exists", roster.ID)
	}
	r.items[roster.ID] = cloneRoster(roster)
	r.order = append(r.order, roster.ID)
	return nil
}

func (r *RosterRepository) GetByID(_ context.Context, rosterID string) (fantasy.Roster, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roster, ok := r.items[rosterID]
	if !ok {
		return fantasy.Roster{}, false, nil
	}
	return cloneRoster(roster), true, nil
}

func (r *RosterRepository) ListByMatch(_ context.Context, matchID string) ([]fantasy.Roster, error) {
	return r.filter(func(item fantasy.Roster) bool { return item.MatchID == matchID }), nil
}

func (r *RosterRepository) ListByUser(_ context.Context, userID string) ([]fantasy.Roster, error) {
	return r.filter(func(item fantasy.Roster) bool { return item.UserID == userID }), nil
}

func (r *RosterRepository) filter(keep func(fantasy.Roster) bool) []fantasy.Roster {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fantasy.Roster, 0)
	for _, id := range r.order {
		item := r.items[id]
		if keep(item) {
			out = append(out, cloneRoster(item))
		}
	}
	return out
}

func cloneRoster(s fantasy.Roster) fantasy.Roster {
	copied := s
	copied.PlayerIDs = append([]string(nil), s.PlayerIDs...)
	return copied
}
