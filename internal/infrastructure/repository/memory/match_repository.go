package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
)

type MatchRepository struct {
	mu    sync.RWMutex
	items map[string]match.Match
	now   func() time.Time
}

func NewMatchRepository(items []match.Match) *MatchRepository {
	index := make(map[string]match.Match, len(items))
	for _, item := range items {
		index[item.ID] = cloneMatch(item)
	}

	return &MatchRepository{items: index, now: time.Now}
}

// List returns matches by start time descending. A limit of zero or less
// returns every match.
func (r *MatchRepository) List(_ context.Context, limit int) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, cloneMatch(item))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartAt.Equal(out[j].StartAt) {
			return out[i].StartAt.After(out[j].StartAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[matchID]
	if !ok {
		return match.Match{}, false, nil
	}
	return cloneMatch(item), true, nil
}

func (r *MatchRepository) Upsert(_ context.Context, item match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := cloneMatch(item)
	if stored, ok := r.items[item.ID]; ok {
		next.Status = stored.Status.MergeUpsert(item.Status)
		next.CompletedAt = stored.CompletedAt
	}
	r.items[item.ID] = next
	return nil
}

func (r *MatchRepository) UpdateStatus(_ context.Context, matchID string, from, to match.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[matchID]
	if !ok || item.Status != from {
		return false, nil
	}
	item.Status = to
	if to == match.StatusCompleted {
		completedAt := r.now().UTC()
		item.CompletedAt = &completedAt
	}
	r.items[matchID] = item
	return true, nil
}

func cloneMatch(m match.Match) match.Match {
	copied := m
	if m.CompletedAt != nil {
		completedAt := *m.CompletedAt
		copied.CompletedAt = &completedAt
	}
	return copied
}
