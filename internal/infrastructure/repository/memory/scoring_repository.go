package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/scoring"
)

// ScoringRepository keeps scored teams and user balances under one lock so a
// team and its credit become visible together.
type ScoringRepository struct {
	mu     sync.RWMutex
	teams  map[string]scoring.ScoredTeam
	order  []string
	totals map[string]int
}

func NewScoringRepository() *ScoringRepository {
	return &ScoringRepository{
		teams:  make(map[string]scoring.ScoredTeam),
		totals: make(map[string]int),
	}
}

func (r *ScoringRepository) GetScoredTeam(_ context.Context, rosterID string) (scoring.ScoredTeam, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	team, ok := r.teams[rosterID]
	if !ok {
		return scoring.ScoredTeam{}, false, nil
	}
	return cloneScoredTeam(team), true, nil
}

func (r *ScoringRepository) ListScoredTeamsByMatch(_ context.Context, matchID string) ([]scoring.ScoredTeam, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]scoring.ScoredTeam, 0)
	for _, id := range r.order {
		team := r.teams[id]
		if team.MatchID == matchID {
			out = append(out, cloneScoredTeam(team))
		}
	}
	return out, nil
}

func (r *ScoringRepository) SaveScoredTeam(_ context.Context, team scoring.ScoredTeam) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.teams[team.RosterID]; exists {
		return scoring.ErrAlreadyScored
	}
	r.teams[team.RosterID] = cloneScoredTeam(team)
	r.order = append(r.order, team.RosterID)
	r.totals[team.UserID] += team.Total
	return nil
}

func (r *ScoringRepository) ListUserTotals(_ context.Context) ([]scoring.UserTotal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]scoring.UserTotal, 0, len(r.totals))
	for userID, points := range r.totals {
		out = append(out, scoring.UserTotal{UserID: userID, Points: points})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *ScoringRepository) GetUserTotal(_ context.Context, userID string) (scoring.UserTotal, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	points, ok := r.totals[userID]
	if !ok {
		return scoring.UserTotal{}, false, nil
	}
	return scoring.UserTotal{UserID: userID, Points: points}, true, nil
}

func cloneScoredTeam(t scoring.ScoredTeam) scoring.ScoredTeam {
	copied := t
	copied.Breakdown = append([]scoring.PlayerScore(nil), t.Breakdown...)
	return copied
}
