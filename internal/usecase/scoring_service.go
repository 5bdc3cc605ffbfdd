package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasy"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/leaderboard"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/player"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/cache"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/resilience"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultScoringWorkers  = 8
	leaderboardCachePrefix = "leaderboard:"
)

const (
	finalizeOutcomeCompleted = "completed"
	finalizeOutcomePartial   = "partial"
	finalizeOutcomeRejected  = "rejected"
	finalizeOutcomeFailed    = "failed"
)

// UserPoints is a user's cumulative balance and global position.
type UserPoints struct {
	UserID string
	Points int
	Rank   int
}

type ScoringService struct {
	matchRepo  match.Repository
	playerRepo player.Repository
	rosterRepo fantasy.Repository
	scoreRepo  scoring.Repository
	engine     *scoring.Engine
	resolver   *PerformanceResolver
	cache      *cache.Store
	metrics    MetricsRecorder
	logger     *logging.Logger
	workers    int
	now        func() time.Time

	finalizeLocks resilience.KeyedMutex
	// commitGate is held exclusively while a finalize commits and shared by
	// readers, so readers never observe half of a match's credits.
	commitGate sync.RWMutex
}

func NewScoringService(
	matchRepo match.Repository,
	playerRepo player.Repository,
	rosterRepo fantasy.Repository,
	scoreRepo scoring.Repository,
	engine *scoring.Engine,
	resolver *PerformanceResolver,
	logger *logging.Logger,
) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}
	if engine == nil {
		engine = scoring.NewEngine(scoring.DefaultRules())
	}
	if resolver == nil {
		resolver = NewPerformanceResolver(nil, nil, logger)
	}

	return &ScoringService{
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		rosterRepo: rosterRepo,
		scoreRepo:  scoreRepo,
		engine:     engine,
		resolver:   resolver,
		metrics:    noopMetrics{},
		logger:     logger,
		workers:    defaultScoringWorkers,
		now:        time.Now,
	}
}

func (s *ScoringService) SetCache(store *cache.Store) {
	s.cache = store
}

func (s *ScoringService) SetMetrics(metrics MetricsRecorder) {
	if metrics != nil {
		s.metrics = metrics
	}
}

func (s *ScoringService) SetWorkerCount(workers int) {
	if workers > 0 {
		s.workers = workers
	}
}

// FinalizeMatch scores every roster of a live match, credits owners and marks
// the match completed. Calls for the same match are serialized. Rosters that
// already have a stored result are kept as they are, so a run interrupted by
// a storage failure can be retried without double credit.
func (s *ScoringService) FinalizeMatch(ctx context.Context, matchID string) ([]scoring.ScoredTeam, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.FinalizeMatch", attribute.String("match.id", matchID))
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	unlock, err := s.finalizeLocks.Lock(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("acquire finalize lock match=%s: %w", matchID, err)
	}
	defer unlock()

	started := s.now()
	teams, err := s.finalizeLocked(ctx, matchID)
	elapsed := s.now().Sub(started)

	var partial *PartialFinalizeError
	switch {
	case err == nil:
		s.metrics.ObserveFinalize(finalizeOutcomeCompleted, len(teams), elapsed)
		s.logger.InfoContext(ctx, "match finalized", "match_id", matchID, "teams", len(teams), "duration_ms", elapsed.Milliseconds())
	case errors.As(err, &partial):
		s.metrics.ObserveFinalize(finalizeOutcomePartial, len(partial.Scored), elapsed)
		s.logger.ErrorContext(ctx, "finalize halted on persistence failure",
			"match_id", matchID,
			"scored", len(partial.Scored),
			"failed", partial.Failed,
			"pending", len(partial.Pending),
			"error", partial.Cause,
		)
	case errors.Is(err, ErrPersistence):
		s.metrics.ObserveFinalize(finalizeOutcomeFailed, 0, elapsed)
		s.logger.ErrorContext(ctx, "finalize rolled back", "match_id", matchID, "error", err)
	default:
		s.metrics.ObserveFinalize(finalizeOutcomeRejected, 0, elapsed)
	}

	return teams, err
}

func (s *ScoringService) finalizeLocked(ctx context.Context, matchID string) ([]scoring.ScoredTeam, error) {
	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("get match by id: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	if item.Status == match.StatusCompleted {
		return nil, fmt.Errorf("%w: match=%s", ErrMatchAlreadyCompleted, matchID)
	}
	if item.Status != match.StatusLive {
		return nil, fmt.Errorf("%w: match=%s status=%s is not live", ErrConflict, matchID, item.Status)
	}

	rosters, err := s.rosterRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("list rosters by match: %w", err)
	}
	if len(rosters) == 0 {
		return nil, fmt.Errorf("%w: match=%s", ErrNoTeamsFound, matchID)
	}
	sort.SliceStable(rosters, func(i, j int) bool {
		if !rosters[i].CreatedAt.Equal(rosters[j].CreatedAt) {
			return rosters[i].CreatedAt.Before(rosters[j].CreatedAt)
		}
		return rosters[i].ID < rosters[j].ID
	})

	results := make([]scoring.ScoredTeam, len(rosters))
	done := make([]bool, len(rosters))
	pending := make([]fantasy.Roster, 0, len(rosters))
	for idx, roster := range rosters {
		stored, scored, err := s.scoreRepo.GetScoredTeam(ctx, roster.ID)
		if err != nil {
			return nil, fmt.Errorf("get scored team roster=%s: %w", roster.ID, err)
		}
		if scored {
			results[idx] = stored
			done[idx] = true
			continue
		}
		pending = append(pending, roster)
	}

	computed, err := s.scoreRosters(ctx, item, pending)
	if err != nil {
		return nil, err
	}

	s.commitGate.Lock()
	defer s.commitGate.Unlock()

	if committer, ok := s.scoreRepo.(scoring.MatchCommitter); ok {
		return s.commitMatch(ctx, committer, matchID, rosters, results, done, computed)
	}

	scoredIDs := make([]string, 0, len(rosters))
	for idx := range rosters {
		if done[idx] {
			scoredIDs = append(scoredIDs, rosters[idx].ID)
		}
	}

	scoredAt := s.now().UTC()
	for idx, roster := range rosters {
		if done[idx] {
			continue
		}

		team := computed[roster.ID]
		team.ScoredAt = scoredAt
		err := s.scoreRepo.SaveScoredTeam(ctx, team)
		if errors.Is(err, scoring.ErrAlreadyScored) {
			stored, _, getErr := s.scoreRepo.GetScoredTeam(ctx, roster.ID)
			if getErr == nil {
				team = stored
				err = nil
			}
		}
		if err != nil {
			s.invalidateLeaderboards(ctx)
			return compact(results, done), &PartialFinalizeError{
				MatchID: matchID,
				Scored:  scoredIDs,
				Failed:  []string{roster.ID},
				Pending: pendingIDs(rosters[idx+1:], done[idx+1:]),
				Cause:   err,
			}
		}

		results[idx] = team
		done[idx] = true
		scoredIDs = append(scoredIDs, roster.ID)
	}

	ok, err := s.matchRepo.UpdateStatus(ctx, matchID, match.StatusLive, match.StatusCompleted)
	s.invalidateLeaderboards(ctx)
	if err != nil {
		return results, fmt.Errorf("%w: mark match=%s completed: %w", ErrPersistence, matchID, err)
	}
	if !ok {
		return results, fmt.Errorf("%w: match=%s left live state during finalize", ErrConflict, matchID)
	}

	return results, nil
}

// commitMatch hands every pending team and the completion to a transactional
// store. On failure nothing of this run is visible and the match stays live.
func (s *ScoringService) commitMatch(
	ctx context.Context,
	committer scoring.MatchCommitter,
	matchID string,
	rosters []fantasy.Roster,
	results []scoring.ScoredTeam,
	done []bool,
	computed map[string]scoring.ScoredTeam,
) ([]scoring.ScoredTeam, error) {
	scoredAt := s.now().UTC()
	teams := make([]scoring.ScoredTeam, 0, len(rosters))
	for idx, roster := range rosters {
		if done[idx] {
			continue
		}
		team := computed[roster.ID]
		team.ScoredAt = scoredAt
		results[idx] = team
		teams = append(teams, team)
	}

	ok, err := committer.CommitMatch(ctx, matchID, teams, scoredAt)
	s.invalidateLeaderboards(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: commit match=%s: %w", ErrPersistence, matchID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: match=%s left live state during finalize", ErrConflict, matchID)
	}
	return results, nil
}

// scoreRosters fans scoring out to a worker pool. The engine is pure so the
// only shared state is the result map guarded by mu.
func (s *ScoringService) scoreRosters(ctx context.Context, item match.Match, rosters []fantasy.Roster) (map[string]scoring.ScoredTeam, error) {
	out := make(map[string]scoring.ScoredTeam, len(rosters))
	if len(rosters) == 0 {
		return out, nil
	}

	pool, err := s.playerRepo.ListByMatch(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("list players by match: %w", err)
	}
	players := make(map[string]player.Player, len(pool))
	for _, p := range pool {
		players[p.ID] = p
	}

	referenced := make([]player.Player, 0, len(players))
	seen := make(map[string]struct{}, len(players))
	for _, roster := range rosters {
		for _, id := range roster.PlayerIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			if p, ok := players[id]; ok {
				referenced = append(referenced, p)
			}
		}
	}
	sort.Slice(referenced, func(i, j int) bool { return referenced[i].ID < referenced[j].ID })

	performances := s.resolver.Resolve(ctx, item, referenced)

	workers, err := ants.NewPool(s.workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer workers.Release()

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, roster := range rosters {
		wg.Add(1)
		if err := workers.Submit(func() {
			defer wg.Done()
			team := s.engine.Score(roster, players, performances)
			mu.Lock()
			out[roster.ID] = team
			mu.Unlock()
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit scoring task: %w", err)
		}
	}
	wg.Wait()

	return out, nil
}

// GetLeaderboard ranks users by cumulative points for ScopeGlobal and rosters
// of one match for ScopePerMatch.
func (s *ScoringService) GetLeaderboard(ctx context.Context, scope leaderboard.Scope, matchID string) ([]leaderboard.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.GetLeaderboard", attribute.String("leaderboard.scope", string(scope)))
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	var key string
	var load func(context.Context) ([]leaderboard.Entry, error)
	switch scope {
	case leaderboard.ScopeGlobal:
		key = leaderboardCachePrefix + "global"
		load = s.loadGlobalLeaderboard
	case leaderboard.ScopePerMatch:
		if matchID == "" {
			return nil, fmt.Errorf("%w: match id is required", ErrInvalidInput)
		}
		_, exists, err := s.matchRepo.GetByID(ctx, matchID)
		if err != nil {
			return nil, fmt.Errorf("get match by id: %w", err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
		}
		key = leaderboardCachePrefix + "match:" + matchID
		load = func(ctx context.Context) ([]leaderboard.Entry, error) {
			return s.loadMatchLeaderboard(ctx, matchID)
		}
	default:
		return nil, fmt.Errorf("%w: unknown leaderboard scope %q", ErrInvalidInput, scope)
	}

	s.commitGate.RLock()
	defer s.commitGate.RUnlock()

	return s.cachedLeaderboard(ctx, key, load)
}

// cachedLeaderboard expects the caller to hold commitGate for reading.
func (s *ScoringService) cachedLeaderboard(ctx context.Context, key string, load func(context.Context) ([]leaderboard.Entry, error)) ([]leaderboard.Entry, error) {
	if s.cache == nil {
		return load(ctx)
	}

	value, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return load(ctx)
	})
	if err != nil {
		return nil, err
	}
	entries, _ := value.([]leaderboard.Entry)
	return append([]leaderboard.Entry(nil), entries...), nil
}

func (s *ScoringService) loadGlobalLeaderboard(ctx context.Context) ([]leaderboard.Entry, error) {
	totals, err := s.scoreRepo.ListUserTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list user totals: %w", err)
	}

	entries := make([]leaderboard.Entry, 0, len(totals))
	for _, total := range totals {
		entries = append(entries, leaderboard.Entry{
			EntityID: total.UserID,
			UserID:   total.UserID,
			Points:   total.Points,
		})
	}

	return leaderboard.Rank(entries), nil
}

func (s *ScoringService) loadMatchLeaderboard(ctx context.Context, matchID string) ([]leaderboard.Entry, error) {
	teams, err := s.scoreRepo.ListScoredTeamsByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("list scored teams by match: %w", err)
	}
	rosters, err := s.rosterRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("list rosters by match: %w", err)
	}
	names := make(map[string]string, len(rosters))
	for _, roster := range rosters {
		names[roster.ID] = roster.Name
	}

	entries := make([]leaderboard.Entry, 0, len(teams))
	for _, team := range teams {
		entries = append(entries, leaderboard.Entry{
			EntityID: team.RosterID,
			UserID:   team.UserID,
			Name:     names[team.RosterID],
			Points:   team.Total,
		})
	}

	return leaderboard.Rank(entries), nil
}

// GetScoredTeam returns the stored result of a roster, if it was scored.
func (s *ScoringService) GetScoredTeam(ctx context.Context, rosterID string) (scoring.ScoredTeam, bool, error) {
	rosterID = strings.TrimSpace(rosterID)
	if rosterID == "" {
		return scoring.ScoredTeam{}, false, fmt.Errorf("%w: roster id is required", ErrInvalidInput)
	}

	s.commitGate.RLock()
	defer s.commitGate.RUnlock()

	team, exists, err := s.scoreRepo.GetScoredTeam(ctx, rosterID)
	if err != nil {
		return scoring.ScoredTeam{}, false, fmt.Errorf("get scored team: %w", err)
	}
	return team, exists, nil
}

// GetUserPoints returns cumulative points and global rank. A user with no
// scored roster has zero points and rank zero.
func (s *ScoringService) GetUserPoints(ctx context.Context, userID string) (UserPoints, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return UserPoints{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	s.commitGate.RLock()
	defer s.commitGate.RUnlock()

	total, exists, err := s.scoreRepo.GetUserTotal(ctx, userID)
	if err != nil {
		return UserPoints{}, fmt.Errorf("get user total: %w", err)
	}
	if !exists {
		return UserPoints{UserID: userID}, nil
	}

	entries, err := s.cachedLeaderboard(ctx, leaderboardCachePrefix+"global", s.loadGlobalLeaderboard)
	if err != nil {
		return UserPoints{}, err
	}
	points := UserPoints{UserID: userID, Points: total.Points}
	for _, entry := range entries {
		if entry.UserID == userID {
			points.Rank = entry.Rank
			break
		}
	}
	return points, nil
}

func (s *ScoringService) invalidateLeaderboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.DeletePrefix(ctx, leaderboardCachePrefix)
}

func compact(results []scoring.ScoredTeam, done []bool) []scoring.ScoredTeam {
	out := make([]scoring.ScoredTeam, 0, len(results))
	for idx := range results {
		if done[idx] {
			out = append(out, results[idx])
		}
	}
	return out
}

func pendingIDs(rosters []fantasy.Roster, done []bool) []string {
	out := make([]string, 0, len(rosters))
	for idx, roster := range rosters {
		if !done[idx] {
			out = append(out, roster.ID)
		}
	}
	return out
}
