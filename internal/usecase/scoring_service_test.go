package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/leaderboard"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/cache"
	"github.com/stretchr/testify/require"
)

var rosterTime = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func TestScoringService_FinalizeMatch_EndToEndTotal(t *testing.T) {
	t.Parallel()

	env := newTestEnv(match.StatusLive)
	env.addRoster(t, "r1", "user-1", "ind-rohit-sharma", "aus-glenn-maxwell", rosterTime)
	generator := pointsGenerator(map[string]int{"ind-rohit-sharma": 40, "aus-glenn-maxwell": 30}, 20)
	service := env.scoringService(generator)
	metrics := &recordingMetrics{}
	service.SetMetrics(metrics)

	teams, err := service.FinalizeMatch(context.Background(), memory.MatchIDDemoIndiaAustralia)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	if teams[0].Total != 305 {
		t.Fatalf("expected total 305, got %d", teams[0].Total)
	}

	item, _, _ := env.matches.GetByID(context.Background(), memory.MatchIDDemoIndiaAustralia)
	if item.Status != match.StatusCompleted {
		t.Fatalf("expected completed match, got %s", item.Status)
	}
	points, err := service.GetUserPoints(context.Background(), "user-1")
	require.NoError(t, err)
	if points.Points != 305 || points.Rank != 1 {
		t.Fatalf("unexpected user points: %+v", points)
	}
	if len(metrics.finalize) != 1 || metrics.finalize[0] != finalizeOutcomeCompleted {
		t.Fatalf("unexpected finalize metrics: %v", metrics.finalize)
	}
}

func TestScoringService_FinalizeMatch_TwiceConflictsAndKeepsTotals(t *testing.T) {
	t.Parallel()

	env := newTestEnv(match.StatusLive)
	env.addRoster(t, "r1", "user-1", "ind-rohit-sharma", "aus-glenn-maxwell", rosterTime)
	env.addRoster(t, "r2", "user-2", "ind-jasprit-bumrah", "ind-kl-rahul", rosterTime.Add(time.Minute))
	service := env.scoringService(pointsGenerator(nil, 10))

	first, err := service.FinalizeMatch(context.Background(), memory.MatchIDDemoIndiaAustralia)
	require.NoError(t, err)
	require.Len(t, first, 2)
	before, err := env.scores.ListUserTotals(context.Background())
	require.NoError(t, err)

	_, err = service.FinalizeMatch(context.Background(), memory.MatchIDDemoIndiaAustralia)
	if !errors.Is(err, ErrMatchAlreadyCompleted) || !errors.Is(err, ErrConflict) {
		t.Fatalf("expected already completed conflict, got %v", err)
	}

	after, err := env.scores.ListUserTotals(context.Background())
	require.NoError(t, err)
	require.Equal(t, before, after)
	// 10 * (2 + 1.5 + 9) = 125 per roster.
	for _, total := range after {
		if total.Points != 125 {
			t.Fatalf("unexpected total for %s: %d", total.UserID, total.Points)
		}
	}
}

func TestScoringService_FinalizeMatch_ConcurrentCallsCreditOnce(t *testing.T) {
	t.Parallel()

	env := newTestEnv(match.StatusLive)
	env.addRoster(t, "r1", "user-1", "ind-rohit-sharma", "aus-glenn-maxwell", rosterTime)
	service := env.scoringService(pointsGenerator(nil, 10))

	const callers = 4
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = service.FinalizeMatch(context.Background(), memory.MatchIDDemoIndiaAustralia)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrMatchAlreadyCompleted):
		default:
			t.Fatalf("unexpected finalize error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one successful finalize, got %d", succeeded)
	}

	total, _, err := env.scores.GetUserTotal(context.Background(), "user-1")
	require.NoError(t, err)
	if total.Points != 125 {
		t.Fatalf("expected single credit of 125, got %d", total.Points)
	}
}

func TestScoringService_FinalizeMatch_PartialFailureThenRetry(t *testing.T) {
	t.Parallel()

	env := newTestEnv(match.StatusLive)
	env.addRoster(t, "r1", "user-1", "ind-rohit-sharma", "aus-glenn-maxwell", rosterTime)
	env.addRoster(t, "r2", "user-2", "ind-rohit-sharma", "aus-glenn-maxwell", rosterTime.Add(time.Minute))
	env.addRoster(t, "r3", "user-1", "ind-jasprit-bumrah", "ind-kl-rahul", rosterTime.Add(2*time.Minute))

	flaky := &flakyScoringRepository{ScoringRepository: env.scores, failOn: "r2", failing: true}
	service := NewScoringService(env.matches, env.players, env.rosters, flaky,
		scoring.NewEngine(scoring.DefaultRules()),
		NewPerformanceResolver(nil, pointsGenerator(nil, 10), nil),
		nil,
	)

	teams, err := service.FinalizeMatch(context.Background(), memory.MatchIDDemoIndiaAustralia)
	var partial *PartialFinalizeError
	if !errors.As(err, &partial) {
		t.Fatalf("expected *PartialFinalizeError, got %v", err)
	}
	if !errors.Is(err, ErrPersistence) || !errors.Is(err, errDiskFull) {
		t.Fatalf("expected persistence failure wrapping cause, got %v", err)
	}
	require.Equal(t, []string{"r1"}, partial.Scored)
	require.Equal(t, []string{"r2"}, partial.Failed)
	require.Equal(t, []string{"r3"}, partial.Pending)
	require.Len(t, teams, 1)

	item, _, _ := env.matches.GetByID(context.Background(), memory.MatchIDDemoIndiaAustralia)
	if item.Status != match.StatusLive {
		t.Fatalf("match must stay live after partial finalize, got %s", item.Status)
	}

	flaky.heal()
	teams, err = service.FinalizeMatch(context.Background(), memory.MatchIDDemoIndiaAustralia)
	require.NoError(t, err)
	require.Len(t, teams, 3)

	user1, _, _ := flaky.GetUserTotal(context.Background(), "user-1")
	user2, _, _ := flaky.GetUserTotal(context.Background(), "user-2")
	if user1.Points != 250 || user2.Points != 125 {
		t.Fatalf("unexpected totals after retry: user-1=%d user-2=%d", user1.Points, user2.Points)
	}
}

// transactionalScoringRepository commits a whole match at once and can be told
// to fail the commit before anything is written.
type transactionalScoringRepository struct {
	*memory.ScoringRepository
	matches *memory.MatchRepository

	fail    error
	commits [][]string
}

func (r *transactionalScoringRepository) CommitMatch(ctx context.Context, matchID string, teams []scoring.ScoredTeam, _ time.Time) (bool, error) {
	ids := make([]string, 0, len(teams))
	for _, team := range teams {
		ids = append(ids, team.RosterID)
	}
	r.commits = append(r.commits, ids)
	if r.fail != nil {
		return false, r.fail
	}

	item, ok, err := r.matches.GetByID(ctx, matchID)
	if err != nil || !ok || item.Status != match.StatusLive {
		return false, err
	}
	for _, team := range teams {
		if err := r.SaveScoredTeam(ctx, team); err != nil && !errors.Is(err, scoring.ErrAlreadyScored) {
			return false, err
		}
	}
	return r.matches.UpdateStatus(ctx, matchID, match.StatusLive, match.StatusCompleted)
}

func TestScoringService_FinalizeMatch_TransactionalStoreIsAllOrNothing(t *testing.T) {
	t.Parallel()

	env := newTestEnv(match.StatusLive)
	env.addRoster(t, "r1", "user-1", "ind-rohit-sharma", "aus-glenn-maxwell", rosterTime)
	env.addRoster(t, "r2", "user-2", "ind-rohit-sharma", "aus-glenn-maxwell", rosterTime.Add(time.Minute))
	env.addRoster(t, "r3", "user-1", "ind-jasprit-bumrah", "ind-kl-rahul", rosterTime.Add(2*time.Minute))

	repo := &transactionalScoringRepository{ScoringRepository: env.scores, matches: env.matches, fail: errDiskFull}
	service := NewScoringService(env.matches, env.players, env.rosters, repo,
		scoring.NewEngine(scoring.DefaultRules()),
		NewPerformanceResolver(nil, pointsGenerator(nil, 10), nil),
		nil,
	)
	metrics := &recordingMetrics{}
	service.SetMetrics(metrics)
	ctx := context.Background()

	teams, err := service.FinalizeMatch(ctx, memory.MatchIDDemoIndiaAustralia)
	if !errors.Is(err, ErrPersistence) || !errors.Is(err, errDiskFull) {
		t.Fatalf("expected persistence failure wrapping cause, got %v", err)
	}
	var partial *PartialFinalizeError
	if errors.As(err, &partial) {
		t.Fatalf("transactional commit must not report a partial finalize: %v", partial)
	}
	require.Empty(t, teams)

	if _, ok, _ := repo.GetUserTotal(ctx, "user-1"); ok {
		t.Fatalf("no owner may be credited after a failed commit")
	}
	item, _, _ := env.matches.GetByID(ctx, memory.MatchIDDemoIndiaAustralia)
	if item.Status != match.StatusLive {
		t.Fatalf("match must stay live after failed commit, got %s", item.Status)
	}

	repo.fail = nil
	teams, err = service.FinalizeMatch(ctx, memory.MatchIDDemoIndiaAustralia)
	require.NoError(t, err)
	require.Len(t, teams, 3)
	require.Equal(t, [][]string{{"r1", "r2", "r3"}, {"r1", "r2", "r3"}}, repo.commits)

	user1, _, _ := repo.GetUserTotal(ctx, "user-1")
	user2, _, _ := repo.GetUserTotal(ctx, "user-2")
	if user1.Points != 250 || user2.Points != 125 {
		t.Fatalf("unexpected totals after commit: user-1=%d user-2=%d", user1.Points, user2.Points)
	}
	item, _, _ = env.matches.GetByID(ctx, memory.MatchIDDemoIndiaAustralia)
	if item.Status != match.StatusCompleted {
		t.Fatalf("expected completed match, got %s", item.Status)
	}
	require.Equal(t, []string{finalizeOutcomeFailed, finalizeOutcomeCompleted}, metrics.finalize)
}

func TestScoringService_FinalizeMatch_Preconditions(t *testing.T) {
	t.Parallel()

	upcoming := newTestEnv(match.StatusUpcoming)
	upcoming.addRoster(t, "r1", "user-1", "ind-rohit-sharma", "aus-glenn-maxwell", rosterTime)
	_, err := upcoming.scoringService(nil).FinalizeMatch(context.Background(), memory.MatchIDDemoIndiaAustralia)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for upcoming match, got %v", err)
	}

	empty := newTestEnv(match.StatusLive)
	_, err = empty.scoringService(nil).FinalizeMatch(context.Background(), memory.MatchIDDemoIndiaAustralia)
	if !errors.Is(err, ErrNoTeamsFound) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNoTeamsFound, got %v", err)
	}

	_, err = empty.scoringService(nil).FinalizeMatch(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestScoringService_GetLeaderboard_RanksAndRefreshesAfterFinalize(t *testing.T) {
	t.Parallel()

	env := newTestEnv(match.StatusLive)
	env.addRoster(t, "r1", "user-b", "ind-rohit-sharma", "aus-glenn-maxwell", rosterTime)
	env.addRoster(t, "r2", "user-a", "ind-rohit-sharma", "aus-glenn-maxwell", rosterTime.Add(time.Minute))
	env.addRoster(t, "r3", "user-c", "aus-adam-zampa", "ind-kl-rahul", rosterTime.Add(2*time.Minute))

	generator := pointsGenerator(map[string]int{"ind-rohit-sharma": 30, "aus-adam-zampa": 0}, 10)
	service := env.scoringService(generator)
	service.SetCache(cache.NewStore(time.Minute))

	before, err := service.GetLeaderboard(context.Background(), leaderboard.ScopeGlobal, "")
	require.NoError(t, err)
	require.Empty(t, before)

	_, err = service.FinalizeMatch(context.Background(), memory.MatchIDDemoIndiaAustralia)
	require.NoError(t, err)

	global, err := service.GetLeaderboard(context.Background(), leaderboard.ScopeGlobal, "")
	require.NoError(t, err)
	require.Len(t, global, 3)
	// r1, r2: 60 + 15 + 8*10 + 0 = 155. r3: 0 + 15 + 30 + 8*10 = 125.
	want := []leaderboard.Entry{
		{EntityID: "user-a", UserID: "user-a", Points: 155, Rank: 1},
		{EntityID: "user-b", UserID: "user-b", Points: 155, Rank: 1},
		{EntityID: "user-c", UserID: "user-c", Points: 125, Rank: 3},
	}
	require.Equal(t, want, global)

	perMatch, err := service.GetLeaderboard(context.Background(), leaderboard.ScopePerMatch, memory.MatchIDDemoIndiaAustralia)
	require.NoError(t, err)
	require.Len(t, perMatch, 3)
	if perMatch[0].EntityID != "r1" || perMatch[0].Name != "XI r1" || perMatch[2].Rank != 3 {
		t.Fatalf("unexpected per-match leaderboard: %+v", perMatch)
	}

	if _, err := service.GetLeaderboard(context.Background(), leaderboard.ScopePerMatch, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown match, got %v", err)
	}
	if _, err := service.GetLeaderboard(context.Background(), leaderboard.Scope("weekly"), ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown scope, got %v", err)
	}
}

func TestScoringService_GetUserPoints_UnscoredUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(match.StatusLive)
	points, err := env.scoringService(nil).GetUserPoints(context.Background(), "user-z")
	require.NoError(t, err)
	if points.Points != 0 || points.Rank != 0 {
		t.Fatalf("expected zero points for unscored user, got %+v", points)
	}
}

// totalLookupRepository counts direct balance reads.
type totalLookupRepository struct {
	*memory.ScoringRepository

	mu      sync.Mutex
	lookups int
}

func (r *totalLookupRepository) GetUserTotal(ctx context.Context, userID string) (scoring.UserTotal, bool, error) {
	r.mu.Lock()
	r.lookups++
	r.mu.Unlock()
	return r.ScoringRepository.GetUserTotal(ctx, userID)
}

func TestScoringService_GetUserPoints_ReadsStoredBalance(t *testing.T) {
	t.Parallel()

	env := newTestEnv(match.StatusLive)
	ctx := context.Background()
	require.NoError(t, env.scores.SaveScoredTeam(ctx, scoring.ScoredTeam{RosterID: "r1", UserID: "user-1", MatchID: "m1", Total: 50}))
	require.NoError(t, env.scores.SaveScoredTeam(ctx, scoring.ScoredTeam{RosterID: "r2", UserID: "user-2", MatchID: "m1", Total: 80}))
	require.NoError(t, env.scores.SaveScoredTeam(ctx, scoring.ScoredTeam{RosterID: "r3", UserID: "user-1", MatchID: "m2", Total: 45}))

	repo := &totalLookupRepository{ScoringRepository: env.scores}
	service := NewScoringService(env.matches, env.players, env.rosters, repo,
		scoring.NewEngine(scoring.DefaultRules()),
		NewPerformanceResolver(nil, pointsGenerator(nil, 10), nil),
		nil,
	)

	points, err := service.GetUserPoints(ctx, " user-1 ")
	require.NoError(t, err)
	require.Equal(t, UserPoints{UserID: "user-1", Points: 95, Rank: 1}, points)

	points, err = service.GetUserPoints(ctx, "user-2")
	require.NoError(t, err)
	require.Equal(t, UserPoints{UserID: "user-2", Points: 80, Rank: 2}, points)

	if repo.lookups != 2 {
		t.Fatalf("expected one balance lookup per call, got %d", repo.lookups)
	}
	if _, err := service.GetUserPoints(ctx, "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank user, got %v", err)
	}
}
