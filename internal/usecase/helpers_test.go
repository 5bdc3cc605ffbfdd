package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasy"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/player"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
)

type staticIDGenerator struct {
	id string
}

func (g staticIDGenerator) NewID() (string, error) {
	return g.id, nil
}

type sequenceIDGenerator struct {
	prefix string
	next   atomic.Int64
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	return fmt.Sprintf("%s-%03d", g.prefix, g.next.Add(1)), nil
}

// demoXI is a legal roster from the seeded India vs Australia pool costing 98.
var demoXI = []string{
	"ind-kl-rahul",
	"ind-shubman-gill",
	"ind-rohit-sharma",
	"aus-marnus-labuschagne",
	"aus-travis-head",
	"ind-hardik-pandya",
	"aus-glenn-maxwell",
	"ind-jasprit-bumrah",
	"aus-josh-hazlewood",
	"aus-adam-zampa",
	"ind-kuldeep-yadav",
}

type testEnv struct {
	matches *memory.MatchRepository
	players *memory.PlayerRepository
	rosters *memory.RosterRepository
	scores  *memory.ScoringRepository
}

func newTestEnv(status match.Status) testEnv {
	seeded := memory.SeedMatches(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	for i := range seeded {
		seeded[i].Status = status
	}

	return testEnv{
		matches: memory.NewMatchRepository(seeded),
		players: memory.NewPlayerRepository(memory.SeedPlayers()),
		rosters: memory.NewRosterRepository(),
		scores:  memory.NewScoringRepository(),
	}
}

func (e testEnv) addRoster(t *testing.T, id, userID, captainID, viceID string, createdAt time.Time) fantasy.Roster {
	t.Helper()

	roster := fantasy.Roster{
		ID:            id,
		UserID:        userID,
		MatchID:       memory.MatchIDDemoIndiaAustralia,
		Name:          "XI " + id,
		PlayerIDs:     append([]string(nil), demoXI...),
		CaptainID:     captainID,
		ViceCaptainID: viceID,
		CreatedAt:     createdAt,
	}
	if err := e.rosters.Create(context.Background(), roster); err != nil {
		t.Fatalf("create roster %s: %v", id, err)
	}
	return roster
}

func (e testEnv) scoringService(generator scoring.PerformanceGenerator) *ScoringService {
	logger := logging.NewNop()
	resolver := NewPerformanceResolver(nil, generator, logger)
	return NewScoringService(
		e.matches,
		e.players,
		e.rosters,
		e.scores,
		scoring.NewEngine(scoring.DefaultRules()),
		resolver,
		logger,
	)
}

// pointsGenerator returns fixed base points per player id and def otherwise.
func pointsGenerator(points map[string]int, def int) scoring.PerformanceGenerator {
	return scoring.GeneratorFunc(func(item player.Player) scoring.PerformanceRecord {
		value, ok := points[item.ID]
		if !ok {
			value = def
		}
		return scoring.PerformanceRecord{PlayerID: item.ID, FixedPoints: &value}
	})
}

// flakyScoringRepository fails SaveScoredTeam for one roster while failing is set.
type flakyScoringRepository struct {
	*memory.ScoringRepository

	mu       sync.Mutex
	failOn   string
	failing  bool
	attempts int
}

func (r *flakyScoringRepository) SaveScoredTeam(ctx context.Context, team scoring.ScoredTeam) error {
	r.mu.Lock()
	r.attempts++
	fail := r.failing && team.RosterID == r.failOn
	r.mu.Unlock()
	if fail {
		return errDiskFull
	}
	return r.ScoringRepository.SaveScoredTeam(ctx, team)
}

func (r *flakyScoringRepository) heal() {
	r.mu.Lock()
	r.failing = false
	r.mu.Unlock()
}

var errDiskFull = fmt.Errorf("disk full")

type recordingMetrics struct {
	mu        sync.Mutex
	finalize  []string
	fallbacks map[string]int
	rosters   []string
	started   []string
}

func (m *recordingMetrics) ObserveFinalize(outcome string, _ int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finalize = append(m.finalize, outcome)
}

func (m *recordingMetrics) IncPerformanceFallback(reason string, players int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fallbacks == nil {
		m.fallbacks = make(map[string]int)
	}
	m.fallbacks[reason] += players
}

func (m *recordingMetrics) IncRosterSubmission(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rosters = append(m.rosters, outcome)
}

func (m *recordingMetrics) IncMatchStarted(trigger string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, trigger)
}
