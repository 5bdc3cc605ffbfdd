package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/player"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const (
	matchListLimit       = 20
	defaultIngestWorkers = 4
)

// MatchFeed is the external live-match catalogue.
type MatchFeed interface {
	CurrentMatches(ctx context.Context) ([]match.Match, error)
	MatchSquad(ctx context.Context, item match.Match) ([]player.Player, error)
}

type MatchService struct {
	matchRepo     match.Repository
	playerRepo    player.Repository
	feed          MatchFeed
	metrics       MetricsRecorder
	logger        *logging.Logger
	ingestWorkers int
	now           func() time.Time
}

func NewMatchService(
	matchRepo match.Repository,
	playerRepo player.Repository,
	feed MatchFeed,
	logger *logging.Logger,
) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}

	return &MatchService{
		matchRepo:     matchRepo,
		playerRepo:    playerRepo,
		feed:          feed,
		metrics:       noopMetrics{},
		logger:        logger,
		ingestWorkers: defaultIngestWorkers,
		now:           time.Now,
	}
}

func (s *MatchService) SetMetrics(metrics MetricsRecorder) {
	if metrics != nil {
		s.metrics = metrics
	}
}

// ListMatches refreshes from the feed when one is configured and serves the
// stored catalogue, newest start first. Feed failures only log.
func (s *MatchService) ListMatches(ctx context.Context) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListMatches")
	defer span.End()

	if s.feed != nil {
		if _, err := s.SyncFeed(ctx); err != nil {
			s.logger.WarnContext(ctx, "match feed sync failed, serving stored matches", "error", err)
		}
	}

	items, err := s.matchRepo.List(ctx, matchListLimit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	return items, nil
}

// SyncFeed upserts feed matches and ingests player pools for matches that
// have none yet. The repository merges statuses on upsert, so a feed match
// never moves a stored match backwards even when a start or finalize commits
// mid-sync. The feed alone cannot complete a match.
func (s *MatchService) SyncFeed(ctx context.Context) (int, error) {
	if s.feed == nil {
		return 0, nil
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.SyncFeed")
	defer span.End()

	items, err := s.feed.CurrentMatches(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: fetch current matches: %w", ErrDependencyUnavailable, err)
	}

	needSquad := make([]match.Match, 0, len(items))
	for _, item := range items {
		item.Status = feedStatus(item.Status)
		item.CompletedAt = nil
		if err := item.Validate(); err != nil {
			s.logger.WarnContext(ctx, "skip invalid feed match", "match_id", item.ID, "error", err)
			continue
		}
		if err := s.matchRepo.Upsert(ctx, item); err != nil {
			return 0, fmt.Errorf("upsert match id=%s: %w", item.ID, err)
		}

		existing, err := s.playerRepo.ListByMatch(ctx, item.ID)
		if err != nil {
			return 0, fmt.Errorf("list players match=%s: %w", item.ID, err)
		}
		if len(existing) == 0 {
			needSquad = append(needSquad, item)
		}
	}

	if err := s.ingestSquads(ctx, needSquad); err != nil {
		return len(items), err
	}

	span.SetAttributes(attribute.Int("feed.matches", len(items)), attribute.Int("feed.squads", len(needSquad)))
	return len(items), nil
}

func (s *MatchService) ingestSquads(ctx context.Context, items []match.Match) error {
	if len(items) == 0 {
		return nil
	}

	workers := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(s.ingestWorkers)
	for _, item := range items {
		workers.Go(func(ctx context.Context) error {
			squad, err := s.feed.MatchSquad(ctx, item)
			if err != nil {
				return fmt.Errorf("fetch squad match=%s: %w", item.ID, err)
			}

			valid := make([]player.Player, 0, len(squad))
			for _, p := range squad {
				if err := p.Validate(); err != nil {
					s.logger.WarnContext(ctx, "skip invalid feed player", "match_id", item.ID, "player_id", p.ID, "error", err)
					continue
				}
				valid = append(valid, p)
			}
			if err := s.playerRepo.UpsertMany(ctx, valid); err != nil {
				return fmt.Errorf("upsert squad match=%s: %w", item.ID, err)
			}
			return nil
		})
	}

	return workers.Wait()
}

func (s *MatchService) GetMatch(ctx context.Context, matchID string) (match.Match, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match by id: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	return item, nil
}

// ListPlayers returns the match pool ordered by base points descending.
func (s *MatchService) ListPlayers(ctx context.Context, matchID string) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListPlayers", attribute.String("match.id", matchID))
	defer span.End()

	if _, err := s.GetMatch(ctx, matchID); err != nil {
		return nil, err
	}

	items, err := s.playerRepo.ListByMatch(ctx, strings.TrimSpace(matchID))
	if err != nil {
		return nil, fmt.Errorf("list players by match: %w", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].BasePoints != items[j].BasePoints {
			return items[i].BasePoints > items[j].BasePoints
		}
		return items[i].ID < items[j].ID
	})

	return items, nil
}

// StartMatch moves an upcoming match to live on operator request.
func (s *MatchService) StartMatch(ctx context.Context, matchID string) (match.Match, error) {
	item, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}
	if !item.Status.CanTransitionTo(match.StatusLive) {
		return match.Match{}, fmt.Errorf("%w: match=%s status=%s cannot start", ErrConflict, item.ID, item.Status)
	}

	ok, err := s.matchRepo.UpdateStatus(ctx, item.ID, match.StatusUpcoming, match.StatusLive)
	if err != nil {
		return match.Match{}, fmt.Errorf("%w: start match id=%s: %w", ErrPersistence, item.ID, err)
	}
	if !ok {
		return match.Match{}, fmt.Errorf("%w: match=%s changed status concurrently", ErrConflict, item.ID)
	}

	s.metrics.IncMatchStarted("operator")
	s.logger.InfoContext(ctx, "match started", "match_id", item.ID, "trigger", "operator")

	item.Status = match.StatusLive
	return item, nil
}

// StartDueMatches moves every upcoming match whose start time has passed to
// live and returns their ids.
func (s *MatchService) StartDueMatches(ctx context.Context) ([]string, error) {
	items, err := s.matchRepo.List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	now := s.now().UTC()
	started := make([]string, 0)
	for _, item := range items {
		if item.Status != match.StatusUpcoming || item.StartAt.IsZero() || item.StartAt.After(now) {
			continue
		}

		ok, err := s.matchRepo.UpdateStatus(ctx, item.ID, match.StatusUpcoming, match.StatusLive)
		if err != nil {
			return started, fmt.Errorf("%w: start match id=%s: %w", ErrPersistence, item.ID, err)
		}
		if !ok {
			continue
		}

		s.metrics.IncMatchStarted("schedule")
		s.logger.InfoContext(ctx, "match started", "match_id", item.ID, "trigger", "schedule", "start_at", item.StartAt)
		started = append(started, item.ID)
	}

	return started, nil
}

// feedStatus caps feed statuses at live because completion requires finalize.
func feedStatus(fromFeed match.Status) match.Status {
	switch {
	case fromFeed == match.StatusCompleted:
		return match.StatusLive
	case !fromFeed.Valid():
		return match.StatusUpcoming
	default:
		return fromFeed
	}
}
