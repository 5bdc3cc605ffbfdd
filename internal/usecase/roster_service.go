package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasy"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/player"
	idgen "github.com/riskibarqy/fantasy-cricket/internal/platform/id"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// SubmitRosterInput is the incoming payload for a new roster.
type SubmitRosterInput struct {
	UserID        string
	MatchID       string
	Name          string
	PlayerIDs     []string
	CaptainID     string
	ViceCaptainID string
}

type RosterService struct {
	matchRepo  match.Repository
	playerRepo player.Repository
	rosterRepo fantasy.Repository
	rules      fantasy.Rules
	idGen      idgen.Generator
	metrics    MetricsRecorder
	logger     *logging.Logger
	now        func() time.Time
}

func NewRosterService(
	matchRepo match.Repository,
	playerRepo player.Repository,
	rosterRepo fantasy.Repository,
	rules fantasy.Rules,
	idGen idgen.Generator,
	logger *logging.Logger,
) *RosterService {
	if logger == nil {
		logger = logging.Default()
	}

	return &RosterService{
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		rosterRepo: rosterRepo,
		rules:      rules,
		idGen:      idGen,
		metrics:    noopMetrics{},
		logger:     logger,
		now:        time.Now,
	}
}

func (s *RosterService) SetMetrics(metrics MetricsRecorder) {
	if metrics != nil {
		s.metrics = metrics
	}
}

// SubmitRoster validates and stores a new roster. Rule violations are
// returned as ErrInvalidInput wrapping a *fantasy.RejectionError.
func (s *RosterService) SubmitRoster(ctx context.Context, input SubmitRosterInput) (fantasy.Roster, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.SubmitRoster", attribute.String("match.id", input.MatchID))
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.MatchID = strings.TrimSpace(input.MatchID)
	input.Name = strings.TrimSpace(input.Name)
	input.CaptainID = strings.TrimSpace(input.CaptainID)
	input.ViceCaptainID = strings.TrimSpace(input.ViceCaptainID)

	if input.UserID == "" {
		return fantasy.Roster{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.MatchID == "" {
		return fantasy.Roster{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if input.Name == "" {
		return fantasy.Roster{}, fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}
	if input.CaptainID == "" || input.ViceCaptainID == "" {
		return fantasy.Roster{}, fmt.Errorf("%w: captain and vice-captain are required", ErrInvalidInput)
	}

	playerIDs, err := trimPlayerIDs(input.PlayerIDs)
	if err != nil {
		return fantasy.Roster{}, err
	}

	item, exists, err := s.matchRepo.GetByID(ctx, input.MatchID)
	if err != nil {
		return fantasy.Roster{}, fmt.Errorf("get match by id: %w", err)
	}
	if !exists {
		return fantasy.Roster{}, fmt.Errorf("%w: match=%s", ErrNotFound, input.MatchID)
	}
	if !item.AcceptsRosters() {
		s.metrics.IncRosterSubmission("closed")
		return fantasy.Roster{}, fmt.Errorf("%w: match=%s status=%s", ErrSubmissionsClosed, item.ID, item.Status)
	}

	candidates, err := s.loadCandidates(ctx, input.MatchID, playerIDs)
	if err != nil {
		return fantasy.Roster{}, err
	}

	if err := fantasy.ValidateRoster(candidates, input.CaptainID, input.ViceCaptainID, s.rules); err != nil {
		var rejection *fantasy.RejectionError
		if errors.As(err, &rejection) {
			s.metrics.IncRosterSubmission(strings.ToLower(string(rejection.Reason)))
			s.logger.WarnContext(ctx, "roster rejected",
				"user_id", input.UserID,
				"match_id", input.MatchID,
				"reason", string(rejection.Reason),
			)
		}
		return fantasy.Roster{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.ensureUniqueName(ctx, input.UserID, input.MatchID, input.Name); err != nil {
		return fantasy.Roster{}, err
	}

	rosterID, err := s.idGen.NewID()
	if err != nil {
		return fantasy.Roster{}, fmt.Errorf("generate roster id: %w", err)
	}

	roster := fantasy.Roster{
		ID:            rosterID,
		UserID:        input.UserID,
		MatchID:       input.MatchID,
		Name:          input.Name,
		PlayerIDs:     playerIDs,
		CaptainID:     input.CaptainID,
		ViceCaptainID: input.ViceCaptainID,
		CreatedAt:     s.now().UTC(),
	}
	if err := roster.ValidateBasic(); err != nil {
		return fantasy.Roster{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.rosterRepo.Create(ctx, roster); err != nil {
		return fantasy.Roster{}, fmt.Errorf("%w: create roster: %w", ErrPersistence, err)
	}

	s.metrics.IncRosterSubmission("accepted")
	s.logger.InfoContext(ctx, "roster submitted",
		"roster_id", roster.ID,
		"user_id", roster.UserID,
		"match_id", roster.MatchID,
	)

	return roster, nil
}

// ListUserRosters returns a user's rosters, newest first. An empty matchID
// lists across all matches.
func (s *RosterService) ListUserRosters(ctx context.Context, userID, matchID string) ([]fantasy.Roster, error) {
	userID = strings.TrimSpace(userID)
	matchID = strings.TrimSpace(matchID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	items, err := s.rosterRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list rosters by user: %w", err)
	}

	out := make([]fantasy.Roster, 0, len(items))
	for _, item := range items {
		if matchID != "" && item.MatchID != matchID {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

// GetRoster returns a roster owned by userID. Rosters of other users are
// reported as not found.
func (s *RosterService) GetRoster(ctx context.Context, userID, rosterID string) (fantasy.Roster, error) {
	userID = strings.TrimSpace(userID)
	rosterID = strings.TrimSpace(rosterID)
	if userID == "" || rosterID == "" {
		return fantasy.Roster{}, fmt.Errorf("%w: user id and roster id are required", ErrInvalidInput)
	}

	item, exists, err := s.rosterRepo.GetByID(ctx, rosterID)
	if err != nil {
		return fantasy.Roster{}, fmt.Errorf("get roster by id: %w", err)
	}
	if !exists || item.UserID != userID {
		return fantasy.Roster{}, fmt.Errorf("%w: roster=%s", ErrNotFound, rosterID)
	}

	return item, nil
}

// loadCandidates resolves ids against the match pool keeping request order
// and duplicates so the validator sees the selection as submitted.
func (s *RosterService) loadCandidates(ctx context.Context, matchID string, playerIDs []string) ([]player.Player, error) {
	distinct := make([]string, 0, len(playerIDs))
	seen := make(map[string]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}

	pool, err := s.playerRepo.GetByIDs(ctx, matchID, distinct)
	if err != nil {
		return nil, fmt.Errorf("get players by ids: %w", err)
	}
	byID := make(map[string]player.Player, len(pool))
	for _, item := range pool {
		byID[item.ID] = item
	}

	out := make([]player.Player, 0, len(playerIDs))
	for _, id := range playerIDs {
		item, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: player=%s is not in match=%s pool", ErrNotFound, id, matchID)
		}
		out = append(out, item)
	}

	return out, nil
}

func (s *RosterService) ensureUniqueName(ctx context.Context, userID, matchID, name string) error {
	items, err := s.rosterRepo.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list rosters by user: %w", err)
	}
	for _, item := range items {
		if item.MatchID == matchID && strings.EqualFold(item.Name, name) {
			return fmt.Errorf("%w: roster name %q already used for match=%s", ErrConflict, name, matchID)
		}
	}
	return nil
}

func trimPlayerIDs(ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: player ids are required", ErrInvalidInput)
	}

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("%w: player id must not be empty", ErrInvalidInput)
		}
		out = append(out, id)
	}

	return out, nil
}
