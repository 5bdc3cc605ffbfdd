package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasy"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/repository/memory"
	fantasymock "github.com/riskibarqy/fantasy-cricket/internal/mocks/domain/fantasy"
	matchmock "github.com/riskibarqy/fantasy-cricket/internal/mocks/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func newRosterService(env testEnv, id string) *RosterService {
	service := NewRosterService(
		env.matches,
		env.players,
		env.rosters,
		fantasy.DefaultRules(),
		staticIDGenerator{id: id},
		logging.NewNop(),
	)
	service.now = func() time.Time { return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC) }
	return service
}

func validInput() SubmitRosterInput {
	return SubmitRosterInput{
		UserID:        "user-1",
		MatchID:       memory.MatchIDDemoIndiaAustralia,
		Name:          "Mumbai Strikers",
		PlayerIDs:     append([]string(nil), demoXI...),
		CaptainID:     "ind-rohit-sharma",
		ViceCaptainID: "aus-glenn-maxwell",
	}
}

func TestRosterService_SubmitRoster_Success(t *testing.T) {
	t.Parallel()

	env := newTestEnv(match.StatusUpcoming)
	service := newRosterService(env, "roster-001")
	metrics := &recordingMetrics{}
	service.SetMetrics(metrics)

	got, err := service.SubmitRoster(context.Background(), validInput())
	if err != nil {
		t.Fatalf("submit roster: %v", err)
	}
	if got.ID != "roster-001" || got.UserID != "user-1" || len(got.PlayerIDs) != 11 {
		t.Fatalf("unexpected roster: %+v", got)
	}
	if !got.CreatedAt.Equal(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected created at: %s", got.CreatedAt)
	}

	stored, exists, err := env.rosters.GetByID(context.Background(), "roster-001")
	if err != nil || !exists {
		t.Fatalf("expected stored roster, exists=%v err=%v", exists, err)
	}
	if stored.CaptainID != "ind-rohit-sharma" {
		t.Fatalf("unexpected stored captain: %s", stored.CaptainID)
	}
	if len(metrics.rosters) != 1 || metrics.rosters[0] != "accepted" {
		t.Fatalf("unexpected roster metrics: %v", metrics.rosters)
	}
}

func TestRosterService_SubmitRoster_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  match.Status
		mutate  func(*SubmitRosterInput)
		wantErr []error
	}{
		{
			name:   "budget exceeded",
			status: match.StatusUpcoming,
			mutate: func(in *SubmitRosterInput) {
				in.PlayerIDs[1] = "ind-virat-kohli"
				in.PlayerIDs[3] = "aus-steve-smith"
			},
			wantErr: []error{ErrInvalidInput, fantasy.ErrRosterRejected, fantasy.ErrBudgetExceeded},
		},
		{
			name:   "duplicate player",
			status: match.StatusUpcoming,
			mutate: func(in *SubmitRosterInput) {
				in.PlayerIDs[10] = in.PlayerIDs[9]
			},
			wantErr: []error{ErrInvalidInput, fantasy.ErrTooFewOrDuplicatePlayers},
		},
		{
			name:   "too few players",
			status: match.StatusUpcoming,
			mutate: func(in *SubmitRosterInput) {
				in.PlayerIDs = in.PlayerIDs[:10]
			},
			wantErr: []error{ErrInvalidInput, fantasy.ErrTooFewOrDuplicatePlayers},
		},
		{
			name:   "vice captain outside roster",
			status: match.StatusUpcoming,
			mutate: func(in *SubmitRosterInput) {
				in.ViceCaptainID = "aus-steve-smith"
			},
			wantErr: []error{ErrInvalidInput, fantasy.ErrCaptainOrViceCaptainNotSelected},
		},
		{
			name:   "unknown player",
			status: match.StatusUpcoming,
			mutate: func(in *SubmitRosterInput) {
				in.PlayerIDs[0] = "nobody"
			},
			wantErr: []error{ErrNotFound},
		},
		{
			name:    "match already live",
			status:  match.StatusLive,
			mutate:  func(*SubmitRosterInput) {},
			wantErr: []error{ErrConflict, ErrSubmissionsClosed},
		},
		{
			name:   "missing team name",
			status: match.StatusUpcoming,
			mutate: func(in *SubmitRosterInput) {
				in.Name = "  "
			},
			wantErr: []error{ErrInvalidInput},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(tc.status)
			service := newRosterService(env, "roster-x")
			input := validInput()
			tc.mutate(&input)

			_, err := service.SubmitRoster(context.Background(), input)
			for _, want := range tc.wantErr {
				if !errors.Is(err, want) {
					t.Fatalf("expected %v in chain, got %v", want, err)
				}
			}

			items, _ := env.rosters.ListByUser(context.Background(), "user-1")
			if len(items) != 0 {
				t.Fatalf("rejected roster must not be stored, found %d", len(items))
			}
		})
	}
}

func TestRosterService_SubmitRoster_DuplicateNameConflicts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(match.StatusUpcoming)
	ids := &sequenceIDGenerator{prefix: "roster"}
	service := NewRosterService(env.matches, env.players, env.rosters, fantasy.DefaultRules(), ids, logging.NewNop())

	if _, err := service.SubmitRoster(context.Background(), validInput()); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := service.SubmitRoster(context.Background(), validInput())
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	other := validInput()
	other.Name = "Second XI"
	if _, err := service.SubmitRoster(context.Background(), other); err != nil {
		t.Fatalf("resubmission under a new name should create a new roster: %v", err)
	}
	items, _ := service.ListUserRosters(context.Background(), "user-1", "")
	if len(items) != 2 {
		t.Fatalf("expected 2 rosters, got %d", len(items))
	}
}

func TestRosterService_GetRoster_HidesOtherUsers(t *testing.T) {
	t.Parallel()

	env := newTestEnv(match.StatusUpcoming)
	service := newRosterService(env, "roster-001")
	if _, err := service.SubmitRoster(context.Background(), validInput()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := service.GetRoster(context.Background(), "user-1", "roster-001"); err != nil {
		t.Fatalf("owner lookup: %v", err)
	}
	if _, err := service.GetRoster(context.Background(), "user-2", "roster-001"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestRosterService_SubmitRoster_MatchNotFoundUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	matchRepo := matchmock.NewRepository(t)
	rosterRepo := fantasymock.NewRepository(t)
	service := NewRosterService(matchRepo, memory.NewPlayerRepository(nil), rosterRepo, fantasy.DefaultRules(), staticIDGenerator{id: "r"}, logging.NewNop())

	matchRepo.
		On("GetByID", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), "missing-match").
		Return(match.Match{}, false, nil).
		Once()

	input := validInput()
	input.MatchID = "missing-match"
	_, err := service.SubmitRoster(ctx, input)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRosterService_SubmitRoster_CreateFailureIsPersistenceUsingMockery(t *testing.T) {
	t.Parallel()

	env := newTestEnv(match.StatusUpcoming)
	rosterRepo := fantasymock.NewRepository(t)
	service := NewRosterService(env.matches, env.players, rosterRepo, fantasy.DefaultRules(), staticIDGenerator{id: "r-1"}, logging.NewNop())

	rosterRepo.
		On("ListByUser", mock.Anything, "user-1").
		Return([]fantasy.Roster(nil), nil).
		Once()
	rosterRepo.
		On("Create", mock.Anything, mock.MatchedBy(func(r fantasy.Roster) bool { return r.ID == "r-1" && len(r.PlayerIDs) == 11 })).
		Return(errDiskFull).
		Once()

	_, err := service.SubmitRoster(context.Background(), validInput())
	if !errors.Is(err, ErrPersistence) || !errors.Is(err, errDiskFull) {
		t.Fatalf("expected persistence failure wrapping cause, got %v", err)
	}
}
