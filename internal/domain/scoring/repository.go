package scoring

import (
	"context"
	"errors"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/player"
)

var ErrAlreadyScored = errors.New("roster already scored")

type Repository interface {
	GetScoredTeam(ctx context.Context, rosterID string) (ScoredTeam, bool, error)
	ListScoredTeamsByMatch(ctx context.Context, matchID string) ([]ScoredTeam, error)
	// SaveScoredTeam stores the team and adds its total to the owner's
	// cumulative points atomically. It returns ErrAlreadyScored when the
	// roster has a stored result.
	SaveScoredTeam(ctx context.Context, team ScoredTeam) error

	ListUserTotals(ctx context.Context) ([]UserTotal, error)
	GetUserTotal(ctx context.Context, userID string) (UserTotal, bool, error)
}

// MatchCommitter is implemented by stores that can finalize a match in one
// transaction. CommitMatch saves every team, credits each owner and moves the
// match from live to completed together. Teams whose roster already has a
// stored result are skipped without credit. It returns false and writes
// nothing when the match is no longer live.
type MatchCommitter interface {
	CommitMatch(ctx context.Context, matchID string, teams []ScoredTeam, completedAt time.Time) (bool, error)
}

// PerformanceSource returns real records keyed by player id. Players with no
// data are simply absent from the result.
type PerformanceSource interface {
	FetchPerformances(ctx context.Context, item match.Match, players []player.Player) (map[string]PerformanceRecord, error)
}
