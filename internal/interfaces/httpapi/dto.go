package httpapi

import (
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasy"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/leaderboard"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/player"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/scoring"
)

type matchDTO struct {
	ID          string     `json:"id"`
	Team1       string     `json:"team1"`
	Team2       string     `json:"team2"`
	Venue       string     `json:"venue,omitempty"`
	StartAt     time.Time  `json:"start_at"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type playerDTO struct {
	ID         string  `json:"id"`
	MatchID    string  `json:"match_id"`
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	Team       string  `json:"team"`
	Cost       float64 `json:"cost"`
	BasePoints int     `json:"base_points"`
}

type rosterDTO struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	MatchID       string         `json:"match_id"`
	Name          string         `json:"name"`
	PlayerIDs     []string       `json:"player_ids"`
	CaptainID     string         `json:"captain_id"`
	ViceCaptainID string         `json:"vice_captain_id"`
	CreatedAt     time.Time      `json:"created_at"`
	Score         *scoredTeamDTO `json:"score,omitempty"`
}

type playerScoreDTO struct {
	PlayerID   string  `json:"player_id"`
	Base       float64 `json:"base"`
	Multiplier float64 `json:"multiplier"`
	Points     float64 `json:"points"`
	HasRecord  bool    `json:"has_record"`
}

type scoredTeamDTO struct {
	RosterID  string           `json:"roster_id"`
	UserID    string           `json:"user_id"`
	MatchID   string           `json:"match_id"`
	Total     int              `json:"total"`
	Breakdown []playerScoreDTO `json:"breakdown"`
	ScoredAt  time.Time        `json:"scored_at"`
}

type leaderboardEntryDTO struct {
	Rank     int    `json:"rank"`
	EntityID string `json:"entity_id"`
	UserID   string `json:"user_id"`
	Name     string `json:"name,omitempty"`
	Points   int    `json:"points"`
}

type leaderboardDTO struct {
	Scope   string                `json:"scope"`
	MatchID string                `json:"match_id,omitempty"`
	Entries []leaderboardEntryDTO `json:"entries"`
}

type userPointsDTO struct {
	UserID string `json:"user_id"`
	Points int    `json:"points"`
	Rank   int    `json:"rank"`
}

type finalizeResultDTO struct {
	MatchID    string          `json:"match_id"`
	Teams      []scoredTeamDTO `json:"teams"`
	DurationMS int64           `json:"duration_ms"`
}

func matchToDTO(item match.Match) matchDTO {
	return matchDTO{
		ID:          item.ID,
		Team1:       item.Team1,
		Team2:       item.Team2,
		Venue:       item.Venue,
		StartAt:     item.StartAt,
		Status:      string(item.Status),
		CompletedAt: item.CompletedAt,
	}
}

func playerToDTO(item player.Player) playerDTO {
	return playerDTO{
		ID:         item.ID,
		MatchID:    item.MatchID,
		Name:       item.Name,
		Role:       string(item.Role),
		Team:       item.Team,
		Cost:       item.Cost.InexactFloat64(),
		BasePoints: item.BasePoints,
	}
}

func rosterToDTO(item fantasy.Roster, score *scoredTeamDTO) rosterDTO {
	return rosterDTO{
		ID:            item.ID,
		UserID:        item.UserID,
		MatchID:       item.MatchID,
		Name:          item.Name,
		PlayerIDs:     append([]string(nil), item.PlayerIDs...),
		CaptainID:     item.CaptainID,
		ViceCaptainID: item.ViceCaptainID,
		CreatedAt:     item.CreatedAt,
		Score:         score,
	}
}

func scoredTeamToDTO(item scoring.ScoredTeam) scoredTeamDTO {
	breakdown := make([]playerScoreDTO, 0, len(item.Breakdown))
	for _, line := range item.Breakdown {
		breakdown = append(breakdown, playerScoreDTO{
			PlayerID:   line.PlayerID,
			Base:       line.Base,
			Multiplier: line.Multiplier,
			Points:     line.Points,
			HasRecord:  line.HasRecord,
		})
	}

	return scoredTeamDTO{
		RosterID:  item.RosterID,
		UserID:    item.UserID,
		MatchID:   item.MatchID,
		Total:     item.Total,
		Breakdown: breakdown,
		ScoredAt:  item.ScoredAt,
	}
}

func leaderboardToDTO(scope leaderboard.Scope, matchID string, entries []leaderboard.Entry) leaderboardDTO {
	out := leaderboardDTO{
		Scope:   string(scope),
		MatchID: matchID,
		Entries: make([]leaderboardEntryDTO, 0, len(entries)),
	}
	for _, entry := range entries {
		out.Entries = append(out.Entries, leaderboardEntryDTO{
			Rank:     entry.Rank,
			EntityID: entry.EntityID,
			UserID:   entry.UserID,
			Name:     entry.Name,
			Points:   entry.Points,
		})
	}
	return out
}
