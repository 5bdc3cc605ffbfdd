package cricketdata

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/player"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/scoring"
	"github.com/shopspring/decimal"
)

const feedTimeLayout = "2006-01-02T15:04:05"

// Feed players carry no fantasy price, so pools from the feed are priced by
// role. Eleven average picks stay just under the 100 credit budget.
var defaultCostByRole = map[player.Role]decimal.Decimal{
	player.RoleWicketkeeper: decimal.NewFromFloat(8.5),
	player.RoleBatsman:      decimal.NewFromInt(9),
	player.RoleAllRounder:   decimal.NewFromInt(9),
	player.RoleBowler:       decimal.NewFromFloat(8.5),
}

func (c *Client) CurrentMatches(ctx context.Context) ([]match.Match, error) {
	var payload currentMatchesResponse
	if err := c.doJSON(ctx, "/currentMatches", map[string]string{"offset": "0"}, &payload); err != nil {
		return nil, fmt.Errorf("fetch current matches: %w", err)
	}

	out := make([]match.Match, 0, len(payload.Data))
	for _, item := range payload.Data {
		mapped, ok := mapMatch(item)
		if !ok {
			c.logger.DebugContext(ctx, "skip feed match without teams or start time", "external_id", item.ID, "name", item.Name)
			continue
		}
		out = append(out, mapped)
	}

	return out, nil
}

func (c *Client) MatchSquad(ctx context.Context, item match.Match) ([]player.Player, error) {
	ref := externalRef(item)
	if ref == "" {
		return nil, nil
	}

	var payload squadResponse
	if err := c.doJSON(ctx, "/match_squad", map[string]string{"id": ref}, &payload); err != nil {
		return nil, fmt.Errorf("fetch squad match=%s: %w", item.ID, err)
	}

	out := make([]player.Player, 0, 32)
	for _, squad := range payload.Data {
		team := strings.TrimSpace(squad.TeamName)
		for _, p := range squad.Players {
			role, err := player.NormalizeRole(feedRoleLabel(p.Role))
			if err != nil {
				c.logger.DebugContext(ctx, "skip feed player with unknown role", "player_id", p.ID, "role", p.Role)
				continue
			}
			out = append(out, player.Player{
				ID:          strings.TrimSpace(p.ID),
				MatchID:     item.ID,
				Name:        strings.TrimSpace(p.Name),
				Role:        role,
				Team:        team,
				Cost:        defaultCostByRole[role],
				ExternalRef: strings.TrimSpace(p.ID),
			})
		}
	}

	return out, nil
}

// FetchPerformances maps the match scorecard onto records keyed by player id.
// Matches that did not come from the feed have nothing to fetch.
func (c *Client) FetchPerformances(ctx context.Context, item match.Match, players []player.Player) (map[string]scoring.PerformanceRecord, error) {
	ref := externalRef(item)
	if ref == "" {
		return map[string]scoring.PerformanceRecord{}, nil
	}

	var payload scorecardResponse
	if err := c.doJSON(ctx, "/match_scorecard", map[string]string{"id": ref}, &payload); err != nil {
		return nil, fmt.Errorf("fetch scorecard match=%s: %w", item.ID, err)
	}

	byExternal := make(map[string]string, len(players))
	for _, p := range players {
		key := p.ExternalRef
		if key == "" {
			key = p.ID
		}
		byExternal[key] = p.ID
	}

	return aggregateScorecard(payload.Data.Scorecard, byExternal), nil
}

func aggregateScorecard(innings []feedInnings, byExternal map[string]string) map[string]scoring.PerformanceRecord {
	records := make(map[string]scoring.PerformanceRecord, len(byExternal))
	balls := make(map[string]int, len(byExternal))
	conceded := make(map[string]int, len(byExternal))

	for _, inning := range innings {
		for _, row := range inning.Batting {
			id, ok := byExternal[row.Batsman.ID]
			if !ok {
				continue
			}
			record := records[id]
			record.PlayerID = id
			record.Runs += row.Runs
			record.BallsFaced += row.Balls
			record.Fours += row.Fours
			record.Sixes += row.Sixes
			records[id] = record
		}
		for _, row := range inning.Bowling {
			id, ok := byExternal[row.Bowler.ID]
			if !ok {
				continue
			}
			record := records[id]
			record.PlayerID = id
			record.Wickets += row.Wickets
			records[id] = record
			balls[id] += oversToBalls(row.Overs)
			conceded[id] += row.Runs
		}
	}

	for id, bowled := range balls {
		if bowled == 0 {
			continue
		}
		record := records[id]
		record.Overs = float64(bowled) / 6
		record.Economy = math.Round(float64(conceded[id])/record.Overs*100) / 100
		records[id] = record
	}

	return records
}

// oversToBalls reads cricket notation where 3.4 means three overs and four balls.
func oversToBalls(overs float64) int {
	if overs <= 0 {
		return 0
	}
	whole := math.Floor(overs)
	extra := int(math.Round((overs - whole) * 10))
	return int(whole)*6 + min(extra, 5)
}

func mapMatch(item feedMatch) (match.Match, bool) {
	startAt := parseFeedTime(item.DateTimeGMT)
	if len(item.Teams) != 2 || startAt.IsZero() {
		return match.Match{}, false
	}

	status := match.NormalizeStatus(item.Status)
	switch {
	case item.MatchEnded:
		status = match.StatusCompleted
	case item.MatchStarted:
		status = match.StatusLive
	}

	id := strings.TrimSpace(item.ID)
	return match.Match{
		ID:          id,
		ExternalRef: id,
		Team1:       strings.TrimSpace(item.Teams[0]),
		Team2:       strings.TrimSpace(item.Teams[1]),
		Venue:       strings.TrimSpace(item.Venue),
		StartAt:     startAt,
		Status:      status,
	}, true
}

func parseFeedTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.UTC()
	}
	if parsed, err := time.ParseInLocation(feedTimeLayout, raw, time.UTC); err == nil {
		return parsed
	}
	return time.Time{}
}

// feedRoleLabel folds provider labels such as "Batting Allrounder" and
// "WK-Batsman" into labels the domain normalizer knows.
func feedRoleLabel(raw string) string {
	label := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(label, "wk"), strings.Contains(label, "keeper"):
		return "wk"
	case strings.Contains(label, "allrounder"), strings.Contains(label, "all-rounder"), strings.Contains(label, "all rounder"):
		return "ar"
	default:
		return label
	}
}

func externalRef(item match.Match) string {
	return strings.TrimSpace(item.ExternalRef)
}
