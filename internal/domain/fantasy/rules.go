package fantasy

import (
	"errors"
	"fmt"
	"sort"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/player"
	"github.com/shopspring/decimal"
)

// Reason names the roster rule that rejected a submission.
type Reason string

const (
	ReasonTooFewOrDuplicatePlayers        Reason = "TOO_FEW_OR_DUPLICATE_PLAYERS"
	ReasonCaptainViceCaptainSame          Reason = "CAPTAIN_VICE_CAPTAIN_SAME"
	ReasonCaptainOrViceCaptainNotSelected Reason = "CAPTAIN_OR_VICE_CAPTAIN_NOT_SELECTED"
	ReasonRoleCountOutOfRange             Reason = "ROLE_COUNT_OUT_OF_RANGE"
	ReasonBudgetExceeded                  Reason = "BUDGET_EXCEEDED"
	ReasonTeamCapExceeded                 Reason = "TEAM_CAP_EXCEEDED"
)

var (
	ErrRosterRejected = errors.New("roster rejected")

	ErrTooFewOrDuplicatePlayers        = errors.New("roster needs exactly the squad size of distinct players")
	ErrCaptainViceCaptainSame          = errors.New("captain and vice-captain must differ")
	ErrCaptainOrViceCaptainNotSelected = errors.New("captain and vice-captain must be selected players")
	ErrRoleCountOutOfRange             = errors.New("role count out of range")
	ErrBudgetExceeded                  = errors.New("budget cap exceeded")
	ErrTeamCapExceeded                 = errors.New("max players from same team exceeded")
)

var reasonErrors = map[Reason]error{
	ReasonTooFewOrDuplicatePlayers:        ErrTooFewOrDuplicatePlayers,
	ReasonCaptainViceCaptainSame:          ErrCaptainViceCaptainSame,
	ReasonCaptainOrViceCaptainNotSelected: ErrCaptainOrViceCaptainNotSelected,
	ReasonRoleCountOutOfRange:             ErrRoleCountOutOfRange,
	ReasonBudgetExceeded:                  ErrBudgetExceeded,
	ReasonTeamCapExceeded:                 ErrTeamCapExceeded,
}

// RejectionError carries the first violated rule and the value that broke it.
type RejectionError struct {
	Reason Reason
	Role   player.Role
	Team   string
	Count  int
	Amount decimal.Decimal
}

func (e *RejectionError) Error() string {
	base := reasonErrors[e.Reason]
	if base == nil {
		return fmt.Sprintf("roster rejected: %s", e.Reason)
	}

	switch e.Reason {
	case ReasonTooFewOrDuplicatePlayers:
		return fmt.Sprintf("%s: distinct=%d", base, e.Count)
	case ReasonRoleCountOutOfRange:
		return fmt.Sprintf("%s: role=%s count=%d", base, e.Role, e.Count)
	case ReasonBudgetExceeded:
		return fmt.Sprintf("%s: used=%s", base, e.Amount.String())
	case ReasonTeamCapExceeded:
		return fmt.Sprintf("%s: team=%s count=%d", base, e.Team, e.Count)
	default:
		return base.Error()
	}
}

func (e *RejectionError) Is(target error) bool {
	if target == ErrRosterRejected {
		return true
	}
	return target == reasonErrors[e.Reason]
}

// RoleRange is the inclusive allowed count for one role.
type RoleRange struct {
	Min int
	Max int
}

// Rules stores fantasy roster validation parameters.
type Rules struct {
	SquadSize         int
	BudgetCap         decimal.Decimal
	MaxPlayersPerTeam int
	RoleRanges        map[player.Role]RoleRange
}

func DefaultRules() Rules {
	return Rules{
		SquadSize:         11,
		BudgetCap:         decimal.NewFromInt(100),
		MaxPlayersPerTeam: 7,
		RoleRanges: map[player.Role]RoleRange{
			player.RoleWicketkeeper: {Min: 1, Max: 4},
			player.RoleBatsman:      {Min: 3, Max: 6},
			player.RoleAllRounder:   {Min: 1, Max: 4},
			player.RoleBowler:       {Min: 3, Max: 6},
		},
	}
}

// ValidateRoster checks a candidate selection against rules in a fixed order
// and returns a *RejectionError for the first rule that fails. players may
// contain duplicates; it is never mutated.
func ValidateRoster(players []player.Player, captainID, viceCaptainID string, rules Rules) error {
	selected := make(map[string]struct{}, len(players))
	for _, item := range players {
		selected[item.ID] = struct{}{}
	}
	if len(players) != rules.SquadSize || len(selected) != rules.SquadSize {
		return &RejectionError{Reason: ReasonTooFewOrDuplicatePlayers, Count: len(selected)}
	}

	if captainID == viceCaptainID {
		return &RejectionError{Reason: ReasonCaptainViceCaptainSame}
	}
	_, hasCaptain := selected[captainID]
	_, hasVice := selected[viceCaptainID]
	if !hasCaptain || !hasVice {
		return &RejectionError{Reason: ReasonCaptainOrViceCaptainNotSelected}
	}

	roleCounter := make(map[player.Role]int, len(player.AllRoles))
	for _, item := range players {
		roleCounter[item.Role]++
	}
	for _, role := range player.AllRoles {
		bounds := rules.RoleRanges[role]
		if roleCounter[role] < bounds.Min || roleCounter[role] > bounds.Max {
			return &RejectionError{Reason: ReasonRoleCountOutOfRange, Role: role, Count: roleCounter[role]}
		}
	}
	for _, item := range players {
		if !item.Role.Valid() {
			return &RejectionError{Reason: ReasonRoleCountOutOfRange, Role: item.Role, Count: roleCounter[item.Role]}
		}
	}

	total := decimal.Zero
	for _, item := range players {
		total = total.Add(item.Cost)
	}
	if total.GreaterThan(rules.BudgetCap) {
		return &RejectionError{Reason: ReasonBudgetExceeded, Amount: total}
	}

	teamCounter := make(map[string]int)
	for _, item := range players {
		teamCounter[item.Team]++
	}
	teams := make([]string, 0, len(teamCounter))
	for team := range teamCounter {
		teams = append(teams, team)
	}
	sort.Strings(teams)
	for _, team := range teams {
		if teamCounter[team] > rules.MaxPlayersPerTeam {
			return &RejectionError{Reason: ReasonTeamCapExceeded, Team: team, Count: teamCounter[team]}
		}
	}

	return nil
}
