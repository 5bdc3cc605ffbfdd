package player

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Role represents cricket playing roles used in fantasy rules.
type Role string

const (
	RoleWicketkeeper Role = "WK"
	RoleBatsman      Role = "BAT"
	RoleAllRounder   Role = "AR"
	RoleBowler       Role = "BOWL"
)

// AllRoles lists roles in the order roster rules evaluate them.
var AllRoles = []Role{
	RoleWicketkeeper,
	RoleBatsman,
	RoleAllRounder,
	RoleBowler,
}

var roleAliases = map[string]Role{
	"wk":            RoleWicketkeeper,
	"wicketkeeper":  RoleWicketkeeper,
	"wicket-keeper": RoleWicketkeeper,
	"wicket keeper": RoleWicketkeeper,
	"keeper":        RoleWicketkeeper,
	"wk-batsman":    RoleWicketkeeper,
	"bat":           RoleBatsman,
	"batsman":       RoleBatsman,
	"batter":        RoleBatsman,
	"batting":       RoleBatsman,
	"ar":            RoleAllRounder,
	"all-rounder":   RoleAllRounder,
	"allrounder":    RoleAllRounder,
	"all rounder":   RoleAllRounder,
	"bowl":          RoleBowler,
	"bowler":        RoleBowler,
	"bowling":       RoleBowler,
}

// NormalizeRole converts any external role label into the closed Role set.
func NormalizeRole(value string) (Role, error) {
	key := strings.ToLower(strings.TrimSpace(value))
	key = strings.ReplaceAll(key, "_", "-")
	if role, ok := roleAliases[key]; ok {
		return role, nil
	}

	return "", fmt.Errorf("unknown player role %q", value)
}

func (r Role) Valid() bool {
	switch r {
	case RoleWicketkeeper, RoleBatsman, RoleAllRounder, RoleBowler:
		return true
	default:
		return false
	}
}

// Bowls reports whether bowling points apply to the role.
func (r Role) Bowls() bool {
	return r == RoleBowler || r == RoleAllRounder
}

// Player is a selectable cricketer in one match's pool.
type Player struct {
	ID          string
	MatchID     string
	Name        string
	Role        Role
	Team        string
	Cost        decimal.Decimal
	BasePoints  int
	ExternalRef string
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.MatchID == "" {
		return fmt.Errorf("player match id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if !p.Role.Valid() {
		return fmt.Errorf("invalid player role: %s", p.Role)
	}
	if p.Team == "" {
		return fmt.Errorf("player team is required")
	}
	if p.Cost.IsNegative() {
		return fmt.Errorf("player cost cannot be negative")
	}

	return nil
}
