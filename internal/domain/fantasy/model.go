package fantasy

import (
	"fmt"
	"strings"
	"time"
)

// Roster is one immutable fantasy team submitted by a user for a match.
type Roster struct {
	ID            string
	UserID        string
	MatchID       string
	Name          string
	PlayerIDs     []string
	CaptainID     string
	ViceCaptainID string
	CreatedAt     time.Time
}

func (r Roster) ValidateBasic() error {
	if r.ID == "" {
		return fmt.Errorf("roster id is required")
	}
	if r.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if r.MatchID == "" {
		return fmt.Errorf("match id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("roster name is required")
	}
	if len(r.PlayerIDs) == 0 {
		return fmt.Errorf("roster players are required")
	}
	if r.CaptainID == "" || r.ViceCaptainID == "" {
		return fmt.Errorf("captain and vice-captain are required")
	}

	return nil
}

// Contains reports whether playerID is part of the roster.
func (r Roster) Contains(playerID string) bool {
	for _, id := range r.PlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}
