package leaderboard

import "sort"

// Scope selects which scored rosters feed a leaderboard.
type Scope string

const (
	ScopeGlobal   Scope = "GLOBAL"
	ScopePerMatch Scope = "MATCH"
)

// Entry is one ranked row. EntityID is a user id for the global board and a
// roster id for a per-match board.
type Entry struct {
	EntityID string
	UserID   string
	Name     string
	Points   int
	Rank     int
}

// Rank orders entries by points descending, then entity id ascending, and
// assigns standard competition ranks (1, 2, 2, 4). The input is not modified.
func Rank(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].EntityID < out[j].EntityID
	})

	for idx := range out {
		if idx > 0 && out[idx].Points == out[idx-1].Points {
			out[idx].Rank = out[idx-1].Rank
			continue
		}
		out[idx].Rank = idx + 1
	}

	return out
}
