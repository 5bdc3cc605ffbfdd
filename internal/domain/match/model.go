package match

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a match.
type Status string

const (
	StatusUpcoming  Status = "UPCOMING"
	StatusLive      Status = "LIVE"
	StatusCompleted Status = "COMPLETED"
)

var ErrInvalidTransition = errors.New("invalid match status transition")

// Match represents one scheduled cricket fixture with its eligible player pool.
type Match struct {
	ID          string
	ExternalRef string
	Team1       string
	Team2       string
	Venue       string
	StartAt     time.Time
	Status      Status
	CompletedAt *time.Time
}

func (m Match) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("match id is required")
	}
	if m.Team1 == "" || m.Team2 == "" {
		return fmt.Errorf("match teams are required")
	}
	if m.Team1 == m.Team2 {
		return fmt.Errorf("match teams must differ")
	}
	if !m.Status.Valid() {
		return fmt.Errorf("invalid match status: %s", m.Status)
	}

	return nil
}

// AcceptsRosters reports whether roster submissions are still open.
func (m Match) AcceptsRosters() bool {
	return m.Status == StatusUpcoming
}

func (s Status) Valid() bool {
	switch s {
	case StatusUpcoming, StatusLive, StatusCompleted:
		return true
	default:
		return false
	}
}

// CanTransitionTo allows only the forward Upcoming -> Live -> Completed path.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusUpcoming:
		return next == StatusLive
	case StatusLive:
		return next == StatusCompleted
	default:
		return false
	}
}

// MergeUpsert returns the status an existing match keeps when an upsert
// carries incoming. An upsert may only move Upcoming to Live; completion and
// every other transition belong to Repository.UpdateStatus.
func (s Status) MergeUpsert(incoming Status) Status {
	if s == StatusUpcoming && incoming == StatusLive {
		return StatusLive
	}
	return s
}

// NormalizeStatus maps feed status strings onto the lifecycle states.
func NormalizeStatus(value string) Status {
	status := strings.ToUpper(strings.TrimSpace(value))
	switch {
	case status == "", status == string(StatusUpcoming), status == "SCHEDULED", status == "NOT STARTED",
		strings.HasPrefix(status, "MATCH NOT STARTED"), strings.HasPrefix(status, "STARTS"):
		return StatusUpcoming
	case status == string(StatusLive), status == "IN PROGRESS", status == "INNINGS BREAK",
		strings.HasPrefix(status, "STUMPS"), strings.HasPrefix(status, "LIVE"):
		return StatusLive
	case status == string(StatusCompleted), status == "FINISHED", status == "RESULT",
		strings.Contains(status, " WON BY "), strings.HasPrefix(status, "MATCH TIED"),
		strings.HasPrefix(status, "NO RESULT"), strings.HasPrefix(status, "MATCH DRAWN"):
		return StatusCompleted
	default:
		return StatusUpcoming
	}
}
