package usecase

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrConflict              = errors.New("conflict")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrPersistence           = errors.New("persistence failure")
)

var (
	ErrMatchAlreadyCompleted = fmt.Errorf("%w: match already completed", ErrConflict)
	ErrSubmissionsClosed     = fmt.Errorf("%w: roster submissions closed", ErrConflict)
	ErrNoTeamsFound          = fmt.Errorf("%w: no rosters submitted for match", ErrNotFound)
)

// PartialFinalizeError reports a finalize run that stopped at a storage failure.
// Scored rosters were committed with their credits; Failed is the roster whose
// write failed and Pending were never attempted.
type PartialFinalizeError struct {
	MatchID string
	Scored  []string
	Failed  []string
	Pending []string
	Cause   error
}

func (e *PartialFinalizeError) Error() string {
	return fmt.Sprintf("finalize match %s halted: scored=[%s] failed=[%s] pending=[%s]: %v",
		e.MatchID,
		strings.Join(e.Scored, ","),
		strings.Join(e.Failed, ","),
		strings.Join(e.Pending, ","),
		e.Cause,
	)
}

func (e *PartialFinalizeError) Unwrap() []error {
	return []error{ErrPersistence, e.Cause}
}
