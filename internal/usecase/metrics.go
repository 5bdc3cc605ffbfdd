package usecase

import "time"

// MetricsRecorder receives business measurements from the services.
type MetricsRecorder interface {
	ObserveFinalize(outcome string, teams int, elapsed time.Duration)
	IncPerformanceFallback(reason string, players int)
	IncRosterSubmission(outcome string)
	IncMatchStarted(trigger string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveFinalize(string, int, time.Duration) {}
func (noopMetrics) IncPerformanceFallback(string, int) {}
func (noopMetrics) IncRosterSubmission(string) {}
func (noopMetrics) IncMatchStarted(string) {}
