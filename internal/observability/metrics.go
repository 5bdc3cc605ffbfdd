package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "fantasy_cricket"

// Metrics records business and HTTP measurements on a private registry.
// It satisfies usecase.MetricsRecorder.
type Metrics struct {
	registry *prometheus.Registry

	finalizeRuns        *prometheus.CounterVec
	finalizeDuration    *prometheus.HistogramVec
	finalizeTeams       prometheus.Counter
	performanceFallback *prometheus.CounterVec
	fallbackPlayers     *prometheus.CounterVec
	rosterSubmissions   *prometheus.CounterVec
	matchesStarted      *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		finalizeRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "finalize_runs_total",
			Help:      "Match finalize attempts by outcome.",
		}, []string{"outcome"}),
		finalizeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "finalize_duration_seconds",
			Help:      "Wall time of a match finalize.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"outcome"}),
		finalizeTeams: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "finalize_teams_scored_total",
			Help:      "Rosters scored by finalize.",
		}),
		performanceFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "performance_fallback_total",
			Help:      "Finalize runs that simulated some or all performances, by reason.",
		}, []string{"reason"}),
		fallbackPlayers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "performance_fallback_players_total",
			Help:      "Players whose performance was simulated, by reason.",
		}, []string{"reason"}),
		rosterSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "roster_submissions_total",
			Help:      "Roster submissions by outcome.",
		}, []string{"outcome"}),
		matchesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "matches_started_total",
			Help:      "Upcoming to live transitions by trigger.",
		}, []string{"trigger"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.finalizeRuns,
		m.finalizeDuration,
		m.finalizeTeams,
		m.performanceFallback,
		m.fallbackPlayers,
		m.rosterSubmissions,
		m.matchesStarted,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveFinalize(outcome string, teams int, elapsed time.Duration) {
	m.finalizeRuns.WithLabelValues(outcome).Inc()
	m.finalizeDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	if teams > 0 {
		m.finalizeTeams.Add(float64(teams))
	}
}

func (m *Metrics) IncPerformanceFallback(reason string, players int) {
	m.performanceFallback.WithLabelValues(reason).Inc()
	if players > 0 {
		m.fallbackPlayers.WithLabelValues(reason).Add(float64(players))
	}
}

func (m *Metrics) IncRosterSubmission(outcome string) {
	m.rosterSubmissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncMatchStarted(trigger string) {
	m.matchesStarted.WithLabelValues(trigger).Inc()
}

// ObserveHTTPRequest takes the route pattern, not the raw path, to keep
// label cardinality bounded.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
