package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_BusinessCounters(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.ObserveFinalize("success", 3, 120*time.Millisecond)
	m.ObserveFinalize("partial", 1, time.Second)
	m.ObserveFinalize("rejected", 0, time.Millisecond)
	m.IncPerformanceFallback("provider_error", 22)
	m.IncPerformanceFallback("missing_records", 0)
	m.IncRosterSubmission("accepted")
	m.IncRosterSubmission("accepted")
	m.IncRosterSubmission("rejected")
	m.IncMatchStarted("schedule")

	if got := testutil.ToFloat64(m.finalizeRuns.WithLabelValues("success")); got != 1 {
		t.Fatalf("finalize success runs = %v", got)
	}
	if got := testutil.ToFloat64(m.finalizeTeams); got != 4 {
		t.Fatalf("finalize teams = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.fallbackPlayers.WithLabelValues("provider_error")); got != 22 {
		t.Fatalf("fallback players = %v, want 22", got)
	}
	if got := testutil.ToFloat64(m.performanceFallback.WithLabelValues("missing_records")); got != 1 {
		t.Fatalf("missing records fallbacks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.rosterSubmissions.WithLabelValues("accepted")); got != 2 {
		t.Fatalf("accepted submissions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.matchesStarted.WithLabelValues("schedule")); got != 1 {
		t.Fatalf("scheduled starts = %v, want 1", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.ObserveHTTPRequest(http.MethodGet, "/v1/matches", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	body, _ := io.ReadAll(rec.Body)
	text := string(body)
	for _, want := range []string{
		`fantasy_cricket_http_requests_total{code="200",method="GET",route="/v1/matches"} 1`,
		"fantasy_cricket_http_request_duration_seconds_bucket",
		"go_goroutines",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in metrics output", want)
		}
	}
}
