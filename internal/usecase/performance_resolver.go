package usecase

import (
	"context"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/player"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
)

// PerformanceResolver gathers records for a match from the real source and
// fills whatever is missing from the generator. It never fails.
type PerformanceResolver struct {
	source    scoring.PerformanceSource
	generator scoring.PerformanceGenerator
	metrics   MetricsRecorder
	logger    *logging.Logger
}

func NewPerformanceResolver(source scoring.PerformanceSource, generator scoring.PerformanceGenerator, logger *logging.Logger) *PerformanceResolver {
	if logger == nil {
		logger = logging.Default()
	}
	if generator == nil {
		generator = scoring.FixedPointsGenerator()
	}

	return &PerformanceResolver{
		source:    source,
		generator: generator,
		metrics:   noopMetrics{},
		logger:    logger,
	}
}

func (r *PerformanceResolver) SetMetrics(metrics MetricsRecorder) {
	if metrics != nil {
		r.metrics = metrics
	}
}

func (r *PerformanceResolver) Resolve(ctx context.Context, item match.Match, players []player.Player) map[string]scoring.PerformanceRecord {
	ctx, span := startUsecaseSpan(ctx, "usecase.PerformanceResolver.Resolve")
	defer span.End()

	records := make(map[string]scoring.PerformanceRecord, len(players))
	var sourceErr error
	if r.source != nil {
		fetched, err := r.source.FetchPerformances(ctx, item, players)
		sourceErr = err
		if err != nil {
			r.metrics.IncPerformanceFallback("source_unavailable", len(players))
			r.logger.WarnContext(ctx, "performance source unavailable, simulating match",
				"match_id", item.ID,
				"players", len(players),
				"error", err,
			)
		}
		for id, record := range fetched {
			record.PlayerID = id
			records[id] = record
		}
	}

	missing := 0
	for _, p := range players {
		if _, ok := records[p.ID]; ok {
			continue
		}
		record := r.generator.Generate(p)
		record.PlayerID = p.ID
		record.Simulated = true
		records[p.ID] = record
		missing++
	}

	if r.source != nil && sourceErr == nil && missing > 0 {
		r.metrics.IncPerformanceFallback("missing_record", missing)
		r.logger.WarnContext(ctx, "simulated players absent from performance source",
			"match_id", item.ID,
			"simulated", missing,
		)
	}

	return records
}
