package app

import (
	"context"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
)

type dueMatchStarter interface {
	StartDueMatches(ctx context.Context) ([]string, error)
}

// runMatchStarter moves due matches to live every interval until ctx ends.
func runMatchStarter(ctx context.Context, starter dueMatchStarter, interval time.Duration, logger *logging.Logger) {
	if interval <= 0 {
		logger.Info("match start scheduler disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("match start scheduler running", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			started, err := starter.StartDueMatches(ctx)
			if err != nil {
				logger.ErrorContext(ctx, "start due matches failed", "started", len(started), "error", err)
				continue
			}
			if len(started) > 0 {
				logger.InfoContext(ctx, "started due matches", "match_ids", started)
			}
		}
	}
}
