package httpapi

import (
	"net/http"
	"strings"
	"time"
)

func (h *Handler) RunStartMatchJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunStartMatchJob")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	item, err := h.matchService.StartMatch(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "run start match job failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "start match job completed", "match_id", item.ID, "status", item.Status)
	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) RunFinalizeMatchJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunFinalizeMatchJob")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	started := time.Now()
	teams, err := h.scoringService.FinalizeMatch(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "run finalize match job failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := finalizeResultDTO{
		MatchID:    matchID,
		Teams:      make([]scoredTeamDTO, 0, len(teams)),
		DurationMS: time.Since(started).Milliseconds(),
	}
	for _, team := range teams {
		out.Teams = append(out.Teams, scoredTeamToDTO(team))
	}

	h.logger.InfoContext(ctx, "finalize match job completed", "match_id", matchID, "teams", len(teams), "duration_ms", out.DurationMS)
	writeSuccess(ctx, w, http.StatusOK, out)
}

// RunSyncMatchesJob pulls the external feed on demand. Without a feed it is a
// no-op that reports zero synced matches.
func (h *Handler) RunSyncMatchesJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncMatchesJob")
	defer span.End()

	synced, err := h.matchService.SyncFeed(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run sync matches job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"synced": synced})
}
