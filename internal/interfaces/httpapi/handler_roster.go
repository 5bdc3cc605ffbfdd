package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/fantasy-cricket/internal/usecase"
)

type submitRosterRequest struct {
	Name          string   `json:"name" validate:"required,max=100"`
	PlayerIDs     []string `json:"player_ids" validate:"required,min=1,max=30,dive,required"`
	CaptainID     string   `json:"captain_id" validate:"required"`
	ViceCaptainID string   `json:"vice_captain_id" validate:"required"`
}

func (h *Handler) SubmitRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitRoster")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitRosterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	roster, err := h.rosterService.SubmitRoster(ctx, usecase.SubmitRosterInput{
		UserID:        principal.UserID,
		MatchID:       matchID,
		Name:          req.Name,
		PlayerIDs:     req.PlayerIDs,
		CaptainID:     req.CaptainID,
		ViceCaptainID: req.ViceCaptainID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit roster failed", "user_id", principal.UserID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, rosterToDTO(roster, nil))
}

func (h *Handler) ListMyRosters(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyRosters")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := strings.TrimSpace(r.URL.Query().Get("match_id"))
	items, err := h.rosterService.ListUserRosters(ctx, principal.UserID, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "list my rosters failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]rosterDTO, 0, len(items))
	for _, item := range items {
		out = append(out, rosterToDTO(item, nil))
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

// GetRoster returns one of the caller's rosters with its score once the match
// was finalized.
func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRoster")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rosterID := strings.TrimSpace(r.PathValue("rosterID"))
	roster, err := h.rosterService.GetRoster(ctx, principal.UserID, rosterID)
	if err != nil {
		h.logger.WarnContext(ctx, "get roster failed", "user_id", principal.UserID, "roster_id", rosterID, "error", err)
		writeError(ctx, w, err)
		return
	}

	team, scored, err := h.scoringService.GetScoredTeam(ctx, roster.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get scored team failed", "roster_id", roster.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	var score *scoredTeamDTO
	if scored {
		dto := scoredTeamToDTO(team)
		score = &dto
	}

	writeSuccess(ctx, w, http.StatusOK, rosterToDTO(roster, score))
}

func (h *Handler) GetMyPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyPoints")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	points, err := h.scoringService.GetUserPoints(ctx, principal.UserID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get user points failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, userPointsDTO{
		UserID: points.UserID,
		Points: points.Points,
		Rank:   points.Rank,
	})
}
