package httpapi

import "net/http"

func handle(mux *http.ServeMux, pattern string, h http.Handler) {
	mux.Handle(pattern, recordRoute(h))
}

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, cfg RouterConfig) {
	handle(mux, "GET /healthz", http.HandlerFunc(handler.Healthz))
	if cfg.MetricsHandler != nil {
		handle(mux, "GET /metrics", cfg.MetricsHandler)
	}
	if !cfg.SwaggerEnabled {
		return
	}

	handle(mux, "GET /openapi.yaml", http.HandlerFunc(handler.OpenAPI))
	handle(mux, "GET /docs", http.HandlerFunc(handler.SwaggerUI))
	handle(mux, "GET /docs/", http.HandlerFunc(handler.SwaggerUI))
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	handle(mux, "GET /v1/matches", http.HandlerFunc(handler.ListMatches))
	handle(mux, "GET /v1/matches/{matchID}", http.HandlerFunc(handler.GetMatch))
	handle(mux, "GET /v1/matches/{matchID}/players", http.HandlerFunc(handler.ListMatchPlayers))
	handle(mux, "GET /v1/matches/{matchID}/leaderboard", http.HandlerFunc(handler.GetMatchLeaderboard))
	handle(mux, "GET /v1/leaderboard", http.HandlerFunc(handler.GetGlobalLeaderboard))
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	handle(mux, "POST /v1/matches/{matchID}/rosters", RequireAuth(verifier, http.HandlerFunc(handler.SubmitRoster)))
	handle(mux, "GET /v1/rosters/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyRosters)))
	handle(mux, "GET /v1/rosters/{rosterID}", RequireAuth(verifier, http.HandlerFunc(handler.GetRoster)))
	handle(mux, "GET /v1/me/points", RequireAuth(verifier, http.HandlerFunc(handler.GetMyPoints)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	handle(mux, "POST /v1/internal/matches/sync", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncMatchesJob)))
	handle(mux, "POST /v1/internal/matches/{matchID}/start", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunStartMatchJob)))
	handle(mux, "POST /v1/internal/matches/{matchID}/finalize", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunFinalizeMatchJob)))
}
