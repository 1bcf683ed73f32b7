// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/campusguessr/internal/app"
	"github.com/okian/campusguessr/internal/domain/model"
	"github.com/okian/campusguessr/internal/domain/types"
	"github.com/okian/campusguessr/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	GameDependencies
	LeaderboardDependencies
	RankDependencies
	LocationDependencies
	StatsProvider
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	gameHandler        *GameHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	locationsHandler   *LocationsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		gameHandler:        NewGameHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		rankHandler:        NewRankHandler(deps),
		locationsHandler:   NewLocationsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.Handle(pattern, RequestIDMiddleware(MetricsMiddleware(h, endpoint)))
	}

	route("GET /healthz", "healthz", s.healthHandler.HandleHealth)
	route("GET /stats", "stats", s.statsHandler.HandleStats)

	route("POST /game/start", "game_start", s.gameHandler.HandleStart)
	route("POST /game/submit-guess", "game_submit_guess", s.gameHandler.HandleSubmitGuess)
	route("POST /game/associate", "game_associate", s.gameHandler.HandleAssociate)
	route("GET /game/{id}", "game_results", s.gameHandler.HandleGetGame)

	route("GET /leaderboard", "leaderboard", s.leaderboardHandler.HandleGetLeaderboard)
	route("GET /rank/{gameId}", "rank", s.rankHandler.HandleGetRank)

	route("GET /location/random", "location_random", s.locationsHandler.HandleRandom)
	route("GET /locations", "locations_list", s.locationsHandler.HandleList)
	route("POST /locations", "locations_add", s.locationsHandler.HandleAdd)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// dataResponse wraps single resources the way the random-location route returns them.
type dataResponse struct {
	Data any `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status. Server errors are logged and their
// details are not sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, name := status(err)
	msg := err.Error()
	if code >= http.StatusInternalServerError {
		logger.Get().Named("api").Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err))
		msg = http.StatusText(code)
	}
	writeJSON(w, code, errorResponse{Code: name, Message: msg})
}

// Compile-time check that the service satisfies the handler contracts.
var _ Dependencies = (*service.Service)(nil)

// sessionResponse is returned by POST /game/associate.
type sessionResponse struct {
	Game *model.GameSession `json:"game"`
}
