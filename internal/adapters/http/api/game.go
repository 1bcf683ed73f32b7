package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/okian/campusguessr/internal/app"
	"github.com/okian/campusguessr/internal/domain/geo"
	"github.com/okian/campusguessr/internal/domain/model"
)

// GameDependencies defines the game flow operations.
type GameDependencies interface {
	StartGame(ctx context.Context, in service.StartGameInput) (*service.StartGameResult, error)
	SubmitGuess(ctx context.Context, in service.SubmitGuessInput) (*service.GuessResult, error)
	Results(ctx context.Context, id string) (*service.GameResults, error)
	AssociateGame(ctx context.Context, gameID, playerName string) (*model.GameSession, error)
}

type startGameRequest struct {
	PlayerName string `json:"playerName" validate:"omitempty,playername"`
}

// submitGuessRequest uses pointers so a missing coordinate is told apart from 0.
type submitGuessRequest struct {
	GameID         string   `json:"gameId" validate:"required,max=64"`
	GuessLatitude  *float64 `json:"guessLatitude" validate:"required,latitude"`
	GuessLongitude *float64 `json:"guessLongitude" validate:"required,longitude"`
}

type associateRequest struct {
	GameID     string `json:"gameId" validate:"required,max=64"`
	PlayerName string `json:"playerName" validate:"required,playername"`
}

// GameHandler handles the game flow routes.
type GameHandler struct {
	deps GameDependencies
}

// NewGameHandler creates a new game handler.
func NewGameHandler(deps GameDependencies) *GameHandler {
	return &GameHandler{deps: deps}
}

// HandleStart handles POST /game/start.
func (h *GameHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_game"
	var req startGameRequest
	// An empty body starts an anonymous game.
	if err := decode(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.StartGame(r.Context(), service.StartGameInput{PlayerName: req.PlayerName})
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleSubmitGuess handles POST /game/submit-guess.
func (h *GameHandler) HandleSubmitGuess(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_guess"
	var req submitGuessRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.SubmitGuess(r.Context(), service.SubmitGuessInput{
		GameID: req.GameID,
		Guess:  geo.Coordinate{Latitude: *req.GuessLatitude, Longitude: *req.GuessLongitude},
	})
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleGetGame handles GET /game/{id}.
func (h *GameHandler) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_game"
	id := r.PathValue("id")
	if id == "" {
		writeError(w, r, NewKind(op, ErrBadRequest))
		return
	}
	res, err := h.deps.Results(r.Context(), id)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleAssociate handles POST /game/associate.
func (h *GameHandler) HandleAssociate(w http.ResponseWriter, r *http.Request) {
	const op = "api.associate_game"
	var req associateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	gs, err := h.deps.AssociateGame(r.Context(), req.GameID, req.PlayerName)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Game: gs})
}
