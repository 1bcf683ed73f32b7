package service

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/campusguessr/internal/adapters/repository"
	"github.com/okian/campusguessr/internal/domain/geo"
	"github.com/okian/campusguessr/internal/domain/model"
	"github.com/okian/campusguessr/internal/domain/scoring"
	"github.com/okian/campusguessr/pkg/logger"
	"github.com/okian/campusguessr/pkg/metrics"
)

// StartGameInput starts a game. PlayerName is optional; anonymous games
// can be associated once complete.
type StartGameInput struct {
	PlayerName string
}

// StartGameResult is the new game and its first location.
type StartGameResult struct {
	GameID        string         `json:"gameId"`
	LocationIDs   []string       `json:"locationIds"`
	CurrentRound  int            `json:"currentRound"`
	Rounds        int            `json:"rounds"`
	FirstLocation model.Location `json:"firstLocation"`
}

// SubmitGuessInput is a pin dropped for the current round of a game.
type SubmitGuessInput struct {
	GameID string
	Guess  geo.Coordinate
}

// GuessResult is the evaluated round.
type GuessResult struct {
	Distance        int             `json:"distance"`
	Score           int             `json:"score"`
	TotalScore      int             `json:"totalScore"`
	GameComplete    bool            `json:"gameComplete"`
	ActualLocation  geo.Coordinate  `json:"actualLocation"`
	Round           int             `json:"round"`
	DistanceQuality string          `json:"distanceQuality"`
	NextLocation    *model.Location `json:"nextLocation,omitempty"`
}

// GameResults is a session with the locations of its rounds.
type GameResults struct {
	Game         *model.GameSession `json:"game"`
	Locations    []model.Location   `json:"locations"`
	MaxScore     int                `json:"maxScore"`
	ScoreQuality string             `json:"scoreQuality"`
}

// StartGame picks distinct random locations and creates a session at round 1.
func (s *Service) StartGame(ctx context.Context, in StartGameInput) (*StartGameResult, error) {
	locs, err := s.locations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("start game: %w", err)
	}
	if len(locs) < s.rounds {
		return nil, fmt.Errorf("start game: %w: have %d, need %d", ErrNotEnoughLocations, len(locs), s.rounds)
	}

	rand.Shuffle(len(locs), func(i, j int) { locs[i], locs[j] = locs[j], locs[i] })
	picked := locs[:s.rounds]
	ids := make([]string, len(picked))
	for i, l := range picked {
		ids[i] = l.ID
	}

	gs, err := model.NewGameSession(uuid.NewString(), ids, in.PlayerName, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("start game: %w", err)
	}
	if err := s.sessions.Create(ctx, gs); err != nil {
		return nil, fmt.Errorf("start game: %w", err)
	}

	metrics.RecordGameStarted()
	s.logger.Debug(ctx, "game started",
		logger.String("game_id", gs.ID),
		logger.Bool("named", in.PlayerName != ""))

	return &StartGameResult{
		GameID:        gs.ID,
		LocationIDs:   ids,
		CurrentRound:  gs.CurrentRound,
		Rounds:        gs.Rounds,
		FirstLocation: picked[0],
	}, nil
}

// SubmitGuess scores a guess against the current round's location and
// advances the game. Guesses for the same game are applied one at a time.
func (s *Service) SubmitGuess(ctx context.Context, in SubmitGuessInput) (*GuessResult, error) {
	if err := in.Guess.Validate(); err != nil {
		return nil, fmt.Errorf("submit guess: %w", err)
	}

	// Locations are resolved before the update so fn does no I/O while the
	// session is locked.
	current, err := s.sessions.Get(ctx, in.GameID)
	if err != nil {
		return nil, fmt.Errorf("submit guess: %w", err)
	}
	locs, err := s.sessionLocations(ctx, current)
	if err != nil {
		return nil, fmt.Errorf("submit guess: %w", err)
	}

	gs, err := s.sessions.Update(ctx, in.GameID, func(gs *model.GameSession) error {
		lid, err := gs.CurrentLocationID()
		if err != nil {
			return err
		}
		actual, ok := locs[lid]
		if !ok {
			return fmt.Errorf("location %s: %w", lid, repository.ErrNotFound)
		}
		res, err := s.scorer.Score(scoring.Input{Guess: in.Guess, Actual: actual.Coordinate})
		if err != nil {
			metrics.RecordScoringError()
			return err
		}
		now := s.now().UTC()
		return gs.RecordGuess(model.Guess{
			Round:          gs.NextRound(),
			LocationID:     lid,
			Guess:          in.Guess,
			Actual:         actual.Coordinate,
			DistanceMeters: res.DistanceMeters,
			Score:          res.Score,
			CreatedAt:      now,
		}, now)
	})
	if err != nil {
		return nil, fmt.Errorf("submit guess: %w", err)
	}

	last := gs.Guesses[len(gs.Guesses)-1]
	metrics.RecordGuess(last.DistanceMeters, last.Score)

	out := &GuessResult{
		Distance:        last.DistanceMeters,
		Score:           last.Score,
		TotalScore:      gs.TotalScore,
		GameComplete:    gs.Complete(),
		ActualLocation:  last.Actual,
		Round:           last.Round,
		DistanceQuality: scoring.DistanceQuality(last.DistanceMeters),
	}

	if out.GameComplete {
		metrics.RecordGameCompleted(gs.TotalScore)
		s.logger.Debug(ctx, "game complete",
			logger.String("game_id", gs.ID),
			logger.Int("total", gs.TotalScore))
		if cg, ok := gs.Completed(); ok {
			s.publish(ctx, cg)
		}
		return out, nil
	}

	lid, err := gs.CurrentLocationID()
	if err != nil {
		return nil, fmt.Errorf("submit guess: %w", err)
	}
	next, ok := locs[lid]
	if !ok {
		return nil, fmt.Errorf("submit guess: next location %s: %w", lid, repository.ErrNotFound)
	}
	out.NextLocation = &next
	return out, nil
}

// sessionLocations loads every location of a game keyed by id. A
// session's location ids never change after it starts.
func (s *Service) sessionLocations(ctx context.Context, gs *model.GameSession) (map[string]model.Location, error) {
	out := make(map[string]model.Location, len(gs.LocationIDs))
	for _, lid := range gs.LocationIDs {
		if _, ok := out[lid]; ok {
			continue
		}
		l, err := s.locations.Get(ctx, lid)
		if err != nil {
			return nil, fmt.Errorf("location %s: %w", lid, err)
		}
		out[lid] = l
	}
	return out, nil
}

// Game returns the stored session.
func (s *Service) Game(ctx context.Context, id string) (*model.GameSession, error) {
	gs, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	return gs, nil
}

// Results returns the session with its round locations in play order.
func (s *Service) Results(ctx context.Context, id string) (*GameResults, error) {
	gs, err := s.Game(ctx, id)
	if err != nil {
		return nil, err
	}
	locs := make([]model.Location, 0, len(gs.LocationIDs))
	for _, lid := range gs.LocationIDs {
		l, err := s.locations.Get(ctx, lid)
		if err != nil {
			return nil, fmt.Errorf("game results: %w", err)
		}
		locs = append(locs, l)
	}
	maxScore := s.scorer.MaxPossibleScore(gs.Rounds)
	return &GameResults{
		Game:         gs,
		Locations:    locs,
		MaxScore:     maxScore,
		ScoreQuality: scoring.ScoreQuality(gs.TotalScore, maxScore),
	}, nil
}

// AssociateGame attaches a player name to a finished anonymous game and
// publishes it to the leaderboard. Repeating the call with the same name
// republishes, which lets a client retry after a failed publish.
func (s *Service) AssociateGame(ctx context.Context, gameID, playerName string) (*model.GameSession, error) {
	if playerName == "" {
		return nil, fmt.Errorf("associate game: %w: empty player name", ErrInvalidInput)
	}

	first := false
	gs, err := s.sessions.Update(ctx, gameID, func(gs *model.GameSession) error {
		if !gs.Complete() {
			return ErrGameNotComplete
		}
		switch gs.PlayerName {
		case "":
			gs.PlayerName = playerName
			gs.UpdatedAt = s.now().UTC()
			first = true
		case playerName:
		default:
			return ErrAlreadyAssociated
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("associate game: %w", err)
	}

	if first {
		metrics.RecordGameAssociated()
		s.logger.Debug(ctx, "game associated",
			logger.String("game_id", gs.ID),
			logger.String("player", playerName))
	}
	if cg, ok := gs.Completed(); ok {
		s.publish(ctx, cg)
	}
	return gs, nil
}
