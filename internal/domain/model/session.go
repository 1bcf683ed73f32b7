package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/okian/campusguessr/internal/domain/geo"
)

// Guess is one evaluated round. It is never mutated after creation.
type Guess struct {
	Round          int            `json:"round"`
	LocationID     string         `json:"locationId"`
	Guess          geo.Coordinate `json:"guess"`
	Actual         geo.Coordinate `json:"actual"`
	DistanceMeters int            `json:"distance"`
	Score          int            `json:"score"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// GameSession tracks a single play-through of Rounds locations.
//
// Invariants: TotalScore is the sum of Guesses[i].Score, len(Guesses) <= Rounds
// and Guesses[i].Round == i+1. CurrentRound stays at Rounds once complete.
type GameSession struct {
	ID           string     `json:"id"`
	Rounds       int        `json:"rounds"`
	CurrentRound int        `json:"currentRound"`
	TotalScore   int        `json:"totalScore"`
	LocationIDs  []string   `json:"locationIds"`
	Guesses      []Guess    `json:"guesses"`
	PlayerName   string     `json:"playerName,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// NewGameSession starts a session at round 1. One round is played per location id.
func NewGameSession(id string, locationIDs []string, playerName string, now time.Time) (*GameSession, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidSession)
	}
	if len(locationIDs) == 0 {
		return nil, fmt.Errorf("%w: no locations", ErrInvalidSession)
	}
	seen := make(map[string]struct{}, len(locationIDs))
	for _, lid := range locationIDs {
		if _, dup := seen[lid]; dup || lid == "" {
			return nil, fmt.Errorf("%w: location %q repeated or empty", ErrInvalidSession, lid)
		}
		seen[lid] = struct{}{}
	}
	return &GameSession{
		ID:           id,
		Rounds:       len(locationIDs),
		CurrentRound: 1,
		LocationIDs:  slices.Clone(locationIDs),
		Guesses:      make([]Guess, 0, len(locationIDs)),
		PlayerName:   playerName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Complete reports whether every round has a guess.
func (s *GameSession) Complete() bool {
	return len(s.Guesses) >= s.Rounds
}

// NextRound is the round number the next guess must carry.
func (s *GameSession) NextRound() int {
	return len(s.Guesses) + 1
}

// CurrentLocationID returns the location the next guess is for.
func (s *GameSession) CurrentLocationID() (string, error) {
	if s.Complete() {
		return "", ErrGameComplete
	}
	return s.LocationIDs[len(s.Guesses)], nil
}

// RecordGuess appends g and advances the round.
func (s *GameSession) RecordGuess(g Guess, now time.Time) error {
	lid, err := s.CurrentLocationID()
	if err != nil {
		return err
	}
	if g.Round != s.NextRound() || g.LocationID != lid {
		return fmt.Errorf("%w: got round %d location %s, want round %d location %s",
			ErrRoundMismatch, g.Round, g.LocationID, s.NextRound(), lid)
	}

	s.Guesses = append(s.Guesses, g)
	s.TotalScore += g.Score
	s.UpdatedAt = now
	if s.Complete() {
		s.CurrentRound = s.Rounds
		done := now
		s.CompletedAt = &done
	} else {
		s.CurrentRound = s.NextRound()
	}
	return nil
}

// Clone returns a deep copy safe to hand to other goroutines.
func (s *GameSession) Clone() *GameSession {
	if s == nil {
		return nil
	}
	c := *s
	c.LocationIDs = slices.Clone(s.LocationIDs)
	c.Guesses = slices.Clone(s.Guesses)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// Completed returns the leaderboard event for a finished, named game.
func (s *GameSession) Completed() (CompletedGame, bool) {
	if !s.Complete() || s.PlayerName == "" {
		return CompletedGame{}, false
	}
	done := s.UpdatedAt
	if s.CompletedAt != nil {
		done = *s.CompletedAt
	}
	return CompletedGame{
		GameID:      s.ID,
		PlayerName:  s.PlayerName,
		TotalScore:  s.TotalScore,
		CreatedAt:   s.CreatedAt,
		CompletedAt: done,
	}, true
}

// CompletedGame is published once a named game is finished.
type CompletedGame struct {
	GameID      string
	PlayerName  string
	TotalScore  int
	CreatedAt   time.Time
	CompletedAt time.Time
}
