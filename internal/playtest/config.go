// Package playtest drives simulated players against a running server and
// checks the leaderboard they produce.
package playtest

import (
	"time"

	"github.com/okian/campusguessr/internal/domain/geo"
)

// Config holds configuration for a playtest run.
type Config struct {
	BaseURL string        // Base URL of the service
	Games   int           // Number of games to play
	TopN    int           // Leaderboard entries to fetch
	Workers int           // Concurrent players
	Timeout time.Duration // HTTP request timeout
	Bounds  geo.Bounds    // Area random guesses are drawn from
	Settle  time.Duration // How long to wait for games to reach the leaderboard
	Verbose bool
}

// Played is the outcome of one simulated game.
type Played struct {
	GameID     string
	PlayerName string
	TotalScore int
	Rounds     int
}

// Stats holds run statistics.
type Stats struct {
	GamesStarted       int
	GamesCompleted     int
	GamesFailed        int
	GuessesSubmitted   int
	RanksRetrieved     int
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
