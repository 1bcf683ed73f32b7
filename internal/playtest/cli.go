package playtest

import "os"

// ShowHelp prints usage information for the playtest tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`CampusGuessr Playtest
=====================

Plays concurrent simulated games against a running server, then checks
that every game is ranked with its total and that the leaderboard is
ordered.

Usage:
  go run ./cmd/playtest [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -games int
        Number of games to play (default 200)
  -workers int
        Number of concurrent players (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -top int
        Leaderboard entries to fetch and verify (default 50)
  -settle duration
        How long to wait for games to be ranked (default 10s)
  -verbose
        Log every game and the fetched leaderboard
  -help
        Show this help message

Examples:
  go run ./cmd/playtest -games 1000 -workers 32
  go run ./cmd/playtest -url http://localhost:8080 -verbose
`)
}
