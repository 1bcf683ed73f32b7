package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/campusguessr/internal/domain/geo"
	"github.com/okian/campusguessr/internal/playtest"
	"github.com/okian/campusguessr/pkg/logger"
)

const (
	defaultGames       = 200
	defaultTopN        = 50
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 10 * time.Second
	defaultSettle      = 10 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		games   = flag.Int("games", defaultGames, "Number of games to play")
		topN    = flag.Int("top", defaultTopN, "Leaderboard entries to fetch and verify")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent players")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		settle  = flag.Duration("settle", defaultSettle, "How long to wait for games to be ranked")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		playtest.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	_, err := playtest.Run(ctx, &playtest.Config{
		BaseURL: *baseURL,
		Games:   *games,
		TopN:    *topN,
		Workers: max(*workers, 1),
		Timeout: *timeout,
		Bounds:  geo.CampusBounds,
		Settle:  *settle,
		Verbose: *verbose,
	})
	if err != nil {
		os.Stderr.WriteString("playtest failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
