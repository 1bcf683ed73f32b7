package playtest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/okian/campusguessr/internal/domain/types"
	"github.com/okian/campusguessr/pkg/logger"
)

// Run plays cfg.Games games, waits for them to be ranked and verifies the
// leaderboard against what was played.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("playtest")

	log.Info(ctx, "starting campusguessr playtest",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("games", cfg.Games),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()),
		logger.Int("topN", cfg.TopN))

	c := newClient(cfg.BaseURL, cfg.Timeout)

	if err := checkServiceHealth(ctx, c); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	played := playGames(ctx, cfg, c, stats, log)
	if len(played) == 0 {
		return stats, errors.New("no game completed")
	}

	ranks, err := waitForRanks(ctx, cfg, c, played)
	stats.RanksRetrieved = len(ranks)
	if err != nil {
		return stats, fmt.Errorf("rank retrieval failed: %w", err)
	}

	leaderboard, err := getLeaderboard(ctx, c, cfg.TopN)
	if err != nil {
		return stats, fmt.Errorf("leaderboard retrieval failed: %w", err)
	}
	stats.LeaderboardEntries = len(leaderboard)

	if err := verifyResults(played, ranks, leaderboard); err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}
	if cfg.Verbose {
		displayTop(ctx, log, leaderboard)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	return stats, nil
}

// checkServiceHealth verifies the metrics endpoint answers.
func checkServiceHealth(ctx context.Context, c *client) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

// playGames runs cfg.Games games on cfg.Workers goroutines and returns the
// completed ones.
func playGames(ctx context.Context, cfg *Config, c *client, stats *Stats, log logger.Logger) []Played {
	jobs := make(chan int, cfg.Workers*workerChannelMultiplier)
	var (
		mu     sync.Mutex
		played = make([]Played, 0, cfg.Games)
		wg     sync.WaitGroup
	)

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				if ctx.Err() != nil {
					return
				}
				p, guesses, err := playGame(ctx, c, cfg.Bounds)

				mu.Lock()
				stats.GamesStarted++
				stats.GuessesSubmitted += guesses
				if err != nil {
					stats.GamesFailed++
				} else {
					stats.GamesCompleted++
					played = append(played, p)
				}
				mu.Unlock()

				if err != nil {
					log.Warn(ctx, "game failed", logger.Error(err))
				} else if cfg.Verbose {
					log.Info(ctx, "game completed",
						logger.String("gameId", p.GameID),
						logger.Int("score", p.TotalScore))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < cfg.Games; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	wg.Wait()
	return played
}

// waitForRanks polls /rank/{id} until every played game is ranked or
// cfg.Settle passes.
func waitForRanks(ctx context.Context, cfg *Config, c *client, played []Played) (map[string]types.Entry, error) {
	ranks := make(map[string]types.Entry, len(played))
	deadline := time.Now().Add(cfg.Settle)

	for {
		for _, p := range played {
			if _, ok := ranks[p.GameID]; ok {
				continue
			}
			var e types.Entry
			err := c.get(ctx, "/rank/"+p.GameID, &e)
			var se *statusError
			switch {
			case err == nil:
				ranks[p.GameID] = e
			case errors.As(err, &se) && se.Status == http.StatusNotFound:
			default:
				return ranks, err
			}
		}
		if len(ranks) == len(played) {
			return ranks, nil
		}
		if time.Now().After(deadline) {
			return ranks, fmt.Errorf("%d of %d games ranked after %s", len(ranks), len(played), cfg.Settle)
		}
		select {
		case <-ctx.Done():
			return ranks, ctx.Err()
		case <-time.After(settlePollInterval):
		}
	}
}

type leaderboardResponse struct {
	Leaderboard []types.Entry `json:"leaderboard"`
	Filter      types.Filter  `json:"filter"`
}

// getLeaderboard retrieves the top n all-time entries.
func getLeaderboard(ctx context.Context, c *client, n int) ([]types.Entry, error) {
	var res leaderboardResponse
	if err := c.get(ctx, fmt.Sprintf("/leaderboard?limit=%d", n), &res); err != nil {
		return nil, err
	}
	return res.Leaderboard, nil
}

func displayTop(ctx context.Context, log logger.Logger, leaderboard []types.Entry) {
	for _, e := range leaderboard {
		log.Info(ctx, "leaderboard",
			logger.Int("rank", e.Rank),
			logger.String("username", e.Username),
			logger.Int("score", e.Score))
	}
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var successRate, gamesPerSecond float64
	if stats.GamesStarted > 0 {
		successRate = float64(stats.GamesCompleted) / float64(stats.GamesStarted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		gamesPerSecond = float64(stats.GamesCompleted) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("gamesStarted", stats.GamesStarted),
		logger.Int("gamesCompleted", stats.GamesCompleted),
		logger.Int("gamesFailed", stats.GamesFailed),
		logger.Int("guessesSubmitted", stats.GuessesSubmitted),
		logger.Int("ranksRetrieved", stats.RanksRetrieved),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("gamesPerSecond", gamesPerSecond))
}
