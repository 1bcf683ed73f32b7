// Package service runs the game flow on top of the scoring core and the
// storage adapters. It is the dependency the HTTP API is built on.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	eventqueue "github.com/okian/campusguessr/internal/adapters/mq/queue"
	workerpool "github.com/okian/campusguessr/internal/adapters/mq/worker"
	"github.com/okian/campusguessr/internal/adapters/repository"
	"github.com/okian/campusguessr/internal/domain/dedupe"
	"github.com/okian/campusguessr/internal/domain/geo"
	"github.com/okian/campusguessr/internal/domain/model"
	"github.com/okian/campusguessr/internal/domain/scoring"
	"github.com/okian/campusguessr/pkg/logger"
	"github.com/okian/campusguessr/pkg/metrics"
)

const (
	defaultRounds      = 5
	defaultWorkerCount = 4
	defaultQueueSize   = 10000
	defaultDedupeSize  = 100000
	defaultLimit       = 10
	defaultMaxLimit    = 100
	stopTimeout        = 30 * time.Second
)

// Service implements the API dependencies of the game.
type Service struct {
	mu sync.RWMutex

	sessions    repository.SessionStore
	locations   repository.LocationStore
	leaderboard repository.Leaderboard
	scorer      scoring.Scorer
	deduper     dedupe.Deduper
	queue       *eventqueue.InMemoryQueue
	pool        *workerpool.Pool

	rounds       int
	workerCount  int
	queueSize    int
	dedupeSize   int
	defaultLimit int
	maxLimit     int
	bounds       geo.Bounds
	now          func() time.Time

	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service. Stores default to the in-memory implementations.
func New(opts ...Option) *Service {
	s := &Service{
		rounds:       defaultRounds,
		workerCount:  defaultWorkerCount,
		queueSize:    defaultQueueSize,
		dedupeSize:   defaultDedupeSize,
		defaultLimit: defaultLimit,
		maxLimit:     defaultMaxLimit,
		bounds:       geo.CampusBounds,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.sessions == nil {
		s.sessions = repository.NewMemorySessionStore()
	}
	if s.locations == nil {
		s.locations = repository.NewMemoryLocationStore()
	}
	if s.leaderboard == nil {
		s.leaderboard = repository.NewTreapStore()
	}
	if s.scorer == nil {
		s.scorer = scoring.NewGeoScorer()
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	return s
}

// Start rebuilds the leaderboard from stored games and starts the worker pool.
// Workers outlive ctx; they stop in Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting game service...")

	if err := s.warmLeaderboard(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if locs, err := s.locations.List(ctx); err == nil {
		metrics.UpdateLocationsTotal(len(locs))
	}

	if s.queue.IsClosed() {
		s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.leaderboard)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "game service started",
		logger.Int("rounds", s.rounds),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// warmLeaderboard records every completed named game the session store
// knows about. Stores that cannot enumerate them are skipped.
func (s *Service) warmLeaderboard(ctx context.Context) error {
	lister, ok := s.sessions.(repository.CompletedLister)
	if !ok {
		return nil
	}
	games, err := lister.ListCompleted(ctx)
	if err != nil {
		return fmt.Errorf("list completed games: %w", err)
	}
	added := 0
	for _, g := range games {
		s.deduper.SeenAndRecord(ctx, g.GameID)
		ok, err := s.leaderboard.Record(ctx, g)
		if err != nil {
			return fmt.Errorf("record game %s: %w", g.GameID, err)
		}
		if ok {
			added++
		}
	}
	if n, err := s.leaderboard.Count(ctx); err == nil {
		metrics.UpdateLeaderboardSize(n)
	}
	s.logger.Info(ctx, "leaderboard warmed",
		logger.Int("completed", len(games)),
		logger.Int("added", added))
	return nil
}

// Stop closes the queue and waits for workers to drain it. Workers still
// busy at the deadline are interrupted by cancelling their run context.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	s.logger.Info(ctx, "stopping game service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "game service stopped")
}

// publish hands a completed game to the leaderboard workers once.
// A failed enqueue forgets the game id so a later call can retry.
func (s *Service) publish(ctx context.Context, g model.CompletedGame) {
	if s.deduper.SeenAndRecord(ctx, g.GameID) {
		s.logger.Debug(ctx, "game already published", logger.String("game_id", g.GameID))
		return
	}

	s.mu.RLock()
	q := s.queue
	s.mu.RUnlock()

	if err := q.Enqueue(ctx, g); err != nil {
		s.deduper.Unrecord(ctx, g.GameID)
		metrics.RecordErrorByComponent("service", "publish_failed")
		s.logger.Warn(ctx, "failed to publish completed game",
			logger.String("game_id", g.GameID),
			logger.Error(err))
		return
	}
	s.logger.Debug(ctx, "completed game published",
		logger.String("game_id", g.GameID),
		logger.Int("score", g.TotalScore))
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":        s.started,
		"roundsPerGame":  s.rounds,
		"maxScore":       s.scorer.MaxPossibleScore(s.rounds),
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"queueLength":    s.queue.Len(ctx),
		"dedupeSize":     s.dedupeSize,
		"publishedGames": s.deduper.Size(),
	}
	if n, err := s.sessions.Count(ctx); err == nil {
		stats["totalGames"] = n
	}
	if n, err := s.leaderboard.Count(ctx); err == nil {
		stats["rankedGames"] = n
		metrics.UpdateLeaderboardSize(n)
	}
	if locs, err := s.locations.List(ctx); err == nil {
		stats["totalLocations"] = len(locs)
	}
	return stats
}

// Rounds returns the number of rounds per game.
func (s *Service) Rounds() int { return s.rounds }

// Bounds returns the area new locations must lie in.
func (s *Service) Bounds() geo.Bounds { return s.bounds }
