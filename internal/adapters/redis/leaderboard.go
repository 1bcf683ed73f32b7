// Package redis keeps the leaderboard in a Redis sorted set.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/campusguessr/internal/adapters/repository"
	"github.com/okian/campusguessr/internal/domain/model"
	"github.com/okian/campusguessr/internal/domain/types"
	"github.com/okian/campusguessr/pkg/metrics"
)

const (
	defaultPrefix = "campusguessr"
	pingTimeout   = 5 * time.Second
	pageSize      = 200

	// scoreShift leaves room for a unix-seconds timestamp below the total.
	scoreShift int64 = 10_000_000_000
)

// Open parses a redis:// URL and verifies the connection.
func Open(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("open redis: parse url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("open redis: ping: %w", err)
	}
	return client, nil
}

// Option applies a configuration option to the Leaderboard.
type Option func(*Leaderboard)

// WithKeyPrefix namespaces every key written by the leaderboard.
func WithKeyPrefix(prefix string) Option {
	return func(l *Leaderboard) {
		if prefix != "" {
			l.prefix = prefix
		}
	}
}

// Leaderboard implements repository.Leaderboard.
//
// The sorted set is read in ascending order with score
// −total·1e10 + createdUnix, so higher totals come first and equal
// totals fall back to the earlier second. Members are
// "<nanoseconds>:<game id>" with the sub-second part zero padded, and
// Redis orders equal scores by member bytes, so ties inside a second
// go to the earlier game and then to the smaller id. A hash per game
// keeps the player name, the exact creation time and the member.
type Leaderboard struct {
	rdb    redis.Cmdable
	prefix string
}

var _ repository.Leaderboard = (*Leaderboard)(nil)

// NewLeaderboard creates a leaderboard on an existing client.
func NewLeaderboard(rdb redis.Cmdable, opts ...Option) *Leaderboard {
	l := &Leaderboard{rdb: rdb, prefix: defaultPrefix}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Leaderboard) rankingKey() string { return l.prefix + ":leaderboard" }

func (l *Leaderboard) gameKey(id string) string { return l.prefix + ":game:" + id }

// encodeScore packs a total and a creation time into one sortable float.
// Values stay below 2^53 for totals up to 900k, so the float is exact.
func encodeScore(total int, created time.Time) float64 {
	return float64(-int64(total)*scoreShift + created.Unix())
}

// decodeScore reverses encodeScore.
func decodeScore(s float64) (total int, createdUnix int64) {
	v := int64(s)
	q := v / scoreShift
	if v%scoreShift != 0 && v < 0 {
		q--
	}
	return int(-q), v - q*scoreShift
}

// memberOf builds the sorted-set member of a game.
func memberOf(id string, created time.Time) string {
	return fmt.Sprintf("%09d:%s", created.Nanosecond(), id)
}

// splitMember reverses memberOf.
func splitMember(m string) (id string, nanos int, err error) {
	ns, id, ok := strings.Cut(m, ":")
	if !ok {
		return "", 0, fmt.Errorf("malformed member %q", m)
	}
	if nanos, err = strconv.Atoi(ns); err != nil {
		return "", 0, fmt.Errorf("malformed member %q: %w", m, err)
	}
	return id, nanos, nil
}

// Record adds g unless it is already ranked.
func (l *Leaderboard) Record(ctx context.Context, g model.CompletedGame) (bool, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(ms(start)) }()

	member := memberOf(g.GameID, g.CreatedAt)

	// The hash is written first so a ranked member always has metadata.
	err := l.rdb.HSet(ctx, l.gameKey(g.GameID), map[string]any{
		"player":     g.PlayerName,
		"score":      g.TotalScore,
		"created_at": g.CreatedAt.UTC().Format(time.RFC3339Nano),
		"member":     member,
	}).Err()
	if err != nil {
		return false, fmt.Errorf("record %s: %w", g.GameID, err)
	}

	added, err := l.rdb.ZAddNX(ctx, l.rankingKey(), redis.Z{
		Score:  encodeScore(g.TotalScore, g.CreatedAt),
		Member: member,
	}).Result()
	if err != nil {
		return false, fmt.Errorf("record %s: %w", g.GameID, err)
	}
	if n, err := l.Count(ctx); err == nil {
		metrics.UpdateLeaderboardSize(n)
	}
	return added == 1, nil
}

// TopN pages through the ranking and keeps games created at or after since.
func (l *Leaderboard) TopN(ctx context.Context, n int, since time.Time) ([]types.Entry, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(ms(start)) }()

	if n < 1 {
		return nil, fmt.Errorf("top %d: %w", n, repository.ErrInvalidLimit)
	}
	step := int64(max(n, pageSize))
	if since.IsZero() {
		step = int64(n)
	}

	var ids []string
	for offset := int64(0); len(ids) < n; offset += step {
		page, err := l.rdb.ZRangeWithScores(ctx, l.rankingKey(), offset, offset+step-1).Result()
		if err != nil {
			return nil, fmt.Errorf("top %d: %w", n, err)
		}
		for _, z := range page {
			id, nanos, err := splitMember(z.Member.(string))
			if err != nil {
				return nil, fmt.Errorf("top %d: %w", n, err)
			}
			if _, created := decodeScore(z.Score); !since.IsZero() && time.Unix(created, int64(nanos)).Before(since) {
				continue
			}
			ids = append(ids, id)
			if len(ids) == n {
				break
			}
		}
		if int64(len(page)) < step {
			break
		}
	}

	entries, err := l.entries(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("top %d: %w", n, err)
	}
	return entries, nil
}

// Rank returns the all-time position of a game.
func (l *Leaderboard) Rank(ctx context.Context, gameID string) (types.Entry, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(ms(start)) }()

	member, err := l.rdb.HGet(ctx, l.gameKey(gameID), "member").Result()
	if errors.Is(err, redis.Nil) {
		return types.Entry{}, fmt.Errorf("game %s: %w", gameID, repository.ErrNotFound)
	}
	if err != nil {
		return types.Entry{}, fmt.Errorf("rank %s: %w", gameID, err)
	}
	pos, err := l.rdb.ZRank(ctx, l.rankingKey(), member).Result()
	if errors.Is(err, redis.Nil) {
		return types.Entry{}, fmt.Errorf("game %s: %w", gameID, repository.ErrNotFound)
	}
	if err != nil {
		return types.Entry{}, fmt.Errorf("rank %s: %w", gameID, err)
	}
	entries, err := l.entries(ctx, []string{gameID})
	if err != nil {
		return types.Entry{}, fmt.Errorf("rank %s: %w", gameID, err)
	}
	e := entries[0]
	e.Rank = int(pos) + 1
	return e, nil
}

// Count returns the number of ranked games.
func (l *Leaderboard) Count(ctx context.Context) (int, error) {
	n, err := l.rdb.ZCard(ctx, l.rankingKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return int(n), nil
}

// entries loads game hashes in one pipeline, preserving order.
func (l *Leaderboard) entries(ctx context.Context, ids []string) ([]types.Entry, error) {
	if len(ids) == 0 {
		return []types.Entry{}, nil
	}
	pipe := l.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, l.gameKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	out := make([]types.Entry, len(ids))
	for i, cmd := range cmds {
		h := cmd.Val()
		score, _ := strconv.Atoi(h["score"])
		created, _ := time.Parse(time.RFC3339Nano, h["created_at"])
		out[i] = types.Entry{
			Rank:      i + 1,
			GameID:    ids[i],
			Username:  h["player"],
			Score:     score,
			CreatedAt: created,
		}
	}
	return out, nil
}

func ms(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
