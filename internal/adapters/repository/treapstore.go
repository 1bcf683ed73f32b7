package repository

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/okian/campusguessr/internal/domain/model"
	"github.com/okian/campusguessr/internal/domain/types"
	"github.com/okian/campusguessr/pkg/metrics"
)

// Treap-based, in-memory Leaderboard.
//
// Ordering: score DESC, created_at ASC, game id ASC. "less" means ranks
// earlier, so an in-order traversal yields the leaderboard best to worst.
// Subtree sizes give O(log n) positional rank.

type key struct {
	score   int
	created int64 // unix nanos
	id      string
}

func less(a, b key) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if a.created != b.created {
		return a.created < b.created
	}
	return a.id < b.id
}

type record struct {
	key
	player    string
	createdAt time.Time
}

type node struct {
	k     key
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, k key, prio uint64) *node {
	if n == nil {
		return &node{k: k, prio: prio, size: 1}
	}
	if less(k, n.k) {
		n.left = insert(n.left, k, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, k, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// position returns how many keys rank strictly before k.
func position(n *node, k key) int {
	pos := 0
	for n != nil {
		if less(n.k, k) {
			pos += nsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return pos
}

// collect appends, in rank order, up to limit ids created at or after since.
func collect(n *node, limit int, since int64, out *[]string) {
	if n == nil || len(*out) >= limit {
		return
	}
	collect(n.left, limit, since, out)
	if len(*out) < limit && n.k.created >= since {
		*out = append(*out, n.k.id)
	}
	if len(*out) < limit {
		collect(n.right, limit, since, out)
	}
}

// TreapStore is the in-memory Leaderboard.
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]record
	rng  *rand.Rand
}

// NewTreapStore constructs a treap leaderboard with configuration options.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		byID: make(map[string]record),
		rng:  rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // treap priorities
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record inserts a completed game in O(log n) expected time.
func (s *TreapStore) Record(_ context.Context, g model.CompletedGame) (bool, error) {
	start := time.Now()
	defer observeUpdate(start)

	rec := record{
		key:       key{score: g.TotalScore, created: g.CreatedAt.UnixNano(), id: g.GameID},
		player:    g.PlayerName,
		createdAt: g.CreatedAt,
	}

	s.mu.Lock()
	if _, ok := s.byID[g.GameID]; ok {
		s.mu.Unlock()
		return false, nil
	}
	s.byID[g.GameID] = rec
	s.root = insert(s.root, rec.key, s.rng.Uint64())
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateLeaderboardSize(count)
	return true, nil
}

// TopN returns up to n entries created at or after since.
func (s *TreapStore) TopN(_ context.Context, n int, since time.Time) ([]types.Entry, error) {
	start := time.Now()
	defer observeQuery(start)

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, fmt.Errorf("top %d: %w", n, ErrInvalidLimit)
	}
	lower := int64(math.MinInt64)
	if !since.IsZero() {
		lower = since.UnixNano()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, min(n, len(s.byID)))
	collect(s.root, n, lower, &ids)

	out := make([]types.Entry, len(ids))
	for i, id := range ids {
		out[i] = s.byID[id].entry(i + 1)
	}
	return out, nil
}

// Rank returns the all-time position of a game in O(log n).
func (s *TreapStore) Rank(_ context.Context, gameID string) (types.Entry, error) {
	start := time.Now()
	defer observeQuery(start)

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[gameID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return types.Entry{}, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	return rec.entry(position(s.root, rec.key) + 1), nil
}

// Count returns the number of ranked games.
func (s *TreapStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

func (r record) entry(rank int) types.Entry {
	return types.Entry{
		Rank:      rank,
		GameID:    r.id,
		Username:  r.player,
		Score:     r.score,
		CreatedAt: r.createdAt,
	}
}
