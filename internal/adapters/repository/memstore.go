package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/campusguessr/internal/domain/model"
	"github.com/okian/campusguessr/pkg/metrics"
)

// sessionSlot serializes read-modify-write cycles on one session.
type sessionSlot struct {
	mu sync.Mutex
	s  *model.GameSession
}

// MemorySessionStore keeps sessions in a map. Writes to different
// sessions proceed in parallel; writes to the same session are serialized.
type MemorySessionStore struct {
	mu    sync.RWMutex
	slots map[string]*sessionSlot
}

// NewMemorySessionStore creates an empty session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{slots: make(map[string]*sessionSlot)}
}

func (m *MemorySessionStore) Create(_ context.Context, s *model.GameSession) error {
	start := time.Now()
	defer observeUpdate(start)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.slots[s.ID]; ok {
		return fmt.Errorf("session %s: %w", s.ID, ErrAlreadyExists)
	}
	m.slots[s.ID] = &sessionSlot{s: s.Clone()}
	return nil
}

func (m *MemorySessionStore) slot(id string) (*sessionSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sl, ok := m.slots[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return sl, nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (*model.GameSession, error) {
	start := time.Now()
	defer observeQuery(start)

	sl, err := m.slot(id)
	if err != nil {
		return nil, err
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.s.Clone(), nil
}

func (m *MemorySessionStore) Update(ctx context.Context, id string, fn func(*model.GameSession) error) (*model.GameSession, error) {
	start := time.Now()
	defer observeUpdate(start)

	sl, err := m.slot(id)
	if err != nil {
		return nil, err
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// fn works on a copy so a failed update leaves the stored session untouched.
	next := sl.s.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	sl.s = next
	return next.Clone(), nil
}

func (m *MemorySessionStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.slots), nil
}

// ListCompleted returns every finished game that has a player name.
func (m *MemorySessionStore) ListCompleted(_ context.Context) ([]model.CompletedGame, error) {
	m.mu.RLock()
	slots := make([]*sessionSlot, 0, len(m.slots))
	for _, sl := range m.slots {
		slots = append(slots, sl)
	}
	m.mu.RUnlock()

	var out []model.CompletedGame
	for _, sl := range slots {
		sl.mu.Lock()
		g, ok := sl.s.Completed()
		sl.mu.Unlock()
		if ok {
			out = append(out, g)
		}
	}
	return out, nil
}

// MemoryLocationStore keeps locations in insertion order.
type MemoryLocationStore struct {
	mu    sync.RWMutex
	byID  map[string]int
	items []model.Location
}

// NewMemoryLocationStore creates a store seeded with locs.
func NewMemoryLocationStore(locs ...model.Location) *MemoryLocationStore {
	s := &MemoryLocationStore{byID: make(map[string]int)}
	for _, l := range locs {
		_ = s.Add(context.Background(), l)
	}
	return s
}

func (m *MemoryLocationStore) Add(_ context.Context, loc model.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[loc.ID]; ok {
		return fmt.Errorf("location %s: %w", loc.ID, ErrAlreadyExists)
	}
	m.byID[loc.ID] = len(m.items)
	m.items = append(m.items, loc)
	metrics.UpdateLocationsTotal(len(m.items))
	return nil
}

func (m *MemoryLocationStore) Get(_ context.Context, id string) (model.Location, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.byID[id]
	if !ok {
		return model.Location{}, fmt.Errorf("location %s: %w", id, ErrNotFound)
	}
	return m.items[i], nil
}

func (m *MemoryLocationStore) List(_ context.Context) ([]model.Location, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Location, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *MemoryLocationStore) ListByCreator(_ context.Context, createdBy string) ([]model.Location, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Location
	for _, l := range m.items {
		if l.CreatedBy == createdBy {
			out = append(out, l)
		}
	}
	return out, nil
}

func observeUpdate(start time.Time) {
	metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
}

func observeQuery(start time.Time) {
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
}
