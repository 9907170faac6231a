// Package livestate keeps the latest per-trolley snapshot for the web
// console: in-memory map of record, mirrored to redis so external
// dashboards can read it without touching this process.
package livestate

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"
)

// Manager provides write-through snapshot state: memory first, then
// redis (best effort; the mirror being down never fails an update).
type Manager struct {
	mu    sync.RWMutex
	mem   map[string]*Snapshot
	redis *RedisStore // nil when redis is unavailable
}

func NewManager(redis *RedisStore) *Manager {
	return &Manager{
		mem:   make(map[string]*Snapshot),
		redis: redis,
	}
}

// Update stores a trolley snapshot and mirrors it to redis.
func (m *Manager) Update(s Snapshot) {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now()
	}

	m.mu.Lock()
	m.mem[s.Trolley] = &s
	m.mu.Unlock()

	if m.redis != nil {
		if err := m.redis.SetSnapshot(context.Background(), &s); err != nil {
			log.Printf("livestate: mirror snapshot for %s: %v", s.Trolley, err)
		}
	}
}

// Get returns the snapshot for one trolley, nil when never seen.
func (m *Manager) Get(trolley string) *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.mem[trolley]
	if !ok {
		return nil
	}
	cp := *s
	return &cp
}

// All returns every snapshot, ordered by trolley id.
func (m *Manager) All() []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Snapshot, 0, len(m.mem))
	for _, s := range m.mem {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Trolley < out[j].Trolley })
	return out
}

// Reset clears local and mirrored state. Called on startup so stale
// snapshots from a previous run never survive a fleet change.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.mem = make(map[string]*Snapshot)
	m.mu.Unlock()

	if m.redis != nil {
		if err := m.redis.FlushAll(context.Background()); err != nil {
			log.Printf("livestate: flush redis: %v", err)
		}
	}
}
