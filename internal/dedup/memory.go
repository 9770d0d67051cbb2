package dedup

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Memory is a single-process Deduplicator for local mode and tests.
// State is partitioned per tenant so contention on one tenant's events
// never delays another tenant. Expired ids are dropped lazily on lookup
// and in bulk by the Run sweep loop.
type Memory struct {
	window time.Duration

	// Now is overridable in tests.
	Now func() time.Time

	mu      sync.RWMutex
	tenants map[string]*tenantSet
}

type tenantSet struct {
	mu   sync.Mutex
	seen map[string]time.Time // event id -> expiry
}

func NewMemory(window time.Duration) *Memory {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Memory{
		window:  window,
		Now:     time.Now,
		tenants: make(map[string]*tenantSet),
	}
}

func (m *Memory) Seen(_ context.Context, tenantID, eventID string) (bool, error) {
	ts := m.tenant(tenantID)

	ts.mu.Lock()
	defer ts.mu.Unlock()
	now := m.Now()
	if exp, ok := ts.seen[eventID]; ok {
		if now.Before(exp) {
			return true, nil
		}
		delete(ts.seen, eventID)
	}
	ts.seen[eventID] = now.Add(m.window)
	return false, nil
}

func (m *Memory) tenant(tenantID string) *tenantSet {
	m.mu.RLock()
	ts, ok := m.tenants[tenantID]
	m.mu.RUnlock()
	if ok {
		return ts
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if ts, ok = m.tenants[tenantID]; ok {
		return ts
	}
	ts = &tenantSet{seen: make(map[string]time.Time)}
	m.tenants[tenantID] = ts
	return ts
}

// Run sweeps expired entries periodically. It blocks until ctx is cancelled.
func (m *Memory) Run(ctx context.Context) {
	ticker := time.NewTicker(m.window / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("dedup sweeper: shutting down")
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Sweep drops expired event ids across all tenants.
func (m *Memory) Sweep() {
	now := m.Now()

	m.mu.RLock()
	sets := make([]*tenantSet, 0, len(m.tenants))
	for _, ts := range m.tenants {
		sets = append(sets, ts)
	}
	m.mu.RUnlock()

	for _, ts := range sets {
		ts.mu.Lock()
		for id, exp := range ts.seen {
			if !now.Before(exp) {
				delete(ts.seen, id)
			}
		}
		ts.mu.Unlock()
	}
}
