package quota

import (
	"context"
	"sync"
	"time"
)

// Memory is a single-process Tracker for local mode and tests. Counters
// live in an arena keyed by tenant id; each counter carries its own mutex
// so a contended tenant never blocks the rest.
type Memory struct {
	// Now is overridable in tests.
	Now func() time.Time

	mu       sync.RWMutex
	counters map[string]*counter
}

type counter struct {
	mu    sync.Mutex
	day   string
	count int
}

func NewMemory() *Memory {
	return &Memory{
		Now:      time.Now,
		counters: make(map[string]*counter),
	}
}

func (m *Memory) TryConsume(_ context.Context, tenantID string, limit int, loc *time.Location) (bool, error) {
	c := m.counter(tenantID)

	c.mu.Lock()
	defer c.mu.Unlock()
	m.rollover(c, loc)
	if limit > 0 && c.count >= limit {
		return false, nil
	}
	c.count++
	return true, nil
}

func (m *Memory) Usage(_ context.Context, tenantID string, loc *time.Location) (int, error) {
	c := m.counter(tenantID)

	c.mu.Lock()
	defer c.mu.Unlock()
	m.rollover(c, loc)
	return c.count, nil
}

// rollover resets the counter when the stored day precedes today in the
// tenant's zone. Caller holds c.mu, so concurrent callers observe the reset
// and the check-and-increment as one step.
func (m *Memory) rollover(c *counter, loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	day := m.Now().In(loc).Format(dayFormat)
	if c.day != day {
		c.day = day
		c.count = 0
	}
}

func (m *Memory) counter(tenantID string) *counter {
	m.mu.RLock()
	c, ok := m.counters[tenantID]
	m.mu.RUnlock()
	if ok {
		return c
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok = m.counters[tenantID]; ok {
		return c
	}
	c = &counter{}
	m.counters[tenantID] = c
	return c
}
