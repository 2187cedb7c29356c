package gameserver

import (
	"context"
	"sync"
	"time"
)

// MatchTickManager runs a fixed-rate tick for each registered match.
// Callbacks for one interval run sequentially on the manager's goroutine.
//
// Invariant: every registered callback is invoked at most once per interval.
type MatchTickManager struct {
	interval time.Duration
	mu       sync.Mutex
	ticks    map[string]func()
}

// NewMatchTickManager returns a manager that fires ticks every interval.
//
// Precondition: interval must be > 0.
func NewMatchTickManager(interval time.Duration) *MatchTickManager {
	if interval <= 0 {
		panic("gameserver.NewMatchTickManager: interval must be > 0")
	}
	return &MatchTickManager{
		interval: interval,
		ticks:    make(map[string]func()),
	}
}

// RegisterTick registers a callback for matchID. Replaces any existing
// callback.
func (m *MatchTickManager) RegisterTick(matchID string, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks[matchID] = fn
}

// Unregister removes the tick callback for matchID.
func (m *MatchTickManager) Unregister(matchID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ticks, matchID)
}

// Registered returns the number of matches currently ticking.
func (m *MatchTickManager) Registered() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ticks)
}

// Start begins the tick loop. Runs until ctx is cancelled.
//
// Postcondition: all registered tick callbacks are invoked once per interval.
func (m *MatchTickManager) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.mu.Lock()
				callbacks := make([]func(), 0, len(m.ticks))
				for _, fn := range m.ticks {
					callbacks = append(callbacks, fn)
				}
				m.mu.Unlock()
				for _, fn := range callbacks {
					fn()
				}
			}
		}
	}()
}
